// Package main reports the homogeneous steady state of a configuration, its
// linear stability and Turing dispersion, and can write the steady state
// back as the initial concentrations.
//
// Usage: go run ./cmd/steadystate -config config.yaml [-write out.yaml]
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"text/tabwriter"

	"github.com/pthm-cable/modelg/analysis"
	"github.com/pthm-cable/modelg/config"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Config YAML file (empty = use defaults)")
	qMax := flag.Float64("q-max", 3, "Largest wavenumber in the dispersion scan")
	n := flag.Int("n", 31, "Number of wavenumbers in the dispersion scan")
	writePath := flag.String("write", "", "Write the config with initial = steady state to this path")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()
	p := cfg.Params()

	ss, err := analysis.FindSteadyState(p, p.Initial())
	if err != nil {
		log.Fatalf("steady state: %v", err)
	}
	fmt.Printf("Steady state: G=%.9g X=%.9g Y=%.9g\n", ss.Conc.G, ss.Conc.X, ss.Conc.Y)
	fmt.Printf("  residual %.3g after %d BFGS + %d Newton iterations\n", ss.Residual, ss.Iterations, ss.Newton)

	stab, err := analysis.Analyze(ss.Conc, p)
	if err != nil {
		log.Fatalf("stability: %v", err)
	}
	fmt.Println("\nJacobian eigenvalues:")
	for _, v := range stab.Eigenvalues {
		fmt.Printf("  %.6g %+.6gi\n", real(v), imag(v))
	}
	switch {
	case stab.Stable:
		fmt.Println("  uniform state is stable")
	case stab.Oscillatory:
		fmt.Println("  uniform state is unstable (oscillatory)")
	default:
		fmt.Println("  uniform state is unstable")
	}

	points, err := analysis.Dispersion(ss.Conc, p, *qMax, *n)
	if err != nil {
		log.Fatalf("dispersion: %v", err)
	}
	fmt.Println("\nDispersion:")
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "q\tgrowth\t")
	for _, pt := range points {
		fmt.Fprintf(tw, "%.4f\t%.6g\t\n", pt.Q, pt.Growth)
	}
	tw.Flush()

	if peak, turing := analysis.TuringPeak(points); turing {
		fmt.Printf("\nTuring instability: fastest mode q=%.4g (wavelength %.4g cells), growth %.4g\n",
			peak.Q, 2*math.Pi/peak.Q, peak.Growth)
	} else {
		fmt.Printf("\nNo Turing instability up to q=%.4g\n", *qMax)
	}

	if limit := analysis.StableTimeStep(p); p.DT > limit {
		fmt.Printf("\nWarning: dt=%.4g exceeds the explicit diffusion limit %.4g\n", p.DT, limit)
	}

	if *writePath != "" {
		p.G0, p.X0, p.Y0 = ss.Conc.G, ss.Conc.X, ss.Conc.Y
		cfg.SetParams(p)
		if err := cfg.WriteYAML(*writePath); err != nil {
			log.Fatalf("failed to write config: %v", err)
		}
		fmt.Printf("\nWrote %s\n", *writePath)
	}
}
