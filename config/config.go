// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/modelg/model"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Kinetics  KineticsConfig  `yaml:"kinetics"`
	Diffusion DiffusionConfig `yaml:"diffusion"`
	Reservoir ReservoirConfig `yaml:"reservoir"`
	Initial   InitialConfig   `yaml:"initial"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Mask      MaskConfig      `yaml:"mask"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Probes    []ProbeConfig   `yaml:"probes"`
	Record    RecordConfig    `yaml:"record"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig holds the simulation grid dimensions in cells.
type GridConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// KineticsConfig holds forward and reverse rate constants.
type KineticsConfig struct {
	K1  float64 `yaml:"k1"`
	K2  float64 `yaml:"k2"`
	K3  float64 `yaml:"k3"`
	K4  float64 `yaml:"k4"`
	K5  float64 `yaml:"k5"`
	KR1 float64 `yaml:"k_1"`
	KR2 float64 `yaml:"k_2"`
	KR3 float64 `yaml:"k_3"`
	KR4 float64 `yaml:"k_4"`
	KR5 float64 `yaml:"k_5"`
}

// DiffusionConfig holds per-species diffusion coefficients.
type DiffusionConfig struct {
	G float64 `yaml:"g"`
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ReservoirConfig holds the constant reservoir concentrations.
type ReservoirConfig struct {
	A     float64 `yaml:"a"`
	B     float64 `yaml:"b"`
	Z     float64 `yaml:"z"`
	Omega float64 `yaml:"omega"`
}

// InitialConfig holds the uniform starting concentrations.
type InitialConfig struct {
	G float64 `yaml:"g"`
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// PhysicsConfig holds integrator settings.
type PhysicsConfig struct {
	DT             float64 `yaml:"dt"`
	Stencil        string  `yaml:"stencil"`          // diagonal | adjacent
	Workers        int     `yaml:"workers"`          // 0/1 sequential, -1 = GOMAXPROCS
	StepsPerUpdate int     `yaml:"steps_per_update"` // steps per render tick
}

// MaskConfig holds the spatial mask selection.
type MaskConfig struct {
	Shape     string  `yaml:"shape"`
	Threshold float64 `yaml:"threshold"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"`          // steps per stats record
	PerfCollectorWindow int `yaml:"perf_collector_window"` // steps in perf rolling window
	HistorySize         int `yaml:"history_size"`          // extrema points kept for the exit plot
}

// ProbeConfig places a named sample point on the grid.
type ProbeConfig struct {
	Name string `yaml:"name"`
	Row  int    `yaml:"row"`
	Col  int    `yaml:"col"`
}

// RecordConfig holds MJPEG recording settings.
type RecordConfig struct {
	FPS     int `yaml:"fps"`
	Quality int `yaml:"quality"`
	Every   int `yaml:"every"` // record one frame per this many steps
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Stencil   model.Stencil
	MaskShape model.MaskShape
	ScreenW32 float32
	ScreenH32 float32
	Cells     int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks the values the engine cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Params().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := model.ParseStencil(c.Physics.Stencil); err != nil {
		errs = append(errs, err)
	}
	for _, p := range c.Probes {
		if p.Row < 0 || p.Row >= c.Grid.Rows || p.Col < 0 || p.Col >= c.Grid.Cols {
			errs = append(errs, fmt.Errorf("config: probe %q at (%d,%d) outside %dx%d grid",
				p.Name, p.Row, p.Col, c.Grid.Rows, c.Grid.Cols))
		}
	}
	if c.Record.Quality < 0 || c.Record.Quality > 100 {
		errs = append(errs, fmt.Errorf("config: record quality %d not in [0,100]", c.Record.Quality))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Stencil, _ = model.ParseStencil(c.Physics.Stencil)
	c.Derived.MaskShape = model.ParseMaskShape(c.Mask.Shape)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.Cells = c.Grid.Rows * c.Grid.Cols

	if c.Physics.StepsPerUpdate < 1 {
		c.Physics.StepsPerUpdate = 1
	}
	if c.Record.Every < 1 {
		c.Record.Every = 1
	}
}

// Params converts the configuration into an engine parameter set.
func (c *Config) Params() model.Params {
	return model.Params{
		K1: c.Kinetics.K1, K2: c.Kinetics.K2, K3: c.Kinetics.K3, K4: c.Kinetics.K4, K5: c.Kinetics.K5,
		KR1: c.Kinetics.KR1, KR2: c.Kinetics.KR2, KR3: c.Kinetics.KR3, KR4: c.Kinetics.KR4, KR5: c.Kinetics.KR5,
		DG: c.Diffusion.G, DX: c.Diffusion.X, DY: c.Diffusion.Y,
		A: c.Reservoir.A, B: c.Reservoir.B, Z: c.Reservoir.Z, Omega: c.Reservoir.Omega,
		G0: c.Initial.G, X0: c.Initial.X, Y0: c.Initial.Y,
		DT:   c.Physics.DT,
		Rows: c.Grid.Rows,
		Cols: c.Grid.Cols,
	}
}

// SetParams writes p back into the configuration sections.
func (c *Config) SetParams(p model.Params) {
	c.Kinetics = KineticsConfig{
		K1: p.K1, K2: p.K2, K3: p.K3, K4: p.K4, K5: p.K5,
		KR1: p.KR1, KR2: p.KR2, KR3: p.KR3, KR4: p.KR4, KR5: p.KR5,
	}
	c.Diffusion = DiffusionConfig{G: p.DG, X: p.DX, Y: p.DY}
	c.Reservoir = ReservoirConfig{A: p.A, B: p.B, Z: p.Z, Omega: p.Omega}
	c.Initial = InitialConfig{G: p.G0, X: p.X0, Y: p.Y0}
	c.Physics.DT = p.DT
	c.Grid = GridConfig{Rows: p.Rows, Cols: p.Cols}
	c.computeDerived()
}

// MaskPredicate converts the mask section into a predicate.
func (c *Config) MaskPredicate() model.Mask {
	return model.Mask{Shape: model.ParseMaskShape(c.Mask.Shape), Threshold: c.Mask.Threshold}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
