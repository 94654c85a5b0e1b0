package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/modelg/config"
	"github.com/pthm-cable/modelg/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	recordPath := flag.String("record", "", "Write an MJPEG AVI of the field to this path")
	maxSteps := flag.Uint64("max-steps", 0, "Stop after N steps (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 0, "Steps per update call (0 = use config)")
	plot := flag.Bool("plot", false, "Print an ASCII plot of the species ranges on exit")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	opts := game.Options{
		OutputDir:      *outputDir,
		RecordPath:     *recordPath,
		LogStats:       *logStats,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		if *maxSteps == 0 {
			slog.Error("headless mode needs -max-steps")
			os.Exit(1)
		}

		g, err := game.NewGameWithOptions(opts)
		if err != nil {
			slog.Error("failed to start", "error", err)
			os.Exit(1)
		}

		slog.Info("starting headless simulation",
			"rows", cfg.Grid.Rows,
			"cols", cfg.Grid.Cols,
			"max_steps", *maxSteps,
		)

		for g.Iteration() < *maxSteps {
			if err := g.UpdateHeadless(*maxSteps); err != nil {
				slog.Error("simulation stopped", "error", err, "iteration", g.Iteration())
				break
			}
		}
		slog.Info("max steps reached", "iteration", g.Iteration(), "extrema", g.Extrema())

		g.Unload()
		if *plot {
			fmt.Print(g.History().Plot(12, 72))
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Model G")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxSteps > 0 && g.Iteration() >= *maxSteps {
			break
		}
	}
}
