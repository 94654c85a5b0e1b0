package sim

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/modelg/config"
	"github.com/pthm-cable/modelg/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	cfg.Grid.Rows = 8
	cfg.Grid.Cols = 10
	cfg.Physics.DT = 0.1
	cfg.Physics.Workers = 0
	cfg.Telemetry.StatsWindow = 2
	return cfg
}

func newRunner(t *testing.T, cfg *config.Config, opts Options) *Runner {
	t.Helper()
	r, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestStepAdvancesIteration(t *testing.T) {
	r := newRunner(t, testConfig(t), Options{})
	defer r.Close()

	for i := 0; i < 3; i++ {
		if err := r.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if got := r.Engine().Iteration(); got != 3 {
		t.Errorf("iteration = %d, want 3", got)
	}
	if got := r.History().Len(model.SpeciesX); got != 3 {
		t.Errorf("history length = %d, want 3", got)
	}
	if r.LastStepDuration() <= 0 {
		t.Error("step duration not measured")
	}
}

func TestRunHonorsRunFlag(t *testing.T) {
	r := newRunner(t, testConfig(t), Options{})
	defer r.Close()

	r.SetRunning(false)
	n, err := r.Run(5)
	if err != nil || n != 0 {
		t.Fatalf("Run with flag cleared = %d, %v; want 0, nil", n, err)
	}

	r.SetRunning(true)
	n, err = r.Run(5)
	if err != nil || n != 5 {
		t.Fatalf("Run = %d, %v; want 5, nil", n, err)
	}
}

func TestRunUntilStopsAtTarget(t *testing.T) {
	r := newRunner(t, testConfig(t), Options{StepsPerUpdate: 4})
	defer r.Close()

	tests := []struct {
		target uint64
		want   int
		iter   uint64
	}{
		{6, 4, 4},
		{6, 2, 6},
		{6, 0, 6},
		{3, 0, 6},
	}
	for _, tt := range tests {
		n, err := r.RunUntil(tt.target)
		if err != nil {
			t.Fatalf("RunUntil(%d): %v", tt.target, err)
		}
		if n != tt.want {
			t.Errorf("RunUntil(%d) = %d steps, want %d", tt.target, n, tt.want)
		}
		if got := r.Engine().Iteration(); got != tt.iter {
			t.Errorf("after RunUntil(%d): iteration = %d, want %d", tt.target, got, tt.iter)
		}
	}
}

func TestStepsPerUpdateClamped(t *testing.T) {
	r := newRunner(t, testConfig(t), Options{StepsPerUpdate: 4})
	defer r.Close()

	if got := r.StepsPerUpdate(); got != 4 {
		t.Errorf("StepsPerUpdate = %d, want 4", got)
	}
	r.SetStepsPerUpdate(0)
	if got := r.StepsPerUpdate(); got != 1 {
		t.Errorf("clamped low = %d, want 1", got)
	}
	r.SetStepsPerUpdate(10000)
	if got := r.StepsPerUpdate(); got != maxStepsPerUpdate {
		t.Errorf("clamped high = %d, want %d", got, maxStepsPerUpdate)
	}
}

func TestApplyParams(t *testing.T) {
	cfg := testConfig(t)
	cfg.Probes = []config.ProbeConfig{
		{Name: "inside", Row: 2, Col: 2},
		{Name: "edge", Row: 7, Col: 9},
	}
	r := newRunner(t, cfg, Options{})
	defer r.Close()

	if _, err := r.Run(2); err != nil {
		t.Fatal(err)
	}

	t.Run("same grid keeps iteration", func(t *testing.T) {
		p, m := r.Params()
		p.K1 = 2
		m.Shape = model.MaskVertical
		resized, err := r.ApplyParams(p, m)
		if err != nil || resized {
			t.Fatalf("ApplyParams = %v, %v; want false, nil", resized, err)
		}
		if got := r.Engine().Iteration(); got != 2 {
			t.Errorf("iteration = %d, want 2", got)
		}
		gotP, gotM := r.Params()
		if gotP.K1 != 2 || gotM.Shape != model.MaskVertical {
			t.Errorf("active set not replaced: k1=%v mask=%v", gotP.K1, gotM.Shape)
		}
	})

	t.Run("resize resets and drops probes", func(t *testing.T) {
		p, m := r.Params()
		p.Rows, p.Cols = 5, 5
		resized, err := r.ApplyParams(p, m)
		if err != nil || !resized {
			t.Fatalf("ApplyParams = %v, %v; want true, nil", resized, err)
		}
		if got := r.Engine().Iteration(); got != 0 {
			t.Errorf("iteration = %d, want 0", got)
		}
		rows, cols := r.Engine().Size()
		if rows != 5 || cols != 5 {
			t.Errorf("size = %dx%d, want 5x5", rows, cols)
		}
		if got := r.ProbeCount(); got != 1 {
			t.Errorf("probes = %d, want 1", got)
		}
		if err := r.Step(); err != nil {
			t.Errorf("Step after resize: %v", err)
		}
	})

	t.Run("invalid set rejected", func(t *testing.T) {
		before, _ := r.Params()
		p := before
		p.DT = 0
		if _, err := r.ApplyParams(p, model.Mask{}); !errors.Is(err, model.ErrInvalidTimeStep) {
			t.Errorf("err = %v, want ErrInvalidTimeStep", err)
		}
		if after, _ := r.Params(); after != before {
			t.Error("invalid set replaced the active one")
		}
	})
}

func TestReset(t *testing.T) {
	r := newRunner(t, testConfig(t), Options{})
	defer r.Close()

	if _, err := r.Run(3); err != nil {
		t.Fatal(err)
	}
	if err := r.Reset(); err != nil {
		t.Fatal(err)
	}
	if got := r.Engine().Iteration(); got != 0 {
		t.Errorf("iteration after reset = %d, want 0", got)
	}
}

func TestBackgroundLoop(t *testing.T) {
	r := newRunner(t, testConfig(t), Options{StepsPerUpdate: 3})
	defer r.Close()

	r.Start()
	deadline := time.Now().Add(5 * time.Second)
	for r.Engine().Iteration() < 6 {
		if time.Now().After(deadline) {
			t.Fatalf("loop stalled at iteration %d", r.Engine().Iteration())
		}
		r.Trigger()
		time.Sleep(time.Millisecond)
	}
	r.Stop()

	if r.Running() {
		t.Error("run flag still set after Stop")
	}
	stopped := r.Engine().Iteration()
	r.Trigger()
	time.Sleep(10 * time.Millisecond)
	if got := r.Engine().Iteration(); got != stopped {
		t.Errorf("stepped after Stop: %d -> %d", stopped, got)
	}
}

func TestOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Probes = []config.ProbeConfig{{Name: "center", Row: 4, Col: 5}}
	cfg.Record.Every = 1

	video := filepath.Join(dir, "run.avi")
	r := newRunner(t, cfg, Options{OutputDir: dir, RecordPath: video})
	if !r.Recording() {
		t.Fatal("recorder not open")
	}
	if _, err := r.Run(4); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tests := []struct {
		file  string
		lines int
	}{
		{"telemetry.csv", 3},
		{"perf.csv", 3},
		{"probes.csv", 5},
	}
	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(dir, tt.file))
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != tt.lines {
			t.Errorf("%s: %d lines, want %d", tt.file, len(lines), tt.lines)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
	info, err := os.Stat(video)
	if err != nil || info.Size() == 0 {
		t.Errorf("video missing or empty: %v", err)
	}
}

func TestResizeWritesBufferedSamples(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Telemetry.StatsWindow = 100
	cfg.Probes = []config.ProbeConfig{{Name: "corner", Row: 2, Col: 2}}

	r := newRunner(t, cfg, Options{OutputDir: dir})
	if _, err := r.Run(3); err != nil {
		t.Fatal(err)
	}

	p, m := r.Params()
	p.Rows, p.Cols = 5, 5
	if _, err := r.ApplyParams(p, m); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "probes.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Errorf("probes.csv: %d lines, want 4 (header and 3 samples)", len(lines))
	}
}
