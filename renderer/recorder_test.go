package renderer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/modelg/model"
)

func TestRecorderWritesFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.avi")
	rec, err := NewRecorder(path, 8, 10, 10, 80, ModeRGB)
	if err != nil {
		t.Fatal(err)
	}

	p := model.DefaultParams(8, 10)
	e, err := model.NewEngine(p)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := e.Step(p, model.NoMask); err != nil {
			t.Fatal(err)
		}
		var werr error
		e.View(func(f model.Frame) { werr = rec.AddFrame(f) })
		if werr != nil {
			t.Fatalf("AddFrame: %v", werr)
		}
	}

	bad := model.NewField(4, 4, model.Conc{})
	if err := rec.AddFrame(model.Frame{Rows: 4, Cols: 4, Cells: bad.Cells}); !errors.Is(err, model.ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch, got %v", err)
	}

	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
	if rec.Frames() != 3 {
		t.Errorf("frames = %d, want 3", rec.Frames())
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Errorf("video not written: %v", err)
	}
}

func TestNilRecorder(t *testing.T) {
	var rec *Recorder
	if err := rec.AddFrame(model.Frame{}); err != nil {
		t.Error(err)
	}
	if err := rec.Close(); err != nil {
		t.Error(err)
	}
}
