package renderer

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/icza/mjpeg"

	"github.com/pthm-cable/modelg/model"
)

// Recorder writes committed frames to an MJPEG AVI file.
type Recorder struct {
	writer  mjpeg.AviWriter
	quality int
	mode    Mode
	rows    int
	cols    int

	img    *image.RGBA
	buf    bytes.Buffer
	frames int
}

// NewRecorder opens path for a rows x cols video at fps frames per second.
func NewRecorder(path string, rows, cols, fps, quality int, mode Mode) (*Recorder, error) {
	if fps < 1 {
		fps = 30
	}
	w, err := mjpeg.New(path, int32(cols), int32(rows), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("creating video %s: %w", path, err)
	}
	return &Recorder{
		writer:  w,
		quality: quality,
		mode:    mode,
		rows:    rows,
		cols:    cols,
	}, nil
}

// AddFrame encodes f as one video frame. Frames of another grid size are
// rejected since the AVI header is fixed.
func (r *Recorder) AddFrame(f model.Frame) error {
	if r == nil {
		return nil
	}
	if f.Rows != r.rows || f.Cols != r.cols {
		return fmt.Errorf("recorder: frame %dx%d, video %dx%d: %w",
			f.Rows, f.Cols, r.rows, r.cols, model.ErrDimensionMismatch)
	}
	r.img = Image(r.img, f, r.mode)
	r.buf.Reset()
	if err := jpeg.Encode(&r.buf, r.img, &jpeg.Options{Quality: r.quality}); err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	if err := r.writer.AddFrame(r.buf.Bytes()); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames written.
func (r *Recorder) Frames() int {
	if r == nil {
		return 0
	}
	return r.frames
}

// Close finalizes the AVI index.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	return r.writer.Close()
}
