package anim

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrEncoderUnavailable = errors.New("encoder unavailable")

// Rotation defaults: a 2 degree step gives 180 frames for a full turn.
const (
	DefaultStep = 2.0
	DefaultFPS  = 20
)

// Sequence is the finite, single-pass series of azimuth angles for one
// 360 degree rotation: start, start+step, ... excluding the duplicate
// closing frame. Frame order is significant; consumers must not
// reorder.
type Sequence struct {
	start float64
	step  float64
	n     int
	i     int
}

func NewSequence(start, step float64) *Sequence {
	if step <= 0 {
		step = DefaultStep
	}
	return &Sequence{start: start, step: step, n: int(360 / step)}
}

func (s *Sequence) Len() int { return s.n }

// Next yields the azimuth of the next frame, or false when the
// rotation is complete. A consumed sequence is not restartable.
func (s *Sequence) Next() (float64, bool) {
	if s.i >= s.n {
		return 0, false
	}
	az := s.start + float64(s.i)*s.step
	s.i++
	return az, true
}

// FrameFunc pulls rendered frames in order; it returns false after the
// final frame. The pull style keeps the whole pipeline synchronous and
// lets tests drive encoders without any renderer.
type FrameFunc func() (image.Image, bool)

// Frames adapts a render callback and a sequence into a FrameFunc.
func Frames(seq *Sequence, render func(azim float64) image.Image) FrameFunc {
	return func() (image.Image, bool) {
		if az, ok := seq.Next(); ok {
			return render(az), true
		}
		return nil, false
	}
}

// Encoder turns an ordered frame stream into encoded video/GIF bytes.
// Injected so the animator is testable with no real backend installed.
type Encoder interface {
	Encode(w io.Writer, frames FrameFunc, fps int) error
}

// ForPath selects an encoder from the output extension.
func ForPath(path string) (Encoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gif":
		return &GIFEncoder{}, nil
	case ".mp4":
		return &FFmpegEncoder{}, nil
	default:
		return nil, fmt.Errorf("%w: no backend for %q", ErrEncoderUnavailable, filepath.Ext(path))
	}
}

// WriteOutput writes through a temp file in the destination directory
// and renames only on success, so an interrupted encode never leaves a
// truncated file masquerading as output.
func WriteOutput(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err = write(tmp); err != nil {
		tmp.Close()
		return err
	}
	// CreateTemp files are 0600; published output should not be
	tmp.Chmod(0o644)
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
