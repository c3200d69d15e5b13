package anim

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"os/exec"
	"strconv"
)

// GIFEncoder quantises each frame to the Plan9 palette with
// Floyd-Steinberg dithering and writes an animated GIF.
type GIFEncoder struct{}

func (e *GIFEncoder) Encode(w io.Writer, frames FrameFunc, fps int) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	delay := 100 / fps // GIF delay unit is 10ms
	g := &gif.GIF{}
	for {
		img, ok := frames()
		if !ok {
			break
		}
		pm := image.NewPaletted(img.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(pm, img.Bounds(), img, image.Point{})
		g.Image = append(g.Image, pm)
		g.Delay = append(g.Delay, delay)
	}
	if len(g.Image) == 0 {
		return fmt.Errorf("gif: no frames produced")
	}
	return gif.EncodeAll(w, g)
}

// FFmpegEncoder pipes PNG frames into an external ffmpeg process and
// streams a fragmented MP4 back out. Bin overrides the binary name,
// mainly for tests.
type FFmpegEncoder struct {
	Bin string
}

func (e *FFmpegEncoder) Encode(w io.Writer, frames FrameFunc, fps int) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	bin := e.Bin
	if bin == "" {
		bin = "ffmpeg"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("%w: mp4 output needs %s on PATH", ErrEncoderUnavailable, bin)
	}
	cmd := exec.Command(path,
		"-y", "-loglevel", "error",
		"-f", "image2pipe", "-vcodec", "png", "-r", strconv.Itoa(fps), "-i", "-",
		"-an", "-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-movflags", "+frag_keyframe+empty_moov", "-f", "mp4", "-")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	cmd.Stdout = w
	if err = cmd.Start(); err != nil {
		return err
	}
	for {
		img, ok := frames()
		if !ok {
			break
		}
		if err = png.Encode(stdin, img); err != nil {
			stdin.Close()
			cmd.Wait()
			return err
		}
	}
	if err = stdin.Close(); err != nil {
		cmd.Wait()
		return err
	}
	return cmd.Wait()
}
