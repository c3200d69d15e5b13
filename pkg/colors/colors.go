package colors

import (
	"image/color"

	"github.com/mazznoer/colorgrad"

	"flood3d/pkg/depth"
)

// Fixed alphas: water surface reads translucent, walls slightly more so.
const (
	topAlpha  = 0xb2 // 0.7
	sideAlpha = 0x99 // 0.6
)

// Config selects the gradient endpoints and the normalisation range.
// With Custom unset the mapper samples the Blues ramp over [0.4, 1.0],
// light shallow water to navy deep water.
type Config struct {
	Custom  bool
	Shallow color.RGBA
	Deep    color.RGBA
	Robust  bool // normalise over p05..p95 instead of min..max
}

// Mapper converts a depth value into face colours for one dataset.
// Colour samples are recomputed on demand, never stored.
type Mapper struct {
	grad   colorgrad.Gradient
	custom bool
	lo, hi float64
}

func NewMapper(cfg Config, st depth.Stats) (*Mapper, error) {
	m := &Mapper{custom: cfg.Custom}
	if cfg.Robust {
		m.lo, m.hi = st.P05, st.P95
	} else {
		m.lo, m.hi = st.Min, st.Max
	}
	if cfg.Custom {
		grad, err := colorgrad.NewGradient().
			Colors(gradColor(cfg.Shallow), gradColor(cfg.Deep)).
			Mode(colorgrad.BlendRgb).
			Build()
		if err != nil {
			return nil, err
		}
		m.grad = grad
	} else {
		m.grad = colorgrad.Blues()
	}
	return m, nil
}

// Range is the depth interval colours are normalised over.
func (m *Mapper) Range() (lo, hi float64) {
	return m.lo, m.hi
}

// Normalize clamps t to [0,1]; a flat depth range maps everything to
// the midpoint colour.
func (m *Mapper) Normalize(d float64) float64 {
	if m.hi <= m.lo {
		return 0.5
	}
	t := (d - m.lo) / (m.hi - m.lo)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t
}

func (m *Mapper) base(d float64) (r, g, b uint8) {
	t := m.Normalize(d)
	if !m.custom {
		t = 0.4 + 0.6*t
	}
	cr, cg, cb, _ := m.grad.At(t).RGBA()
	return uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8)
}

// Top is the water-surface colour for the given depth.
func (m *Mapper) Top(d float64) color.NRGBA {
	r, g, b := m.base(d)
	return color.NRGBA{R: r, G: g, B: b, A: topAlpha}
}

// Side darkens the surface colour for the vertical walls.
func (m *Mapper) Side(d float64) color.NRGBA {
	r, g, b := m.base(d)
	return color.NRGBA{
		R: scale(r, 0.7),
		G: scale(g, 0.7),
		B: scale(b, 0.7),
		A: sideAlpha,
	}
}

// Edge is the opaque highlight used for face outlines.
func (m *Mapper) Edge(d float64) color.NRGBA {
	r, g, b := m.base(d)
	return color.NRGBA{
		R: scale(r, 1.2),
		G: scale(g, 1.2),
		B: scale(b, 1.2),
		A: 0xff,
	}
}

// gradColor lifts an 8-bit endpoint into colorgrad's float channels.
func gradColor(c color.RGBA) colorgrad.Color {
	return colorgrad.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

func scale(c uint8, f float64) uint8 {
	v := float64(c) * f
	if v > 255 {
		v = 255
	}
	return uint8(v)
}
