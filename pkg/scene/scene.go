package scene

import (
	"flood3d/pkg/colors"
	"flood3d/pkg/prism"
)

// Style is the cosmetic configuration of a rendered frame. The
// defaults reproduce the dark water theme: navy page, darker axes
// pane, dashed-blue grid.
type Style struct {
	Width      int
	Height     int
	Background string
	Pane       string
	Grid       string
	Title      string
	ShowGrid   bool
	ShowLabels bool
}

func DefaultStyle() Style {
	return Style{
		Width:      1400,
		Height:     1000,
		Background: "#0f2537",
		Pane:       "#0a1929",
		Grid:       "#4a90e2",
		Title:      "Flood Water Level Visualization",
		ShowGrid:   true,
	}
}

// Scene owns everything one render needs: the prisms, their colour
// mapper, styling and the view angles. It is an explicit value passed
// through the pipeline; there is no shared figure state anywhere.
type Scene struct {
	Prisms []*prism.Prism
	Mapper *colors.Mapper
	Style  Style
	Elev   float64
	Azim   float64
}

func New(prisms []*prism.Prism, m *colors.Mapper, st Style) *Scene {
	return &Scene{
		Prisms: prisms,
		Mapper: m,
		Style:  st,
		Elev:   45,
		Azim:   -120,
	}
}

// EqualAspect returns the centre and half-size of the cube that frames
// the prisms with the same scale on all three axes. Longitude, latitude
// and height ranges differ wildly; without this the extrusion looks
// flattened or stretched.
func EqualAspect(prisms []*prism.Prism) (cx, cy, cz, r float64) {
	if len(prisms) == 0 {
		return 0, 0, 0, 1
	}
	minx, miny, maxx, maxy, maxz := dataBounds(prisms)
	minz := 0.0
	cx = (minx + maxx) / 2
	cy = (miny + maxy) / 2
	cz = (minz + maxz) / 2
	r = (maxx - minx) / 2
	if d := (maxy - miny) / 2; d > r {
		r = d
	}
	if d := (maxz - minz) / 2; d > r {
		r = d
	}
	if r == 0 {
		r = 1
	}
	return cx, cy, cz, r
}

func dataBounds(prisms []*prism.Prism) (minx, miny, maxx, maxy, maxz float64) {
	minx, maxx = prisms[0].Top[0].X, prisms[0].Top[0].X
	miny, maxy = prisms[0].Top[0].Y, prisms[0].Top[0].Y
	maxz = prisms[0].Height
	for _, p := range prisms {
		for _, v := range p.Top {
			if v.X < minx {
				minx = v.X
			}
			if v.X > maxx {
				maxx = v.X
			}
			if v.Y < miny {
				miny = v.Y
			}
			if v.Y > maxy {
				maxy = v.Y
			}
		}
		if p.Height > maxz {
			maxz = p.Height
		}
	}
	return minx, miny, maxx, maxy, maxz
}
