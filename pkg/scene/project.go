package scene

import (
	"math"

	"flood3d/pkg/prism"
)

// camera projects equal-aspect-normalised scene coordinates onto the
// screen plane: an orthographic view from azimuth/elevation (degrees),
// matching the familiar 3D-axes convention (azim rotates about the
// vertical axis, elev tilts the viewpoint up from the horizon).
type camera struct {
	cx, cy, cz float64
	r          float64
	sinA, cosA float64
	sinE, cosE float64
}

func newCamera(prisms []*prism.Prism, elev, azim float64) camera {
	cx, cy, cz, r := EqualAspect(prisms)
	ar := azim * math.Pi / 180
	er := elev * math.Pi / 180
	return camera{
		cx: cx, cy: cy, cz: cz, r: r,
		sinA: math.Sin(ar), cosA: math.Cos(ar),
		sinE: math.Sin(er), cosE: math.Cos(er),
	}
}

// project returns screen x/y in [-~1.8, ~1.8] units and the distance
// along the view axis (larger = closer to the viewer), the painter's
// sort key.
func (c camera) project(v prism.Vertex) (sx, sy, depth float64) {
	x := (v.X - c.cx) / c.r
	y := (v.Y - c.cy) / c.r
	z := (v.Z - c.cz) / c.r

	// rotate about the vertical axis, then tilt by elevation
	x1 := x*c.cosA + y*c.sinA
	y1 := -x*c.sinA + y*c.cosA
	depth = x1*c.cosE + z*c.sinE
	up := -x1*c.sinE + z*c.cosE
	return y1, up, depth
}
