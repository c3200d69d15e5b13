package prism

import (
	"math"

	"github.com/deet/simpleline"

	"flood3d/pkg/kmzgeo"
)

// MinHeight keeps every polygon visible: a zero or negative resolved
// depth still extrudes by this much.
const MinHeight = 0.001

type Vertex struct {
	X, Y, Z float64
}

type Face []Vertex

// Prism is the extrusion of one exterior ring: a top face at Z = Height
// and one vertical quad per ring edge. CX/CY is the signed-area
// centroid of the ring, the anchor for depth labels.
type Prism struct {
	Name   string
	Top    Face
	Sides  []Face
	Height float64
	Depth  float64
	CX, CY float64
}

// Build extrudes a closed ring (first == last) to the given height.
// Rings with fewer than 3 unique vertices cannot form a face and
// return ok = false.
func Build(ring [][2]float64, height float64) (*Prism, bool) {
	if uniqueVertices(ring) < 3 {
		return nil, false
	}
	if height < MinHeight {
		height = MinHeight
	}
	ring = ensureCCW(ring)

	n := len(ring)
	p := &Prism{Height: height}
	p.Top = make(Face, n)
	for i, v := range ring {
		p.Top[i] = Vertex{X: v[0], Y: v[1], Z: height}
	}
	// One quad per edge; the closing vertex duplicates the first,
	// so the last edge is ring[n-2] -> ring[n-1] and no wrap is needed.
	p.Sides = make([]Face, 0, n-1)
	for i := 0; i < n-1; i++ {
		v0, v1 := ring[i], ring[i+1]
		p.Sides = append(p.Sides, Face{
			{X: v0[0], Y: v0[1], Z: 0},
			{X: v1[0], Y: v1[1], Z: 0},
			{X: v1[0], Y: v1[1], Z: height},
			{X: v0[0], Y: v0[1], Z: height},
		})
	}
	p.CX, p.CY = centroid(ring)
	return p, true
}

// BuildAll extrudes every record at depth * scale. Degenerate rings are
// skipped and counted, never silently dropped. epsilon > 0 simplifies
// each ring first.
func BuildAll(recs []kmzgeo.PolygonRecord, depths []float64, scale, epsilon float64) (prisms []*Prism, skipped int) {
	for i, r := range recs {
		ring := r.Ring
		if epsilon > 0 {
			ring = Simplify(ring, epsilon)
		}
		p, ok := Build(ring, depths[i]*scale)
		if !ok {
			skipped++
			continue
		}
		p.Name = r.Name
		p.Depth = depths[i]
		prisms = append(prisms, p)
	}
	return prisms, skipped
}

// Simplify runs Ramer-Douglas-Peucker over the ring. The endpoints
// survive RDP, so a closed ring stays closed. If simplification
// degenerates the ring below a triangle, the original wins.
func Simplify(ring [][2]float64, epsilon float64) [][2]float64 {
	pts := make([]simpleline.Point, 0, len(ring))
	for _, v := range ring {
		pt := simpleline.Point3d{X: v[0], Y: v[1]}
		pts = append(pts, &pt)
	}
	res, err := simpleline.RDP(pts, epsilon, simpleline.Euclidean, true)
	if err != nil || len(res) < 4 {
		return ring
	}
	out := make([][2]float64, len(res))
	for i, p := range res {
		v := p.Vector()
		out[i] = [2]float64{v[0], v[1]}
	}
	return out
}

func uniqueVertices(ring [][2]float64) int {
	seen := make(map[[2]float64]struct{}, len(ring))
	for _, v := range ring {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// signedArea is positive for counter-clockwise rings.
func signedArea(ring [][2]float64) float64 {
	var a float64
	for i := 0; i < len(ring)-1; i++ {
		a += ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
	}
	return a / 2
}

// ensureCCW fixes the winding so side quads built base-first present
// outward normals.
func ensureCCW(ring [][2]float64) [][2]float64 {
	if signedArea(ring) >= 0 {
		return ring
	}
	out := make([][2]float64, len(ring))
	for i, v := range ring {
		out[len(ring)-1-i] = v
	}
	return out
}

// centroid is the signed-area-weighted centre of the ring, falling back
// to the vertex mean when the area vanishes.
func centroid(ring [][2]float64) (cx, cy float64) {
	a := signedArea(ring)
	if math.Abs(a) < 1e-12 {
		for _, v := range ring[:len(ring)-1] {
			cx += v[0]
			cy += v[1]
		}
		n := float64(len(ring) - 1)
		return cx / n, cy / n
	}
	for i := 0; i < len(ring)-1; i++ {
		cross := ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
		cx += (ring[i][0] + ring[i+1][0]) * cross
		cy += (ring[i][1] + ring[i+1][1]) * cross
	}
	return cx / (6 * a), cy / (6 * a)
}
