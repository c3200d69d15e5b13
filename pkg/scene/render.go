package scene

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"sort"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/jung-kurt/gofpdf"

	"flood3d/pkg/prism"
)

const margin = 60.0

type drawFace struct {
	xs, ys []float64
	key    float64
	fill   color.NRGBA
	edge   color.NRGBA
	lw     float64
}

// Render produces one frame at the scene's configured view angles.
func (s *Scene) Render() image.Image {
	return s.RenderAt(s.Elev, s.Azim)
}

// RenderAt produces one frame at an explicit elevation/azimuth without
// mutating the scene, which keeps the rotation animator side-effect
// free.
func (s *Scene) RenderAt(elev, azim float64) image.Image {
	st := s.Style
	dc := gg.NewContext(st.Width, st.Height)
	dc.SetHexColor(st.Background)
	dc.Clear()

	if len(s.Prisms) == 0 {
		s.drawTitle(dc)
		return dc.Image()
	}

	cam := newCamera(s.Prisms, elev, azim)
	w, h := float64(st.Width), float64(st.Height)
	half := w / 2
	if h < w {
		half = h / 2
	}
	scale := (half - margin) / 1.8
	toPx := func(sx, sy float64) (float64, float64) {
		return w/2 + sx*scale, h/2 - sy*scale
	}

	if st.ShowGrid {
		s.drawBasePane(dc, cam, toPx)
	}

	faces := make([]drawFace, 0, len(s.Prisms)*8)
	for _, p := range s.Prisms {
		faces = append(faces, s.projectFace(cam, toPx, p.Top, s.Mapper.Top(p.Depth), s.Mapper.Edge(p.Depth), 0.8))
		for _, side := range p.Sides {
			faces = append(faces, s.projectFace(cam, toPx, side, s.Mapper.Side(p.Depth), s.Mapper.Edge(p.Depth), 0.3))
		}
	}
	// painter's algorithm: farthest faces first
	sort.SliceStable(faces, func(i, j int) bool { return faces[i].key < faces[j].key })
	for _, f := range faces {
		dc.MoveTo(f.xs[0], f.ys[0])
		for i := 1; i < len(f.xs); i++ {
			dc.LineTo(f.xs[i], f.ys[i])
		}
		dc.ClosePath()
		dc.SetColor(f.fill)
		dc.FillPreserve()
		dc.SetColor(f.edge)
		dc.SetLineWidth(f.lw)
		dc.Stroke()
	}

	if st.ShowLabels {
		s.drawDepthLabels(dc, cam, toPx)
	}
	s.drawAxisLabels(dc, cam, toPx)
	s.drawTitle(dc)
	return dc.Image()
}

func (s *Scene) projectFace(cam camera, toPx func(float64, float64) (float64, float64), face prism.Face, fill, edge color.NRGBA, lw float64) drawFace {
	f := drawFace{
		xs:   make([]float64, len(face)),
		ys:   make([]float64, len(face)),
		fill: fill,
		edge: edge,
		lw:   lw,
	}
	for i, v := range face {
		sx, sy, d := cam.project(v)
		f.xs[i], f.ys[i] = toPx(sx, sy)
		f.key += d
	}
	f.key /= float64(len(face))
	return f
}

// drawBasePane fills the data footprint at z=0 and overlays a dashed
// grid, the stand-in for the axes pane of the original figure.
func (s *Scene) drawBasePane(dc *gg.Context, cam camera, toPx func(float64, float64) (float64, float64)) {
	minx, miny, maxx, maxy, _ := dataBounds(s.Prisms)
	corners := []prism.Vertex{
		{X: minx, Y: miny}, {X: maxx, Y: miny},
		{X: maxx, Y: maxy}, {X: minx, Y: maxy},
	}
	for i, v := range corners {
		sx, sy, _ := cam.project(v)
		px, py := toPx(sx, sy)
		if i == 0 {
			dc.MoveTo(px, py)
		} else {
			dc.LineTo(px, py)
		}
	}
	dc.ClosePath()
	dc.SetColor(hexColor(s.Style.Pane, 0xff))
	dc.FillPreserve()
	dc.SetColor(hexColor(s.Style.Grid, 0x60))
	dc.SetLineWidth(1)
	dc.Stroke()

	const div = 6
	dc.SetDash(4, 4)
	dc.SetColor(hexColor(s.Style.Grid, 0x4d))
	line := func(a, b prism.Vertex) {
		ax, ay, _ := cam.project(a)
		bx, by, _ := cam.project(b)
		x0, y0 := toPx(ax, ay)
		x1, y1 := toPx(bx, by)
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()
	}
	for i := 1; i < div; i++ {
		t := float64(i) / div
		x := minx + t*(maxx-minx)
		y := miny + t*(maxy-miny)
		line(prism.Vertex{X: x, Y: miny}, prism.Vertex{X: x, Y: maxy})
		line(prism.Vertex{X: minx, Y: y}, prism.Vertex{X: maxx, Y: y})
	}
	dc.SetDash()
}

func (s *Scene) drawDepthLabels(dc *gg.Context, cam camera, toPx func(float64, float64) (float64, float64)) {
	for _, p := range s.Prisms {
		sx, sy, _ := cam.project(prism.Vertex{X: p.CX, Y: p.CY, Z: p.Height + 0.04*cam.r})
		px, py := toPx(sx, sy)
		text := fmt.Sprintf("%.1fm", p.Depth)
		tw, th := dc.MeasureString(text)
		dc.DrawRoundedRectangle(px-tw/2-5, py-th-5, tw+10, th+8, 4)
		dc.SetRGBA(0, 0, 0.5, 0.8)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(text, px, py-3, 0.5, 0)
	}
}

func (s *Scene) drawAxisLabels(dc *gg.Context, cam camera, toPx func(float64, float64) (float64, float64)) {
	minx, miny, maxx, maxy, maxz := dataBounds(s.Prisms)
	dc.SetColor(color.NRGBA{R: 0xe6, G: 0xe6, B: 0xe6, A: 0xff})
	at := func(v prism.Vertex, dx, dy float64, text string) {
		sx, sy, _ := cam.project(v)
		px, py := toPx(sx, sy)
		dc.DrawStringAnchored(text, px+dx, py+dy, 0.5, 0.5)
	}
	at(prism.Vertex{X: (minx + maxx) / 2, Y: miny}, 0, 28, "Longitude")
	at(prism.Vertex{X: minx, Y: (miny + maxy) / 2}, -42, 10, "Latitude")
	at(prism.Vertex{X: minx, Y: miny, Z: maxz}, -52, -10, "Water Depth (m)")
}

func (s *Scene) drawTitle(dc *gg.Context) {
	if s.Style.Title == "" {
		return
	}
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(s.Style.Title, float64(s.Style.Width)/2, 24, 0.5, 0.5)
}

// EncodeStatic writes one rendered frame in the requested format:
// png, jpg/jpeg, or pdf (the frame embedded on a landscape A4 page).
func (s *Scene) EncodeStatic(w io.Writer, format string) error {
	img := s.Render()
	switch format {
	case "png":
		return pngEncode(w, img)
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 92})
	case "pdf":
		return s.encodePDF(w, img)
	default:
		return fmt.Errorf("unsupported static format %q", format)
	}
}

func (s *Scene) encodePDF(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	if err := pngEncode(&buf, img); err != nil {
		return err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("frame", opt, &buf)
	iw := 277.0
	ih := iw * float64(s.Style.Height) / float64(s.Style.Width)
	if ih > 190 {
		iw = iw * 190 / ih
		ih = 190
	}
	pdf.ImageOptions("frame", (297-iw)/2, (210-ih)/2, iw, ih, false, opt, 0, "")
	return pdf.Output(w)
}

func pngEncode(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func hexColor(s string, alpha uint8) color.NRGBA {
	if len(s) == 7 && s[0] == '#' {
		r, e1 := strconv.ParseUint(s[1:3], 16, 8)
		g, e2 := strconv.ParseUint(s[3:5], 16, 8)
		b, e3 := strconv.ParseUint(s[5:7], 16, 8)
		if e1 == nil && e2 == nil && e3 == nil {
			return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: alpha}
		}
	}
	return color.NRGBA{A: alpha}
}
