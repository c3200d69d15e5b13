package kmlgen

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"strings"

	kml "github.com/twpayne/go-kml"
	"github.com/twpayne/go-kml/icon"
	kmz "github.com/twpayne/go-kmz"

	"flood3d/pkg/colors"
	"flood3d/pkg/depth"
	"flood3d/pkg/kmzgeo"
	"flood3d/pkg/prism"
)

// NUM_GRAD shared styles cover the depth gradient in 5% steps.
const NUM_GRAD = 20

func styleName(bucket int) string {
	return fmt.Sprintf("styleGrad%03d", bucket*5)
}

func bucketFor(m *colors.Mapper, d float64) int {
	b := int(math.Round(m.Normalize(d) * NUM_GRAD))
	if b > NUM_GRAD {
		b = NUM_GRAD
	}
	return b
}

func gradientStyles(m *colors.Mapper) []kml.Element {
	lo, hi := m.Range()
	els := make([]kml.Element, 0, NUM_GRAD+1)
	for j := 0; j <= NUM_GRAD; j++ {
		d := lo + float64(j)/NUM_GRAD*(hi-lo)
		top := m.Top(d)
		edge := m.Edge(d)
		els = append(els, kml.SharedStyle(
			styleName(j),
			kml.LineStyle(
				kml.Width(1.5),
				kml.Color(color.RGBA{R: edge.R, G: edge.G, B: edge.B, A: edge.A}),
			),
			kml.PolyStyle(
				kml.Color(color.RGBA{R: top.R, G: top.G, B: top.B, A: top.A}),
			),
		))
	}
	return els
}

func addPolygon(p *prism.Prism, idx int, m *colors.Mapper) kml.Element {
	points := make([]kml.Coordinate, 0, len(p.Top))
	for _, v := range p.Top {
		points = append(points, kml.Coordinate{Lon: v.X, Lat: v.Y, Alt: p.Depth})
	}
	name := p.Name
	if name == "" {
		name = fmt.Sprintf("Flood area %d", idx)
	}
	pm := kml.Placemark(
		kml.Name(name),
		kml.Description(fmt.Sprintf("Depth %.2f m<br/>Centroid %.6f %.6f", p.Depth, p.CY, p.CX)),
		kml.StyleURL("#"+styleName(bucketFor(m, p.Depth))),
	)
	pm.Add(
		kml.Polygon(
			kml.AltitudeMode(kml.AltitudeModeRelativeToGround),
			kml.Extrude(true),
			kml.Tessellate(false),
			kml.OuterBoundaryIs(
				kml.LinearRing(
					kml.Coordinates(points...),
				),
			),
		),
	)
	return pm
}

func addLabel(p *prism.Prism) kml.Element {
	return kml.Placemark(
		kml.Name(fmt.Sprintf("%.1fm", p.Depth)),
		kml.Style(
			kml.IconStyle(
				kml.Scale(0.6),
				kml.Icon(
					kml.Href(icon.PaddleHref("wht-blank")),
				),
			),
		),
		kml.Point(
			kml.AltitudeMode(kml.AltitudeModeRelativeToGround),
			kml.Coordinates(kml.Coordinate{Lon: p.CX, Lat: p.CY, Alt: p.Depth}),
		),
	)
}

// Generate assembles the extruded flood scene as a KML document and
// writes it to outfn, zipped when the extension is .kmz.
func Generate(ds *kmzgeo.Dataset, prisms []*prism.Prism, m *colors.Mapper,
	res depth.Result, st depth.Stats, labels bool, outfn string, gv string) error {

	d := kml.Folder(kml.Name("Flood extent")).Add(kml.Open(true))
	d.Add(gradientStyles(m)...)

	f := kml.Folder(kml.Name("Water polygons")).Add(kml.Visibility(true))
	for i, p := range prisms {
		f.Add(addPolygon(p, i, m))
	}
	d.Add(f)

	if labels {
		lf := kml.Folder(kml.Name("Depth labels")).Add(kml.Visibility(true))
		for _, p := range prisms {
			lf.Add(addLabel(p))
		}
		d.Add(lf)
	}

	e := kml.ExtendedData(
		kml.Data(kml.Name("Source"), kml.Value(ds.Source)),
		kml.Data(kml.Name("CRS"), kml.Value(ds.CRS)),
		kml.Data(kml.Name("Polygons"), kml.Value(fmt.Sprintf("%d", len(prisms)))),
		kml.Data(kml.Name("Depths"), kml.Value(fmt.Sprintf("%.2f .. %.2f m", st.Min, st.Max))),
		kml.Data(kml.Name("Generator"), kml.Value(gv)),
	)
	if res.Synthetic {
		e.Add(kml.Data(kml.Name("Depth source"), kml.Value("synthetic")))
	} else {
		e.Add(kml.Data(kml.Name("Depth source"), kml.Value("column "+res.Column)))
	}
	d.Add(e)

	w, err := os.Create(outfn)
	if err != nil {
		return err
	}
	defer w.Close()
	return Write(w, d, strings.HasSuffix(strings.ToLower(outfn), ".kmz"))
}

// Write emits the document as KML, or as a KMZ archive when zipped.
func Write(w io.Writer, d kml.Element, zipped bool) error {
	if zipped {
		return kmz.NewKMZ(d).WriteIndent(w, "", "  ")
	}
	return kml.KML(d).WriteIndent(w, "", "  ")
}
