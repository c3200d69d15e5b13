package kmzgeo

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	ErrNotFound = errors.New("input file not found")
	ErrFormat   = errors.New("no usable vector geometry")
)

// DefaultCRS is assumed when the document carries no reference system.
const DefaultCRS = "EPSG:4326"

// PolygonRecord is one flood-area unit: a closed exterior ring
// (first == last vertex) plus the attribute columns parsed from
// the placemark. MultiGeometry placemarks are expanded to one
// record per outer ring before this type is ever seen.
type PolygonRecord struct {
	Name       string
	Ring       [][2]float64 // lon, lat
	Attributes map[string]string
}

type Dataset struct {
	Records []PolygonRecord
	CRS     string
	Source  string
}

type kmlLinearRing struct {
	Coordinates string `xml:"coordinates"`
}

type kmlBoundary struct {
	Ring kmlLinearRing `xml:"LinearRing"`
}

type kmlPolygon struct {
	Outer kmlBoundary `xml:"outerBoundaryIs"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlSimpleData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type kmlSchemaData struct {
	Fields []kmlSimpleData `xml:"SimpleData"`
}

type kmlExtendedData struct {
	Data       []kmlData       `xml:"Data"`
	SchemaData []kmlSchemaData `xml:"SchemaData"`
}

type kmlMultiGeometry struct {
	Polygons []kmlPolygon `xml:"Polygon"`
}

type kmlPlacemark struct {
	Name     string            `xml:"name"`
	Polygon  *kmlPolygon       `xml:"Polygon"`
	Multi    *kmlMultiGeometry `xml:"MultiGeometry"`
	Extended *kmlExtendedData  `xml:"ExtendedData"`
}

type kmlContainer struct {
	Documents  []kmlContainer `xml:"Document"`
	Folders    []kmlContainer `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

// Load reads a KMZ archive (or a bare KML file) and returns its polygon
// records. Points and linestrings are ignored; a file with nothing else
// is an ErrFormat.
func Load(path string) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	var raw []byte
	var err error
	if strings.HasSuffix(strings.ToLower(path), ".kml") {
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		raw, err = extractKML(path)
		if err != nil {
			return nil, err
		}
	}
	ds, err := parseKML(raw)
	if err != nil {
		return nil, err
	}
	ds.Source = path
	return ds, nil
}

// extractKML returns the content of the first *.kml entry in the archive.
func extractKML(path string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a zip archive", ErrFormat, path)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".kml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%w: no .kml inside %s", ErrFormat, path)
}

func parseKML(raw []byte) (*Dataset, error) {
	var root kmlContainer
	if err := xml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	ds := &Dataset{CRS: DefaultCRS}
	collect(&root, ds)
	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("%w: no polygons in document", ErrFormat)
	}
	return ds, nil
}

func collect(c *kmlContainer, ds *Dataset) {
	for _, pm := range c.Placemarks {
		attrs := parseAttributes(pm.Extended)
		if pm.Polygon != nil {
			addPolygon(ds, pm.Name, pm.Polygon, attrs)
		}
		if pm.Multi != nil {
			for i := range pm.Multi.Polygons {
				addPolygon(ds, pm.Name, &pm.Multi.Polygons[i], attrs)
			}
		}
	}
	for i := range c.Documents {
		collect(&c.Documents[i], ds)
	}
	for i := range c.Folders {
		collect(&c.Folders[i], ds)
	}
}

func addPolygon(ds *Dataset, name string, p *kmlPolygon, attrs map[string]string) {
	ring := parseCoordinates(p.Outer.Ring.Coordinates)
	if len(ring) < 3 {
		return
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	ds.Records = append(ds.Records, PolygonRecord{
		Name:       name,
		Ring:       ring,
		Attributes: attrs,
	})
}

func parseAttributes(e *kmlExtendedData) map[string]string {
	attrs := map[string]string{}
	if e == nil {
		return attrs
	}
	for _, d := range e.Data {
		attrs[d.Name] = strings.TrimSpace(d.Value)
	}
	for _, sd := range e.SchemaData {
		for _, f := range sd.Fields {
			attrs[f.Name] = strings.TrimSpace(f.Value)
		}
	}
	return attrs
}

// parseCoordinates splits a KML coordinate block, "lon,lat[,alt]" tuples
// separated by whitespace. Altitude is ignored.
func parseCoordinates(block string) [][2]float64 {
	var out [][2]float64
	for _, tuple := range strings.Fields(block) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := parseFloat(vals[0])
		lat, err2 := parseFloat(vals[1])
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, [2]float64{lon, lat})
	}
	return out
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
