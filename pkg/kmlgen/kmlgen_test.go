package kmlgen

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flood3d/pkg/colors"
	"flood3d/pkg/depth"
	"flood3d/pkg/kmzgeo"
	"flood3d/pkg/prism"
)

func fixture(t *testing.T) (*kmzgeo.Dataset, []*prism.Prism, *colors.Mapper, depth.Result, depth.Stats) {
	t.Helper()
	ring := [][2]float64{{10, 50}, {10.1, 50}, {10.1, 50.1}, {10, 50.1}, {10, 50}}
	ds := &kmzgeo.Dataset{
		Records: []kmzgeo.PolygonRecord{{Name: "area-1", Ring: ring}},
		CRS:     kmzgeo.DefaultCRS,
		Source:  "test.kmz",
	}
	p, ok := prism.Build(ring, 0.1)
	if !ok {
		t.Fatal("fixture ring failed")
	}
	p.Name = "area-1"
	p.Depth = 2
	st := depth.Stats{Min: 1, Max: 3}
	m, err := colors.NewMapper(colors.Config{}, st)
	if err != nil {
		t.Fatal(err)
	}
	res := depth.Result{Depths: []float64{2}, Column: "depth"}
	return ds, []*prism.Prism{p}, m, res, st
}

func TestGenerateKML(t *testing.T) {
	ds, prisms, m, res, st := fixture(t)
	fn := filepath.Join(t.TempDir(), "scene.kml")
	if err := Generate(ds, prisms, m, res, st, true, fn, "test 0.0.0"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	doc := string(data)
	for _, want := range []string{
		"<Polygon>", "<extrude>1</extrude>", "relativeToGround",
		"styleGrad", "area-1", "Depth labels", "2.0m",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("kml missing %q", want)
		}
	}
}

func TestGenerateKMZIsZip(t *testing.T) {
	ds, prisms, m, res, st := fixture(t)
	fn := filepath.Join(t.TempDir(), "scene.kmz")
	if err := Generate(ds, prisms, m, res, st, false, fn, "test 0.0.0"); err != nil {
		t.Fatal(err)
	}
	zr, err := zip.OpenReader(fn)
	if err != nil {
		t.Fatalf("kmz is not a zip: %v", err)
	}
	defer zr.Close()
	found := false
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, ".kml") {
			found = true
		}
	}
	if !found {
		t.Error("kmz has no kml entry")
	}
}

func TestBucketBounds(t *testing.T) {
	_, _, m, _, _ := fixture(t)
	if b := bucketFor(m, -100); b != 0 {
		t.Errorf("under-range bucket = %d, want 0", b)
	}
	if b := bucketFor(m, 100); b != NUM_GRAD {
		t.Errorf("over-range bucket = %d, want %d", b, NUM_GRAD)
	}
}

func TestWriteIndentedKML(t *testing.T) {
	_, prisms, m, _, _ := fixture(t)
	prisms[0].Name = ""
	var buf bytes.Buffer
	if err := Write(&buf, addPolygon(prisms[0], 0, m), false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Flood area 0") {
		t.Errorf("default name missing: %s", buf.String()[:120])
	}
}

func TestSkippedRecordKeepsNamesAligned(t *testing.T) {
	ring := [][2]float64{{10, 50}, {10.1, 50}, {10.1, 50.1}, {10, 50.1}, {10, 50}}
	ds := &kmzgeo.Dataset{
		Records: []kmzgeo.PolygonRecord{
			{Name: "alpha", Ring: ring},
			{Name: "bad", Ring: [][2]float64{{0, 0}, {1, 1}, {0, 0}}},
			{Name: "gamma", Ring: ring},
		},
		CRS:    kmzgeo.DefaultCRS,
		Source: "test.kmz",
	}
	prisms, skipped := prism.BuildAll(ds.Records, []float64{1, 2, 3}, 0.05, 0)
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	st := depth.Stats{Min: 1, Max: 3}
	m, err := colors.NewMapper(colors.Config{}, st)
	if err != nil {
		t.Fatal(err)
	}
	res := depth.Result{Depths: []float64{1, 2, 3}, Column: "depth"}
	fn := filepath.Join(t.TempDir(), "scene.kml")
	if err = Generate(ds, prisms, m, res, st, false, fn, "test 0.0.0"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	doc := string(data)
	if !strings.Contains(doc, "gamma") {
		t.Error("surviving polygon lost its name")
	}
	if strings.Contains(doc, ">bad<") {
		t.Error("skipped record's name attached to another polygon")
	}
}
