package flsql

import (
	"path/filepath"
	"testing"

	"flood3d/pkg/depth"
	"flood3d/pkg/kmzgeo"
	"flood3d/pkg/prism"
)

func TestRoundTrip(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "flood.db")
	db, err := NewDB(fn)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ring := [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	recs := []kmzgeo.PolygonRecord{
		{Name: "area-1", Ring: ring},
		{Name: "bad", Ring: [][2]float64{{0, 0}, {1, 1}, {0, 0}}},
		{Name: "area-2", Ring: ring},
	}
	prisms, skipped := prism.BuildAll(recs, []float64{2, 2, 4}, 0.05, 0)
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}

	st := depth.Stats{Min: 2, Max: 4}
	res := depth.Result{Depths: []float64{2, 2, 4}, Column: "depth"}
	if err = db.WriteMeta("test.kmz", "EPSG:4326", len(prisms), skipped, st, res); err != nil {
		t.Fatal(err)
	}
	if err = db.WritePolygons(prisms,
		func(float64) string { return "#336699" }); err != nil {
		t.Fatal(err)
	}

	var count int
	if err = db.db.Get(&count, "select count(*) from polygons"); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("polygons = %d, want 2", count)
	}

	var d float64
	if err = db.db.Get(&d, "select depth from polygons where id = 0"); err != nil {
		t.Fatal(err)
	}
	if d != 2 {
		t.Errorf("depth = %v, want 2", d)
	}

	// the degenerate record must not shift later names
	var name string
	if err = db.db.Get(&name, "select name from polygons where id = 1"); err != nil {
		t.Fatal(err)
	}
	if name != "area-2" {
		t.Errorf("row 1 name = %q, want area-2", name)
	}

	var npoly int
	if err = db.db.Get(&npoly, "select npoly from meta where id = 1"); err != nil {
		t.Fatal(err)
	}
	if npoly != 2 {
		t.Errorf("meta npoly = %d, want 2", npoly)
	}
}
