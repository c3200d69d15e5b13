package depth

import (
	"errors"
	"testing"

	"flood3d/pkg/kmzgeo"
)

func recsWith(attrs ...map[string]string) []kmzgeo.PolygonRecord {
	recs := make([]kmzgeo.PolygonRecord, len(attrs))
	for i, a := range attrs {
		if a == nil {
			a = map[string]string{}
		}
		recs[i] = kmzgeo.PolygonRecord{Attributes: a}
	}
	return recs
}

func TestResolveExplicitColumn(t *testing.T) {
	recs := recsWith(
		map[string]string{"wd": "1.5"},
		map[string]string{"wd": "3.25"},
	)
	res, err := Resolve(recs, "wd", 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Synthetic {
		t.Error("explicit column must not be synthetic")
	}
	if res.Column != "wd" {
		t.Errorf("column = %q", res.Column)
	}
	if res.Depths[0] != 1.5 || res.Depths[1] != 3.25 {
		t.Errorf("depths = %v", res.Depths)
	}
}

func TestResolveExplicitColumnAbsent(t *testing.T) {
	recs := recsWith(map[string]string{"depth": "1"})
	_, err := Resolve(recs, "foo", 0)
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("err = %v, want ErrColumnNotFound", err)
	}
}

func TestResolveCandidateOrder(t *testing.T) {
	// "depth" outranks "water_depth" even when both exist
	recs := recsWith(map[string]string{"depth": "2", "water_depth": "9"})
	res, err := Resolve(recs, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Column != "depth" || res.Depths[0] != 2 {
		t.Errorf("column = %q depths = %v", res.Column, res.Depths)
	}
}

func TestResolveUppercaseCandidate(t *testing.T) {
	recs := recsWith(map[string]string{"DEPTH": "4"})
	res, err := Resolve(recs, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Synthetic || res.Depths[0] != 4 {
		t.Errorf("synthetic = %v depths = %v", res.Synthetic, res.Depths)
	}
}

func TestResolveSyntheticFallback(t *testing.T) {
	recs := recsWith(nil, nil, nil, nil)
	res, err := Resolve(recs, "", 42)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Synthetic {
		t.Fatal("expected synthetic depths")
	}
	for i, d := range res.Depths {
		if d < FallbackMin || d >= FallbackMax {
			t.Errorf("depth[%d] = %v outside [%v,%v)", i, d, FallbackMin, FallbackMax)
		}
	}

	again, _ := Resolve(recs, "", 42)
	for i := range res.Depths {
		if res.Depths[i] != again.Depths[i] {
			t.Fatal("same seed must reproduce the same depths")
		}
	}
}

func TestResolveUnparsableValueIsZero(t *testing.T) {
	recs := recsWith(
		map[string]string{"depth": "n/a"},
		map[string]string{"depth": "1.0"},
	)
	res, err := Resolve(recs, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Depths[0] != 0 || res.Depths[1] != 1 {
		t.Errorf("depths = %v", res.Depths)
	}
}

func TestSummarize(t *testing.T) {
	st := Summarize([]float64{2, 1, 3})
	if st.Min != 1 || st.Max != 3 {
		t.Errorf("min/max = %v/%v", st.Min, st.Max)
	}
	if st.P05 < st.Min || st.P95 > st.Max {
		t.Errorf("quantiles %v/%v outside [%v,%v]", st.P05, st.P95, st.Min, st.Max)
	}
	if got := Summarize(nil); got != (Stats{}) {
		t.Errorf("empty stats = %+v", got)
	}
}
