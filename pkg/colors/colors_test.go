package colors

import (
	"image/color"
	"testing"

	"flood3d/pkg/depth"
)

func mustMapper(t *testing.T, cfg Config, st depth.Stats) *Mapper {
	t.Helper()
	m, err := NewMapper(cfg, st)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNormalizeClamps(t *testing.T) {
	m := mustMapper(t, Config{}, depth.Stats{Min: 1, Max: 3})
	cases := []struct {
		d, want float64
	}{
		{0, 0}, {1, 0}, {2, 0.5}, {3, 1}, {99, 1},
	}
	for _, c := range cases {
		if got := m.Normalize(c.d); got != c.want {
			t.Errorf("Normalize(%v) = %v, want %v", c.d, got, c.want)
		}
	}
}

func TestFlatRangeIsMidpoint(t *testing.T) {
	m := mustMapper(t, Config{}, depth.Stats{Min: 2, Max: 2})
	if got := m.Normalize(7); got != 0.5 {
		t.Fatalf("flat-range Normalize = %v, want 0.5", got)
	}
	ref := mustMapper(t, Config{}, depth.Stats{Min: 0, Max: 1})
	if m.Top(7) != ref.Top(0.5) {
		t.Error("flat-range colour must equal the midpoint colour")
	}
}

func TestCustomGradientEndpoints(t *testing.T) {
	cfg := Config{
		Custom:  true,
		Shallow: color.RGBA{R: 200, G: 200, B: 255, A: 255},
		Deep:    color.RGBA{R: 0, G: 0, B: 100, A: 255},
	}
	m := mustMapper(t, cfg, depth.Stats{Min: 0, Max: 10})
	shallow := m.Top(0)
	deep := m.Top(10)
	if abs(int(shallow.R)-200) > 2 || abs(int(shallow.B)-255) > 2 {
		t.Errorf("shallow endpoint = %+v", shallow)
	}
	if abs(int(deep.R)-0) > 2 || abs(int(deep.B)-100) > 2 {
		t.Errorf("deep endpoint = %+v", deep)
	}
	mid := m.Top(5)
	if abs(int(mid.R)-100) > 3 || abs(int(mid.B)-178) > 3 {
		t.Errorf("midpoint blend = %+v, want ~(100,100,178)", mid)
	}
}

func TestAlphasAndDerivedColours(t *testing.T) {
	m := mustMapper(t, Config{}, depth.Stats{Min: 0, Max: 4})
	top := m.Top(2)
	side := m.Side(2)
	edge := m.Edge(2)
	if top.A != 0xb2 {
		t.Errorf("top alpha = %#x, want 0xb2", top.A)
	}
	if side.A != 0x99 {
		t.Errorf("side alpha = %#x, want 0x99", side.A)
	}
	if edge.A != 0xff {
		t.Errorf("edge alpha = %#x, want 0xff", edge.A)
	}
	if side.R > top.R || side.G > top.G || side.B > top.B {
		t.Error("side must be darker than top")
	}
	if edge.R < top.R || edge.G < top.G || edge.B < top.B {
		t.Error("edge must be brighter than top")
	}
}

func TestDeeperIsDarker(t *testing.T) {
	m := mustMapper(t, Config{}, depth.Stats{Min: 0, Max: 4})
	shallow := m.Top(0)
	deep := m.Top(4)
	sl := int(shallow.R) + int(shallow.G) + int(shallow.B)
	dl := int(deep.R) + int(deep.G) + int(deep.B)
	if dl >= sl {
		t.Errorf("deep colour %v not darker than shallow %v", deep, shallow)
	}
}

func TestRobustRange(t *testing.T) {
	st := depth.Stats{Min: 0, Max: 100, P05: 1, P95: 3}
	m := mustMapper(t, Config{Robust: true}, st)
	if got := m.Normalize(3); got != 1 {
		t.Errorf("robust Normalize(3) = %v, want 1", got)
	}
	if got := m.Normalize(50); got != 1 {
		t.Errorf("robust Normalize(50) = %v, want clamp to 1", got)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
