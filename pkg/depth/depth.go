package depth

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/bmizerany/perks/quantile"

	"flood3d/pkg/kmzgeo"
)

var ErrColumnNotFound = errors.New("depth column not found")

// Fallback range for synthetic depths, metres.
const (
	FallbackMin = 0.5
	FallbackMax = 3.0
)

// candidates are tried in order when no column is requested explicitly.
var candidates = []string{"depth", "DEPTH", "water_depth", "Depth", "flood_depth"}

// Result carries one depth per input record, aligned 1:1 with the
// record slice handed to Resolve. Synthetic is set only on the random
// fallback path so callers can tell real data from decoration.
type Result struct {
	Depths    []float64
	Column    string
	Synthetic bool
}

// Resolve determines a depth per polygon. An explicitly requested
// column must exist in at least one record, otherwise ErrColumnNotFound;
// records lacking the column individually resolve to 0. With no request,
// the candidate list is scanned; if nothing matches, each polygon gets a
// seeded uniform draw in [FallbackMin, FallbackMax). seed <= 0 seeds
// from the clock.
func Resolve(recs []kmzgeo.PolygonRecord, column string, seed int64) (Result, error) {
	if column != "" {
		if !anyHas(recs, column) {
			return Result{}, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
		}
		return Result{Depths: fromColumn(recs, column), Column: column}, nil
	}
	for _, c := range candidates {
		if anyHas(recs, c) {
			return Result{Depths: fromColumn(recs, c), Column: c}, nil
		}
	}
	if seed <= 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	ds := make([]float64, len(recs))
	for i := range ds {
		ds[i] = FallbackMin + rng.Float64()*(FallbackMax-FallbackMin)
	}
	return Result{Depths: ds, Synthetic: true}, nil
}

func anyHas(recs []kmzgeo.PolygonRecord, column string) bool {
	for _, r := range recs {
		if _, ok := r.Attributes[column]; ok {
			return true
		}
	}
	return false
}

func fromColumn(recs []kmzgeo.PolygonRecord, column string) []float64 {
	ds := make([]float64, len(recs))
	for i, r := range recs {
		v, err := strconv.ParseFloat(r.Attributes[column], 64)
		if err != nil {
			continue
		}
		ds[i] = v
	}
	return ds
}

// Stats summarises the observed depth set. P05/P95 give a robust
// range for colour normalisation when outliers would wash out the
// gradient.
type Stats struct {
	Min float64
	Max float64
	P05 float64
	P95 float64
}

func Summarize(depths []float64) Stats {
	var st Stats
	if len(depths) == 0 {
		return st
	}
	st.Min, st.Max = depths[0], depths[0]
	q := quantile.NewTargeted(0.05, 0.95)
	for _, d := range depths {
		if d < st.Min {
			st.Min = d
		}
		if d > st.Max {
			st.Max = d
		}
		q.Insert(d)
	}
	st.P05 = q.Query(0.05)
	st.P95 = q.Query(0.95)
	return st
}
