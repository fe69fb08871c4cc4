package weights

import (
	"fmt"
	"math"
	"sort"

	"github.com/MikeSquared-Agency/Promethee/internal/promethee"
)

// MaxDecimals is the finest precision SRF weights can be rounded to.
const MaxDecimals = 2

// SRF computes Simos-Roy-Figueira weights. Positions start at 1 for the
// least important criterion; skipped positions stand for blank cards. ratio
// is how many times more important the top criterion is than the bottom one.
// The result is truncated to decimals places and corrected so it sums to
// exactly 100.
func SRF(ranking map[string]int, ratio float64, decimals int) (promethee.Vector, error) {
	if len(ranking) == 0 {
		return nil, fmt.Errorf("%w: ranking is empty", ErrInvalidRanking)
	}
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return nil, fmt.Errorf("%w: criteria weight ratio must be greater than zero, got %g", ErrInvalidParameter, ratio)
	}
	if decimals < 0 || decimals > MaxDecimals {
		return nil, fmt.Errorf("%w: decimal places must be between 0 and %d, got %d", ErrInvalidParameter, MaxDecimals, decimals)
	}

	ids := sortedIDs(ranking)
	maxPos := 0
	for _, id := range ids {
		pos := ranking[id]
		if pos < 1 {
			return nil, fmt.Errorf("%w: position of %s must be at least 1, got %d", ErrInvalidRanking, id, pos)
		}
		maxPos = max(maxPos, pos)
	}

	raw := make(map[string]float64, len(ids))
	var total float64
	for _, id := range ids {
		w := 1.0
		if maxPos > 1 {
			w = 1 + (ratio-1)*float64(ranking[id]-1)/float64(maxPos-1)
		}
		raw[id] = w
		total += w
	}

	scale := math.Pow10(decimals)
	type entry struct {
		id       string
		units    int64
		up, down float64
	}
	entries := make([]entry, 0, len(ids))
	var assigned int64
	for _, id := range ids {
		k := raw[id] * 100 / total
		units := roundUnits(k * scale)
		truncated := float64(units) / scale
		entries = append(entries, entry{
			id:    id,
			units: units,
			up:    (1/scale - (k - truncated)) / k,
			down:  (k - truncated) / k,
		})
		assigned += units
	}

	// Criteria whose relative error grows less by rounding up than by
	// truncating come first; each group is ordered by the upward error.
	sort.SliceStable(entries, func(i, j int) bool {
		li, lj := entries[i].up > entries[i].down, entries[j].up > entries[j].down
		if li != lj {
			return !li
		}
		return entries[i].up < entries[j].up
	})
	missing := int64(100*scale) - assigned
	for i := 0; i < len(entries) && int64(i) < missing; i++ {
		entries[i].units++
	}

	out := make(promethee.Vector, len(entries))
	for _, e := range entries {
		out[e.id] = float64(e.units) / scale
	}
	return out, nil
}

// roundUnits truncates x to whole units, absorbing float noise just below
// an integer.
func roundUnits(x float64) int64 {
	return int64(math.Floor(x + 1e-9))
}
