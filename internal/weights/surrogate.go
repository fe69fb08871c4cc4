// Package weights derives criteria weights from a ranking of criteria when
// the decision maker cannot state numeric weights directly.
package weights

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/Promethee/internal/promethee"
)

var (
	ErrInvalidRanking   = errors.New("invalid criteria ranking")
	ErrInvalidParameter = errors.New("invalid weights parameter")
)

// Method selects a surrogate weighting formula.
type Method string

const (
	EqualWeights        Method = "equal_weights"
	RankSum             Method = "rank_sum"
	RankReciprocal      Method = "rank_reciprocal"
	RankOrderedCentroid Method = "rank_ordered_centroid"
)

var methods = map[Method]func(rank, n int, reciprocalSum float64) float64{
	EqualWeights: func(_, n int, _ float64) float64 {
		return 1 / float64(n)
	},
	RankSum: func(rank, n int, _ float64) float64 {
		return 2 * float64(n+1-rank) / float64(n*(n+1))
	},
	RankReciprocal: func(rank, _ int, reciprocalSum float64) float64 {
		return (1 / float64(rank)) / reciprocalSum
	},
	RankOrderedCentroid: func(rank, n int, _ float64) float64 {
		var sum float64
		for i := rank; i <= n; i++ {
			sum += 1 / float64(i)
		}
		return sum / float64(n)
	},
}

func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := methods[m]; ok {
		return m, nil
	}
	return "", fmt.Errorf("%w: weights method %q, possible values are: equal_weights, rank_sum, rank_reciprocal, rank_ordered_centroid", ErrInvalidParameter, s)
}

// Surrogate computes weights from a ranking where rank 1 is the most
// important criterion. The ranks must be a permutation of 1..n.
func Surrogate(method Method, ranking map[string]int) (promethee.Vector, error) {
	calc, ok := methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: weights method %q", ErrInvalidParameter, method)
	}
	n := len(ranking)
	if n == 0 {
		return nil, fmt.Errorf("%w: ranking is empty", ErrInvalidRanking)
	}

	var reciprocalSum float64
	taken := make(map[int]string, n)
	for _, id := range sortedIDs(ranking) {
		r := ranking[id]
		if r < 1 || r > n {
			return nil, fmt.Errorf("%w: rank of %s must be between 1 and %d, got %d", ErrInvalidRanking, id, n, r)
		}
		if other, ok := taken[r]; ok {
			return nil, fmt.Errorf("%w: %s and %s share rank %d", ErrInvalidRanking, other, id, r)
		}
		taken[r] = id
		reciprocalSum += 1 / float64(r)
	}

	out := make(promethee.Vector, n)
	for id, r := range ranking {
		out[id] = calc(r, n, reciprocalSum)
	}
	return out, nil
}

// Sum adds up all weights.
func Sum(v promethee.Vector) float64 {
	var sum float64
	for _, w := range v {
		sum += w
	}
	return sum
}

func sortedIDs(ranking map[string]int) []string {
	ids := make([]string, 0, len(ranking))
	for id := range ranking {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
