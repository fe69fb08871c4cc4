package weights

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Promethee/internal/promethee"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestSurrogate(t *testing.T) {
	ranking := map[string]int{"a": 1, "b": 2, "c": 3}

	tests := []struct {
		method Method
		want   promethee.Vector
	}{
		{EqualWeights, promethee.Vector{"a": 1.0 / 3, "b": 1.0 / 3, "c": 1.0 / 3}},
		{RankSum, promethee.Vector{"a": 0.5, "b": 1.0 / 3, "c": 1.0 / 6}},
		{RankReciprocal, promethee.Vector{"a": 1 / (11.0 / 6), "b": 0.5 / (11.0 / 6), "c": (1.0 / 3) / (11.0 / 6)}},
		{RankOrderedCentroid, promethee.Vector{"a": (1 + 0.5 + 1.0/3) / 3, "b": (0.5 + 1.0/3) / 3, "c": (1.0 / 3) / 3}},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			got, err := Surrogate(tt.method, ranking)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("weights mismatch (-want +got):\n%s", diff)
			}
			assert.InDelta(t, 1.0, Sum(got), 1e-9)
		})
	}
}

func TestSurrogateErrors(t *testing.T) {
	_, err := Surrogate(RankSum, nil)
	assert.ErrorIs(t, err, ErrInvalidRanking)

	_, err = Surrogate(RankSum, map[string]int{"a": 1, "b": 3})
	assert.ErrorIs(t, err, ErrInvalidRanking)

	_, err = Surrogate(RankSum, map[string]int{"a": 0})
	assert.ErrorIs(t, err, ErrInvalidRanking)

	_, err = Surrogate("smart", map[string]int{"a": 1})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSurrogateRejectsTiedRanks(t *testing.T) {
	tied := map[string]int{"a": 1, "b": 1, "c": 3}
	for m := range methods {
		t.Run(string(m), func(t *testing.T) {
			got, err := Surrogate(m, tied)
			assert.ErrorIs(t, err, ErrInvalidRanking)
			assert.Nil(t, got)
		})
	}

	_, err := Surrogate(RankSum, map[string]int{"a": 2, "b": 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a and b share rank 2")
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("Rank_Ordered_Centroid")
	require.NoError(t, err)
	assert.Equal(t, RankOrderedCentroid, m)

	_, err = ParseMethod("rank_product")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSRF(t *testing.T) {
	got, err := SRF(map[string]int{"a": 1, "b": 2, "c": 3}, 3, 1)
	require.NoError(t, err)
	want := promethee.Vector{"a": 16.7, "b": 33.3, "c": 50}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("weights mismatch (-want +got):\n%s", diff)
	}
}

func TestSRFEqualPositions(t *testing.T) {
	got, err := SRF(map[string]int{"a": 1, "b": 1, "c": 1}, 5, 0)
	require.NoError(t, err)
	if diff := cmp.Diff(promethee.Vector{"a": 34, "b": 33, "c": 33}, got); diff != "" {
		t.Errorf("weights mismatch (-want +got):\n%s", diff)
	}
}

func TestSRFSumsTo100(t *testing.T) {
	rankings := []map[string]int{
		{"g1": 1, "g2": 2, "g3": 3, "g4": 4, "g5": 5, "g6": 6, "g7": 7},
		{"g1": 1, "g2": 1, "g3": 4, "g4": 7},
		{"g1": 2, "g2": 5, "g3": 5, "g4": 9, "g5": 3, "g6": 11},
		{"g1": 1},
	}
	for i, ranking := range rankings {
		for _, ratio := range []float64{0.5, 1, 2.5, 6, 17.3} {
			for decimals := 0; decimals <= MaxDecimals; decimals++ {
				t.Run(fmt.Sprintf("%d/%g/%d", i, ratio, decimals), func(t *testing.T) {
					got, err := SRF(ranking, ratio, decimals)
					require.NoError(t, err)
					assert.InDelta(t, 100, Sum(got), 1e-6)
					assert.Len(t, got, len(ranking))
				})
			}
		}
	}
}

func TestSRFMonotone(t *testing.T) {
	got, err := SRF(map[string]int{"low": 1, "mid": 3, "top": 6}, 10, 2)
	require.NoError(t, err)
	assert.Less(t, got["low"], got["mid"])
	assert.Less(t, got["mid"], got["top"])
}

func TestSRFErrors(t *testing.T) {
	_, err := SRF(nil, 2, 1)
	assert.ErrorIs(t, err, ErrInvalidRanking)

	_, err = SRF(map[string]int{"a": 0}, 2, 1)
	assert.ErrorIs(t, err, ErrInvalidRanking)

	_, err = SRF(map[string]int{"a": 1}, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = SRF(map[string]int{"a": 1}, 2, 3)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
