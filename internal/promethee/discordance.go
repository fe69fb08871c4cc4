package promethee

import (
	"fmt"
	"math"
)

type DiscordanceResult struct {
	Total   Matrix
	Partial PartialMatrix
}

// Discordance derives discordance indices from a partial preference tensor.
// The partial discordance of a against b on c is the preference of b over a
// on c; the total combines the discordant criteria with exponent k/n, where n
// is the number of criteria.
func Discordance(partial PartialMatrix, criteria []string, k float64) (*DiscordanceResult, error) {
	if k <= 0 || math.IsNaN(k) {
		return nil, fmt.Errorf("%w: technical parameter must be greater than zero, got %g", ErrInvalidInputs, k)
	}
	if len(criteria) == 0 {
		return nil, fmt.Errorf("%w: list of active criteria is empty", ErrInvalidInputs)
	}

	res := &DiscordanceResult{Total: make(Matrix), Partial: make(PartialMatrix)}
	power := k / float64(len(criteria))
	for a, row := range partial {
		for b := range row {
			product := 1.0
			for _, c := range criteria {
				d, ok := partial.Get(b, a, c)
				if !ok {
					return nil, fmt.Errorf("%w: partial preference of %s over %s on criterion %s is missing", ErrInvalidInputs, b, a, c)
				}
				res.Partial.Set(a, b, c, d)
				if d > 0 {
					product *= math.Pow(1-d, power)
				}
			}
			res.Total.Set(a, b, 1-product)
		}
	}
	return res, nil
}

// Discordance computes partial preferences for the inputs and derives the
// discordance indices from them.
func (e *Engine) Discordance(in *Inputs, k float64) (*DiscordanceResult, error) {
	partial, err := e.PartialPreferences(in)
	if err != nil {
		return nil, err
	}
	return Discordance(partial, in.CriteriaIDs(), k)
}
