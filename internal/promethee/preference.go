package promethee

import (
	"fmt"
)

type PreferenceResult struct {
	Total   Matrix
	Partial PartialMatrix
	// Multipliers is nil unless some criterion has a reinforced preference threshold.
	Multipliers PartialMatrix
	// Reinforced holds Partial scaled by Multipliers. Nil without reinforcement.
	Reinforced PartialMatrix
	// Corrections is nil unless interactions are configured.
	Corrections Matrix
}

// Preferences computes the total preference index of every compared pair:
// the reinforcement-weighted mean of partial preferences, with interaction
// corrections added to the numerator.
func (e *Engine) Preferences(in *Inputs) (*PreferenceResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	interactions := in.Interactions.Len() > 0
	if interactions {
		if err := in.Interactions.checkNetBalance(in.Criteria); err != nil {
			return nil, err
		}
	}

	pairs := Pairs(in)
	partial, err := e.evalPairs(in, pairs, PartialPreference)
	if err != nil {
		return nil, err
	}

	res := &PreferenceResult{Total: make(Matrix), Partial: partial}
	if in.hasReinforcement() {
		res.Multipliers, err = e.evalPairs(in, pairs, multiplier)
		if err != nil {
			return nil, err
		}
		res.Reinforced = make(PartialMatrix)
		for _, pair := range pairs {
			for _, c := range in.Criteria {
				v := partial[pair.A][pair.B][c.ID] * res.Multipliers[pair.A][pair.B][c.ID]
				res.Reinforced.Set(pair.A, pair.B, c.ID, v)
			}
		}
	}
	if interactions {
		res.Corrections = make(Matrix)
	}

	z, _ := ParseZFunction(string(in.ZFunction))
	for _, pair := range pairs {
		pp := partial[pair.A][pair.B]
		var num, den float64
		for _, c := range in.Criteria {
			m := 1.0
			if res.Multipliers != nil {
				m = res.Multipliers[pair.A][pair.B][c.ID]
			}
			num += c.Weight * m * pp[c.ID]
			den += c.Weight * m
		}
		if interactions {
			corr := in.Interactions.correction(z, pp)
			res.Corrections.Set(pair.A, pair.B, corr)
			num += corr
		}
		total := num / den
		if interactions && (total < -e.tolerance || total > 1+e.tolerance) {
			return nil, fmt.Errorf("%w: preference of %s over %s is %g after interaction corrections", ErrNetBalance, pair.A, pair.B, total)
		}
		res.Total.Set(pair.A, pair.B, total)
	}
	return res, nil
}
