package promethee

// Crossed reports whether the difference between ga and gb exceeds the
// reinforced preference threshold of c. It is false when no such threshold
// is defined.
func Crossed(c Criterion, ga, gb float64) (bool, error) {
	r, err := ResolveThreshold(c.Direction, ga, gb, c.ReinforcedPreference)
	if err != nil || r == nil {
		return false, err
	}
	diff, err := Difference(c.Direction, ga, gb)
	if err != nil {
		return false, err
	}
	return diff > *r, nil
}

func multiplier(c Criterion, ga, gb float64) (float64, error) {
	crossed, err := Crossed(c, ga, gb)
	if err != nil {
		return 0, err
	}
	if crossed {
		return c.reinforcementFactor(), nil
	}
	return 1.0, nil
}

// Multipliers returns the per-criterion weight multiplier for every pair.
func (e *Engine) Multipliers(in *Inputs) (PartialMatrix, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}
	return e.evalPairs(in, Pairs(in), multiplier)
}
