package promethee

import "fmt"

// Difference returns how much ga beats gb in the criterion's direction.
func Difference(dir Direction, ga, gb float64) (float64, error) {
	switch dir {
	case Maximize:
		return ga - gb, nil
	case Minimize:
		return gb - ga, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrWrongPreferenceDirection, dir)
}

// ResolveThreshold computes the threshold value for the pair (ga, gb).
// It returns nil when t is not defined. A linear threshold is based on the
// less preferred of the two evaluations: the lower one for MAX, the higher
// one for MIN.
func ResolveThreshold(dir Direction, ga, gb float64, t *Threshold) (*float64, error) {
	if t == nil {
		return nil, nil
	}
	if !t.Linear {
		v := t.Constant
		return &v, nil
	}
	var base float64
	switch dir {
	case Maximize:
		base = min(ga, gb)
	case Minimize:
		base = max(ga, gb)
	default:
		return nil, fmt.Errorf("%w: %q", ErrWrongPreferenceDirection, dir)
	}
	v := t.Slope*base + t.Intercept
	return &v, nil
}
