package promethee

import (
	"fmt"
)

// AggregateDiscordance weakens each preference by its discordance: π·(1−D).
// Both matrices must cover the same pairs.
func AggregateDiscordance(pref, disc Matrix) (Matrix, error) {
	out := make(Matrix)
	for a, row := range pref {
		for b, p := range row {
			d, ok := disc.Get(a, b)
			if !ok {
				return nil, fmt.Errorf("%w: discordance of %s over %s is missing", ErrInvalidInputs, a, b)
			}
			out.Set(a, b, p*(1-d))
		}
	}
	for a, row := range disc {
		for b := range row {
			if _, ok := pref.Get(a, b); !ok {
				return nil, fmt.Errorf("%w: preference of %s over %s is missing", ErrInvalidInputs, a, b)
			}
		}
	}
	return out, nil
}
