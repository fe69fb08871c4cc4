package promethee

import (
	"fmt"
)

type FlowsResult struct {
	Positive Vector
	Negative Vector
	Net      Vector
}

// comparisonSet lists the entities x is compared with when computing flows.
func comparisonSet(in *Inputs, x string, profile bool) []string {
	if !in.Topology.WithProfiles() {
		return without(in.Alternatives, x)
	}
	if !profile {
		return in.Profiles
	}
	set := make([]string, 0, len(in.Alternatives)+len(in.Profiles))
	set = append(set, in.Alternatives...)
	return append(set, without(in.Profiles, x)...)
}

func without(ids []string, x string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != x {
			out = append(out, id)
		}
	}
	return out
}

// Flows computes positive, negative and net outranking flows from a total
// preference matrix. An entity with an empty comparison set gets zero flows.
func Flows(pref Matrix, in *Inputs) (*FlowsResult, error) {
	res := &FlowsResult{Positive: make(Vector), Negative: make(Vector), Net: make(Vector)}

	flow := func(x string, profile bool) error {
		set := comparisonSet(in, x, profile)
		var plus, minus float64
		for _, y := range set {
			xy, ok := pref.Get(x, y)
			if !ok {
				return fmt.Errorf("%w: preference of %s over %s is missing", ErrInvalidInputs, x, y)
			}
			yx, ok := pref.Get(y, x)
			if !ok {
				return fmt.Errorf("%w: preference of %s over %s is missing", ErrInvalidInputs, y, x)
			}
			plus += xy
			minus += yx
		}
		if n := float64(len(set)); n > 0 {
			plus /= n
			minus /= n
		}
		res.Positive[x] = plus
		res.Negative[x] = minus
		res.Net[x] = plus - minus
		return nil
	}

	for _, a := range in.Alternatives {
		if err := flow(a, false); err != nil {
			return nil, err
		}
	}
	if in.Topology.WithProfiles() {
		for _, p := range in.Profiles {
			if err := flow(p, true); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

// Flows computes total preferences for the inputs and the resulting flows.
func (e *Engine) Flows(in *Inputs) (*FlowsResult, error) {
	pref, err := e.Preferences(in)
	if err != nil {
		return nil, err
	}
	return Flows(pref.Total, in)
}

// UnicriterionFlows computes, for every entity and criterion, the mean
// difference between the entity's preference over its comparison set and
// the comparison set's preference over the entity.
func (e *Engine) UnicriterionFlows(in *Inputs) (map[string]Vector, error) {
	partial, err := e.PartialPreferences(in)
	if err != nil {
		return nil, err
	}

	out := make(map[string]Vector)
	entity := func(x string, profile bool) {
		set := comparisonSet(in, x, profile)
		v := make(Vector, len(in.Criteria))
		for _, c := range in.Criteria {
			var sum float64
			for _, y := range set {
				sum += partial[x][y][c.ID] - partial[y][x][c.ID]
			}
			if len(set) > 0 {
				sum /= float64(len(set))
			}
			v[c.ID] = sum
		}
		out[x] = v
	}
	for _, a := range in.Alternatives {
		entity(a, false)
	}
	if in.Topology.WithProfiles() {
		for _, p := range in.Profiles {
			entity(p, true)
		}
	}
	return out, nil
}
