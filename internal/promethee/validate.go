package promethee

import (
	"fmt"
	"math"
)

// Validate checks what the engine relies on and reports every
// violation found, not just the first one.
func (in *Inputs) Validate() error {
	return in.validate(true)
}

// validate skips the positive weight sum check when weights is false, for
// computations that never aggregate over weights.
func (in *Inputs) validate(weights bool) error {
	verr := &ValidationError{}

	if _, err := ParseTopology(string(in.Topology)); err != nil {
		verr.Add(err)
	}

	validateIDs(verr, "alternatives", in.Alternatives)
	if in.Topology.WithProfiles() {
		validateIDs(verr, "profiles", in.Profiles)
		alts := make(map[string]bool, len(in.Alternatives))
		for _, a := range in.Alternatives {
			alts[a] = true
		}
		for _, p := range in.Profiles {
			if alts[p] {
				verr.Add(fmt.Errorf("%w: profile %s is also an alternative", ErrInvalidInputs, p))
			}
		}
	} else if len(in.Profiles) > 0 {
		verr.Add(fmt.Errorf("%w: profiles are not used when comparing alternatives only", ErrInvalidInputs))
	}

	criteria := make(map[string]bool, len(in.Criteria))
	var totalWeight float64
	if len(in.Criteria) == 0 {
		verr.Add(fmt.Errorf("%w: list of active criteria is empty", ErrInvalidInputs))
	}
	for _, c := range in.Criteria {
		if c.ID == "" {
			verr.Add(fmt.Errorf("%w: criterion with empty id", ErrInvalidInputs))
			continue
		}
		if criteria[c.ID] {
			verr.Add(fmt.Errorf("%w: duplicate criterion %s", ErrInvalidInputs, c.ID))
		}
		criteria[c.ID] = true
		validateCriterion(verr, c)
		totalWeight += c.Weight
	}
	if weights && len(in.Criteria) > 0 && totalWeight <= 0 {
		verr.Add(fmt.Errorf("%w: criteria weights must have a positive sum", ErrInvalidInputs))
	}

	for _, a := range in.Alternatives {
		validateRow(verr, "alternative", a, in.Performance[a], in.Criteria)
	}
	if in.Topology.WithProfiles() {
		for _, p := range in.Profiles {
			validateRow(verr, "profile", p, in.ProfilePerformance[p], in.Criteria)
		}
	}

	if in.Interactions != nil {
		if _, err := ParseZFunction(string(in.ZFunction)); err != nil && in.ZFunction != "" {
			verr.Add(err)
		}
		for _, it := range in.Interactions.Entries() {
			for _, id := range []string{it.Criterion1, it.Criterion2} {
				if !criteria[id] {
					verr.Add(fmt.Errorf("%w: %s effect refers to unknown criterion %s", ErrInvalidInteraction, it.Kind, id))
				}
			}
		}
	}

	return verr.Err()
}

func validateIDs(verr *ValidationError, what string, ids []string) {
	if len(ids) == 0 {
		verr.Add(fmt.Errorf("%w: list of active %s is empty", ErrInvalidInputs, what))
		return
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			verr.Add(fmt.Errorf("%w: duplicate id %s in %s", ErrInvalidInputs, id, what))
		}
		seen[id] = true
	}
}

func validateCriterion(verr *ValidationError, c Criterion) {
	if c.Direction != Maximize && c.Direction != Minimize {
		verr.Add(fmt.Errorf("%w: %q on criterion %s", ErrWrongPreferenceDirection, c.Direction, c.ID))
	}
	if c.Weight < 0 || math.IsNaN(c.Weight) {
		verr.Add(fmt.Errorf("%w: weight of criterion %s must not be negative", ErrInvalidInputs, c.ID))
	}
	if c.ReinforcementFactor < 0 {
		verr.Add(fmt.Errorf("%w: reinforcement factor of criterion %s must not be negative", ErrInvalidInputs, c.ID))
	}
	if !c.Shape.Valid() {
		verr.Add(fmt.Errorf("%w: %d on criterion %s", ErrInvalidShape, int(c.Shape), c.ID))
		return
	}
	needP, needQ, needS := c.Shape.Requires()
	if needP && c.Preference == nil {
		verr.Add(fmt.Errorf("%w: %s function on criterion %s requires preference threshold", ErrMissingThreshold, c.Shape, c.ID))
	}
	if needQ && c.Indifference == nil {
		verr.Add(fmt.Errorf("%w: %s function on criterion %s requires indifference threshold", ErrMissingThreshold, c.Shape, c.ID))
	}
	if needS && c.Sigma == nil {
		verr.Add(fmt.Errorf("%w: %s function on criterion %s requires sigma threshold", ErrMissingThreshold, c.Shape, c.ID))
	}
}

func validateRow(verr *ValidationError, kind, id string, row map[string]float64, criteria []Criterion) {
	if row == nil {
		verr.Add(fmt.Errorf("%w: performance table does not contain %s %s", ErrInvalidInputs, kind, id))
		return
	}
	for _, c := range criteria {
		v, ok := row[c.ID]
		if !ok {
			verr.Add(fmt.Errorf("%w: %s %s has no evaluation on criterion %s", ErrInvalidInputs, kind, id, c.ID))
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			verr.Add(fmt.Errorf("%w: %s %s has a non-finite evaluation on criterion %s", ErrInvalidInputs, kind, id, c.ID))
		}
	}
}
