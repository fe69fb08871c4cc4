package promethee

import (
	"fmt"
	"sort"
	"strings"
)

// Direction states whether higher or lower evaluations are preferred on a criterion.
type Direction string

const (
	Maximize Direction = "MAX"
	Minimize Direction = "MIN"
)

// ParseDirection accepts "max"/"min" in any letter case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MAX":
		return Maximize, nil
	case "MIN":
		return Minimize, nil
	}
	return "", fmt.Errorf("%w: %q", ErrWrongPreferenceDirection, s)
}

// Topology selects which ordered pairs of entities are compared.
type Topology string

const (
	TopologyAlternatives     Topology = "alternatives"
	TopologyBoundaryProfiles Topology = "boundary_profiles"
	TopologyCentralProfiles  Topology = "central_profiles"
)

// ParseTopology maps a comparison_with label to a Topology.
func ParseTopology(s string) (Topology, error) {
	switch t := Topology(strings.TrimSpace(s)); t {
	case TopologyAlternatives, TopologyBoundaryProfiles, TopologyCentralProfiles:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q, possible values are: alternatives, boundary_profiles, central_profiles", ErrInvalidTopology, s)
}

// WithProfiles reports whether the topology compares alternatives against profiles.
func (t Topology) WithProfiles() bool {
	return t == TopologyBoundaryProfiles || t == TopologyCentralProfiles
}

// Threshold is either a constant or linear in the base evaluation of a pair.
// A nil *Threshold means the threshold is not defined.
type Threshold struct {
	Linear    bool    `json:"linear,omitempty"`
	Constant  float64 `json:"constant,omitempty"`
	Slope     float64 `json:"slope,omitempty"`
	Intercept float64 `json:"intercept,omitempty"`
}

func ConstantThreshold(v float64) *Threshold {
	return &Threshold{Constant: v}
}

func LinearThreshold(slope, intercept float64) *Threshold {
	return &Threshold{Linear: true, Slope: slope, Intercept: intercept}
}

// Criterion carries everything needed to compare two evaluations on one criterion.
type Criterion struct {
	ID        string
	Direction Direction
	Weight    float64
	Shape     Shape

	Preference           *Threshold
	Indifference         *Threshold
	Sigma                *Threshold
	Veto                 *Threshold
	ReinforcedPreference *Threshold

	// ReinforcementFactor multiplies the weight of a pair whose difference
	// crosses ReinforcedPreference. Zero means 1.0.
	ReinforcementFactor float64
}

func (c Criterion) reinforcementFactor() float64 {
	if c.ReinforcementFactor == 0 {
		return 1.0
	}
	return c.ReinforcementFactor
}

// Inputs is the validated problem handed to the engine.
type Inputs struct {
	Topology     Topology
	Alternatives []string
	Profiles     []string
	Criteria     []Criterion

	// Performance holds alternative -> criterion -> evaluation.
	Performance map[string]map[string]float64
	// ProfilePerformance holds profile -> criterion -> evaluation.
	ProfilePerformance map[string]map[string]float64

	// Interactions is optional; nil disables the interaction layer.
	Interactions *InteractionTable
	ZFunction    ZFunction
}

// CriteriaIDs returns criterion ids in input order.
func (in *Inputs) CriteriaIDs() []string {
	ids := make([]string, len(in.Criteria))
	for i, c := range in.Criteria {
		ids[i] = c.ID
	}
	return ids
}

// evaluation looks an entity up in the alternatives table first, then in the profiles table.
func (in *Inputs) evaluation(entity, criterion string) (float64, bool) {
	if row, ok := in.Performance[entity]; ok {
		v, ok := row[criterion]
		return v, ok
	}
	if row, ok := in.ProfilePerformance[entity]; ok {
		v, ok := row[criterion]
		return v, ok
	}
	return 0, false
}

func (in *Inputs) hasReinforcement() bool {
	for _, c := range in.Criteria {
		if c.ReinforcedPreference != nil {
			return true
		}
	}
	return false
}

// Pair is an ordered pair of entity ids.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Matrix maps an ordered pair of entities to a scalar.
type Matrix map[string]map[string]float64

func (m Matrix) Set(a, b string, v float64) {
	row, ok := m[a]
	if !ok {
		row = make(map[string]float64)
		m[a] = row
	}
	row[b] = v
}

func (m Matrix) Get(a, b string) (float64, bool) {
	v, ok := m[a][b]
	return v, ok
}

// PartialMatrix maps an ordered pair of entities to per-criterion values.
type PartialMatrix map[string]map[string]map[string]float64

func (m PartialMatrix) Set(a, b, c string, v float64) {
	row, ok := m[a]
	if !ok {
		row = make(map[string]map[string]float64)
		m[a] = row
	}
	cell, ok := row[b]
	if !ok {
		cell = make(map[string]float64)
		row[b] = cell
	}
	cell[c] = v
}

func (m PartialMatrix) Get(a, b, c string) (float64, bool) {
	v, ok := m[a][b][c]
	return v, ok
}

// Vector maps an entity or criterion id to a scalar.
type Vector map[string]float64

// Keys returns the vector ids in lexical order.
func (v Vector) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
