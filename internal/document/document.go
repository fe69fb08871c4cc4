// Package document decodes problem documents (YAML or JSON) into engine inputs.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Promethee/internal/promethee"
)

// SpecifiedPerCriterion lets each criterion pick its own function.
const SpecifiedPerCriterion = "specified"

type Problem struct {
	Parameters          Parameters                    `yaml:"parameters" json:"parameters"`
	Alternatives        []string                      `yaml:"alternatives" json:"alternatives"`
	Profiles            []string                      `yaml:"profiles" json:"profiles,omitempty"`
	Criteria            []Criterion                   `yaml:"criteria" json:"criteria"`
	Performance         map[string]map[string]float64 `yaml:"performance" json:"performance"`
	ProfilesPerformance map[string]map[string]float64 `yaml:"profiles_performance" json:"profiles_performance,omitempty"`
	Interactions        []promethee.Interaction       `yaml:"interactions" json:"interactions,omitempty"`

	// Precomputed matrices for operations that start from earlier results.
	PartialPreferences promethee.PartialMatrix `yaml:"partial_preferences" json:"partial_preferences,omitempty"`
	Preferences        promethee.Matrix        `yaml:"preferences" json:"preferences,omitempty"`
	Discordances       promethee.Matrix        `yaml:"discordances" json:"discordances,omitempty"`
}

type Parameters struct {
	ComparisonWith       string   `yaml:"comparison_with" json:"comparison_with,omitempty"`
	GeneralisedCriterion string   `yaml:"generalised_criterion" json:"generalised_criterion,omitempty"`
	ZFunction            string   `yaml:"z_function" json:"z_function,omitempty"`
	WeightsSpecified     *bool    `yaml:"weights_specified" json:"weights_specified,omitempty"`
	TechnicalParam       *float64 `yaml:"technical_param" json:"technical_param,omitempty"`
	WeightsMethod        string   `yaml:"weights_method" json:"weights_method,omitempty"`
	CriteriaWeightRatio  *float64 `yaml:"criteria_weight_ratio" json:"criteria_weight_ratio,omitempty"`
	DecimalPlaces        *int     `yaml:"decimal_places" json:"decimal_places,omitempty"`
}

type Criterion struct {
	ID                  string     `yaml:"id" json:"id"`
	Direction           string     `yaml:"direction" json:"direction"`
	Weight              *float64   `yaml:"weight" json:"weight,omitempty"`
	Function            string     `yaml:"function" json:"function,omitempty"`
	Thresholds          Thresholds `yaml:"thresholds" json:"thresholds,omitempty"`
	ReinforcementFactor *float64   `yaml:"reinforcement_factor" json:"reinforcement_factor,omitempty"`
	// Rank orders criteria for surrogate and SRF weights.
	Rank *int `yaml:"rank" json:"rank,omitempty"`
}

type Thresholds struct {
	Preference           *Threshold `yaml:"preference" json:"preference,omitempty"`
	Indifference         *Threshold `yaml:"indifference" json:"indifference,omitempty"`
	Sigma                *Threshold `yaml:"sigma" json:"sigma,omitempty"`
	Veto                 *Threshold `yaml:"veto" json:"veto,omitempty"`
	ReinforcedPreference *Threshold `yaml:"reinforced_preference" json:"reinforced_preference,omitempty"`
}

// Threshold is either {constant: v} or {slope: a, intercept: b}.
type Threshold struct {
	Constant  *float64 `yaml:"constant" json:"constant,omitempty"`
	Slope     *float64 `yaml:"slope" json:"slope,omitempty"`
	Intercept *float64 `yaml:"intercept" json:"intercept,omitempty"`
}

// Decode parses a YAML or JSON problem document. Unknown fields are rejected.
func Decode(data []byte) (*Problem, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Problem
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty problem document", promethee.ErrInvalidInputs)
		}
		return nil, fmt.Errorf("%w: decoding problem document: %v", promethee.ErrInvalidInputs, err)
	}
	return &p, nil
}

// Inputs converts the document into engine inputs. Every problem found is
// reported through a single *promethee.ValidationError.
func (p *Problem) Inputs() (*promethee.Inputs, error) {
	verr := &promethee.ValidationError{}

	topology := promethee.TopologyAlternatives
	if p.Parameters.ComparisonWith != "" {
		t, err := promethee.ParseTopology(p.Parameters.ComparisonWith)
		if err != nil {
			verr.Add(err)
		}
		topology = t
	}

	var shared promethee.Shape
	perCriterion := true
	if g := strings.TrimSpace(p.Parameters.GeneralisedCriterion); g != "" && g != SpecifiedPerCriterion {
		perCriterion = false
		s, err := promethee.ParseShape(g)
		if err != nil {
			verr.Add(err)
		}
		shared = s
	}

	in := &promethee.Inputs{
		Topology:           topology,
		Alternatives:       p.Alternatives,
		Profiles:           p.Profiles,
		Performance:        p.Performance,
		ProfilePerformance: p.ProfilesPerformance,
	}

	for _, c := range p.Criteria {
		crit := promethee.Criterion{ID: c.ID, Shape: shared}

		dir, err := promethee.ParseDirection(c.Direction)
		if err != nil {
			verr.Add(fmt.Errorf("criterion %s: %w", c.ID, err))
		}
		crit.Direction = dir

		if c.Weight != nil {
			crit.Weight = *c.Weight
		}
		if c.ReinforcementFactor != nil {
			crit.ReinforcementFactor = *c.ReinforcementFactor
		}

		if perCriterion {
			if c.Function == "" {
				verr.Add(fmt.Errorf("%w: criterion %s has no function", promethee.ErrInvalidShape, c.ID))
			} else if s, err := promethee.ParseShape(c.Function); err != nil {
				verr.Add(fmt.Errorf("criterion %s: %w", c.ID, err))
			} else {
				crit.Shape = s
			}
		}

		thresholds := []struct {
			name string
			in   *Threshold
			out  **promethee.Threshold
		}{
			{"preference", c.Thresholds.Preference, &crit.Preference},
			{"indifference", c.Thresholds.Indifference, &crit.Indifference},
			{"sigma", c.Thresholds.Sigma, &crit.Sigma},
			{"veto", c.Thresholds.Veto, &crit.Veto},
			{"reinforced preference", c.Thresholds.ReinforcedPreference, &crit.ReinforcedPreference},
		}
		for _, th := range thresholds {
			t, err := th.in.threshold()
			if err != nil {
				verr.Add(fmt.Errorf("%s threshold on criterion %s: %w", th.name, c.ID, err))
				continue
			}
			*th.out = t
		}

		in.Criteria = append(in.Criteria, crit)
	}

	if len(p.Interactions) > 0 {
		z, err := promethee.ParseZFunction(p.Parameters.ZFunction)
		if err != nil {
			verr.Add(err)
		}
		in.ZFunction = z

		table, err := promethee.NewInteractionTable(p.Interactions)
		if err != nil {
			addAll(verr, err)
		}
		in.Interactions = table
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return in, nil
}

func (t *Threshold) threshold() (*promethee.Threshold, error) {
	if t == nil {
		return nil, nil
	}
	switch {
	case t.Constant != nil && t.Slope == nil && t.Intercept == nil:
		return promethee.ConstantThreshold(*t.Constant), nil
	case t.Constant == nil && t.Slope != nil:
		var intercept float64
		if t.Intercept != nil {
			intercept = *t.Intercept
		}
		return promethee.LinearThreshold(*t.Slope, intercept), nil
	}
	return nil, fmt.Errorf("%w: threshold must be either constant or linear (slope, intercept)", promethee.ErrInvalidInputs)
}

// addAll flattens a nested validation error into verr.
func addAll(verr *promethee.ValidationError, err error) {
	var nested *promethee.ValidationError
	if errors.As(err, &nested) {
		for _, p := range nested.Problems {
			verr.Add(p)
		}
		return
	}
	verr.Add(err)
}

// WeightsSpecified reports whether criteria weights take part in veto
// aggregation. Without the explicit parameter it is true when any criterion
// carries a weight.
func (p *Problem) WeightsSpecified() bool {
	if p.Parameters.WeightsSpecified != nil {
		return *p.Parameters.WeightsSpecified
	}
	for _, c := range p.Criteria {
		if c.Weight != nil {
			return true
		}
	}
	return false
}

func (p *Problem) TechnicalParam() (float64, error) {
	if p.Parameters.TechnicalParam == nil {
		return 0, fmt.Errorf("%w: technical_param is required", promethee.ErrInvalidInputs)
	}
	return *p.Parameters.TechnicalParam, nil
}

// Ranking collects criterion ranks for weight derivation.
func (p *Problem) Ranking() (map[string]int, error) {
	verr := &promethee.ValidationError{}
	ranking := make(map[string]int, len(p.Criteria))
	if len(p.Criteria) == 0 {
		verr.Add(fmt.Errorf("%w: criteria ranking is expected", promethee.ErrInvalidInputs))
	}
	for _, c := range p.Criteria {
		if c.Rank == nil {
			verr.Add(fmt.Errorf("%w: criterion %s has no rank", promethee.ErrInvalidInputs, c.ID))
			continue
		}
		if _, dup := ranking[c.ID]; dup {
			verr.Add(fmt.Errorf("%w: duplicate criterion %s", promethee.ErrInvalidInputs, c.ID))
		}
		ranking[c.ID] = *c.Rank
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return ranking, nil
}

// CriteriaIDs lists criterion ids in document order.
func (p *Problem) CriteriaIDs() []string {
	ids := make([]string, len(p.Criteria))
	for i, c := range p.Criteria {
		ids[i] = c.ID
	}
	return ids
}

// Entities returns inputs carrying only the topology and the compared
// entities. It serves operations that start from a precomputed preference
// matrix and need no criteria.
func (p *Problem) Entities() (*promethee.Inputs, error) {
	topology := promethee.TopologyAlternatives
	if p.Parameters.ComparisonWith != "" {
		t, err := promethee.ParseTopology(p.Parameters.ComparisonWith)
		if err != nil {
			return nil, err
		}
		topology = t
	}
	if len(p.Alternatives) == 0 {
		return nil, fmt.Errorf("%w: alternatives are expected", promethee.ErrInvalidInputs)
	}
	if topology.WithProfiles() && len(p.Profiles) == 0 {
		return nil, fmt.Errorf("%w: profiles are expected when comparing with %s", promethee.ErrInvalidInputs, topology)
	}
	return &promethee.Inputs{Topology: topology, Alternatives: p.Alternatives, Profiles: p.Profiles}, nil
}
