package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Promethee/internal/promethee"
)

const yamlProblem = `
parameters:
  comparison_with: boundary_profiles
  generalised_criterion: specified
  z_function: minimum
  technical_param: 2
alternatives: [a1, a2]
profiles: [p1]
criteria:
  - id: g1
    direction: max
    weight: 0.7
    function: v-shape
    thresholds:
      preference: {slope: 0.1, intercept: 2}
      veto: {constant: 30}
  - id: g2
    direction: MIN
    weight: 0.3
    function: "2"
    thresholds:
      indifference: {constant: 1}
    reinforcement_factor: 1.5
performance:
  a1: {g1: 50, g2: 3}
  a2: {g1: 30, g2: 7}
profiles_performance:
  p1: {g1: 40, g2: 5}
interactions:
  - {type: weakening, criterion1: g1, criterion2: g2, coefficient: -0.1}
`

func TestDecodeYAML(t *testing.T) {
	p, err := Decode([]byte(yamlProblem))
	require.NoError(t, err)

	in, err := p.Inputs()
	require.NoError(t, err)
	require.NoError(t, in.Validate())

	assert.Equal(t, promethee.TopologyBoundaryProfiles, in.Topology)
	assert.Equal(t, []string{"g1", "g2"}, in.CriteriaIDs())
	assert.Equal(t, promethee.ShapeVShape, in.Criteria[0].Shape)
	assert.Equal(t, promethee.LinearThreshold(0.1, 2), in.Criteria[0].Preference)
	assert.Equal(t, promethee.ConstantThreshold(30), in.Criteria[0].Veto)
	assert.Equal(t, promethee.Minimize, in.Criteria[1].Direction)
	assert.Equal(t, promethee.ShapeUShape, in.Criteria[1].Shape)
	assert.Equal(t, 1.5, in.Criteria[1].ReinforcementFactor)
	assert.Equal(t, promethee.ZMinimum, in.ZFunction)
	assert.Equal(t, 1, in.Interactions.Len())

	k, err := p.TechnicalParam()
	require.NoError(t, err)
	assert.Equal(t, 2.0, k)
	assert.True(t, p.WeightsSpecified())
}

func TestDecodeJSON(t *testing.T) {
	doc := `{
  "parameters": {"generalised_criterion": "usual"},
  "alternatives": ["A", "B"],
  "criteria": [
    {"id": "c1", "direction": "max", "weight": 0.6},
    {"id": "c2", "direction": "max", "weight": 0.4}
  ],
  "performance": {"A": {"c1": 10, "c2": 5}, "B": {"c1": 5, "c2": 10}}
}`
	p, err := Decode([]byte(doc))
	require.NoError(t, err)

	in, err := p.Inputs()
	require.NoError(t, err)
	assert.Equal(t, promethee.TopologyAlternatives, in.Topology)
	for _, c := range in.Criteria {
		assert.Equal(t, promethee.ShapeUsual, c.Shape)
	}

	res, err := promethee.NewEngine().Preferences(in)
	require.NoError(t, err)
	v, _ := res.Total.Get("A", "B")
	assert.InDelta(t, 0.6, v, 1e-12)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode([]byte("alternatives: [a]\nalternativez: [b]\n"))
	assert.ErrorIs(t, err, promethee.ErrInvalidInputs)

	_, err = Decode(nil)
	assert.ErrorIs(t, err, promethee.ErrInvalidInputs)
}

func TestInputsAccumulatesErrors(t *testing.T) {
	doc := `
parameters:
  comparison_with: neighbours
alternatives: [a]
criteria:
  - id: g1
    direction: up
    function: level
    thresholds:
      preference: {constant: 2, slope: 1}
  - id: g2
    direction: max
interactions:
  - {type: strengthening, criterion1: g1, criterion2: g2, coefficient: -1}
`
	p, err := Decode([]byte(doc))
	require.NoError(t, err)

	_, err = p.Inputs()
	var verr *promethee.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 5)
	assert.ErrorIs(t, err, promethee.ErrInvalidTopology)
	assert.ErrorIs(t, err, promethee.ErrWrongPreferenceDirection)
	assert.ErrorIs(t, err, promethee.ErrInvalidShape)
	assert.ErrorIs(t, err, promethee.ErrInvalidInteraction)
	assert.Contains(t, err.Error(), "preference threshold on criterion g1")
}

func TestWeightsSpecified(t *testing.T) {
	p := &Problem{Criteria: []Criterion{{ID: "g1"}}}
	assert.False(t, p.WeightsSpecified())

	yes := true
	p.Parameters.WeightsSpecified = &yes
	assert.True(t, p.WeightsSpecified())
}

func TestRanking(t *testing.T) {
	one, two := 1, 2
	p := &Problem{Criteria: []Criterion{{ID: "g1", Rank: &two}, {ID: "g2", Rank: &one}}}
	ranking, err := p.Ranking()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"g1": 2, "g2": 1}, ranking)

	p.Criteria = append(p.Criteria, Criterion{ID: "g3"})
	_, err = p.Ranking()
	assert.ErrorIs(t, err, promethee.ErrInvalidInputs)

	_, err = (&Problem{}).Ranking()
	assert.ErrorIs(t, err, promethee.ErrInvalidInputs)
}

func TestTechnicalParamRequired(t *testing.T) {
	_, err := (&Problem{}).TechnicalParam()
	assert.ErrorIs(t, err, promethee.ErrInvalidInputs)
}

func TestEntities(t *testing.T) {
	p := &Problem{
		Parameters:   Parameters{ComparisonWith: "central_profiles"},
		Alternatives: []string{"a1"},
		Profiles:     []string{"p1", "p2"},
	}
	in, err := p.Entities()
	require.NoError(t, err)
	assert.Equal(t, promethee.TopologyCentralProfiles, in.Topology)
	assert.Equal(t, []string{"p1", "p2"}, in.Profiles)
	assert.Empty(t, in.Criteria)

	p.Profiles = nil
	_, err = p.Entities()
	assert.ErrorIs(t, err, promethee.ErrInvalidInputs)

	_, err = (&Problem{Alternatives: []string{"a"}, Parameters: Parameters{ComparisonWith: "nope"}}).Entities()
	assert.ErrorIs(t, err, promethee.ErrInvalidTopology)
}
