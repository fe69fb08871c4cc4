package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/Promethee/internal/document"
	"github.com/MikeSquared-Agency/Promethee/internal/promethee"
	"github.com/MikeSquared-Agency/Promethee/internal/weights"
)

// Result is the JSON-ready output of an operation, keyed by output name.
type Result map[string]any

// Executor runs operations against a shared engine. It is safe for
// concurrent use.
type Executor struct {
	engine *promethee.Engine
}

func NewExecutor(engine *promethee.Engine) *Executor {
	return &Executor{engine: engine}
}

// Execute runs op on p synchronously.
func (x *Executor) Execute(ctx context.Context, op Operation, p *document.Problem) (Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch op {
	case OpPreference:
		return x.preference(p)
	case OpVeto:
		return x.veto(p)
	case OpDiscordance:
		return x.discordance(p)
	case OpFlows:
		return x.flows(p)
	case OpAggregate:
		return x.aggregate(p)
	case OpUnicriterionFlows:
		return x.unicriterionFlows(p)
	case OpSurrogateWeights:
		return surrogateWeights(p)
	case OpSRFWeights:
		return srfWeights(p)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
}

func (x *Executor) preference(p *document.Problem) (Result, error) {
	in, err := p.Inputs()
	if err != nil {
		return nil, err
	}
	res, err := x.engine.Preferences(in)
	if err != nil {
		return nil, err
	}
	out := Result{
		"preferences":         res.Total,
		"partial_preferences": res.Partial,
	}
	if res.Multipliers != nil {
		out["partial_preferences"] = res.Reinforced
		out["reinforcement_multipliers"] = res.Multipliers
	}
	if res.Corrections != nil {
		out["interaction_corrections"] = res.Corrections
	}
	return out, nil
}

func (x *Executor) veto(p *document.Problem) (Result, error) {
	in, err := p.Inputs()
	if err != nil {
		return nil, err
	}
	res, err := x.engine.Veto(in, p.WeightsSpecified())
	if err != nil {
		return nil, err
	}
	return Result{"vetoes": res.Total, "partial_vetoes": res.Partial}, nil
}

// discordanceOf uses the document's partial preferences when present and
// derives them from the performance table otherwise.
func (x *Executor) discordanceOf(p *document.Problem) (*promethee.DiscordanceResult, error) {
	k, err := p.TechnicalParam()
	if err != nil {
		return nil, err
	}
	if p.PartialPreferences != nil {
		return promethee.Discordance(p.PartialPreferences, p.CriteriaIDs(), k)
	}
	in, err := p.Inputs()
	if err != nil {
		return nil, err
	}
	return x.engine.Discordance(in, k)
}

func (x *Executor) discordance(p *document.Problem) (Result, error) {
	res, err := x.discordanceOf(p)
	if err != nil {
		return nil, err
	}
	return Result{"discordances": res.Total, "partial_discordances": res.Partial}, nil
}

func (x *Executor) preferencesOf(p *document.Problem) (promethee.Matrix, error) {
	if p.Preferences != nil {
		return p.Preferences, nil
	}
	in, err := p.Inputs()
	if err != nil {
		return nil, err
	}
	res, err := x.engine.Preferences(in)
	if err != nil {
		return nil, err
	}
	return res.Total, nil
}

func (x *Executor) flows(p *document.Problem) (Result, error) {
	var (
		res *promethee.FlowsResult
		err error
	)
	if p.Preferences != nil {
		var in *promethee.Inputs
		if in, err = p.Entities(); err != nil {
			return nil, err
		}
		res, err = promethee.Flows(p.Preferences, in)
	} else {
		var in *promethee.Inputs
		if in, err = p.Inputs(); err != nil {
			return nil, err
		}
		res, err = x.engine.Flows(in)
	}
	if err != nil {
		return nil, err
	}
	return Result{
		"positive_flows": res.Positive,
		"negative_flows": res.Negative,
		"net_flows":      res.Net,
	}, nil
}

func (x *Executor) aggregate(p *document.Problem) (Result, error) {
	pref, err := x.preferencesOf(p)
	if err != nil {
		return nil, err
	}
	disc := p.Discordances
	if disc == nil {
		res, err := x.discordanceOf(p)
		if err != nil {
			return nil, err
		}
		disc = res.Total
	}
	out, err := promethee.AggregateDiscordance(pref, disc)
	if err != nil {
		return nil, err
	}
	return Result{"preferences": out}, nil
}

func (x *Executor) unicriterionFlows(p *document.Problem) (Result, error) {
	in, err := p.Inputs()
	if err != nil {
		return nil, err
	}
	flows, err := x.engine.UnicriterionFlows(in)
	if err != nil {
		return nil, err
	}
	return Result{"net_flows": flows}, nil
}

func surrogateWeights(p *document.Problem) (Result, error) {
	method, err := weights.ParseMethod(p.Parameters.WeightsMethod)
	if err != nil {
		return nil, err
	}
	ranking, err := p.Ranking()
	if err != nil {
		return nil, err
	}
	w, err := weights.Surrogate(method, ranking)
	if err != nil {
		return nil, err
	}
	return Result{"weights": w}, nil
}

func srfWeights(p *document.Problem) (Result, error) {
	if p.Parameters.CriteriaWeightRatio == nil {
		return nil, fmt.Errorf("%w: criteria_weight_ratio is required", promethee.ErrInvalidInputs)
	}
	decimals := weights.MaxDecimals
	if p.Parameters.DecimalPlaces != nil {
		decimals = *p.Parameters.DecimalPlaces
	}
	ranking, err := p.Ranking()
	if err != nil {
		return nil, err
	}
	w, err := weights.SRF(ranking, *p.Parameters.CriteriaWeightRatio, decimals)
	if err != nil {
		return nil, err
	}
	return Result{"weights": w}, nil
}

// Problems splits an execution error into reportable messages.
func Problems(err error) []string {
	if err == nil {
		return nil
	}
	var verr *promethee.ValidationError
	if errors.As(err, &verr) {
		return verr.Messages()
	}
	return []string{err.Error()}
}

var inputErrors = []error{
	promethee.ErrInvalidInputs,
	promethee.ErrWrongPreferenceDirection,
	promethee.ErrMissingThreshold,
	promethee.ErrInvalidShape,
	promethee.ErrInvalidTopology,
	promethee.ErrInvalidInteraction,
	promethee.ErrExclusiveInteraction,
	promethee.ErrNetBalance,
	weights.ErrInvalidRanking,
	weights.ErrInvalidParameter,
}

// IsInvalid reports whether err blames the submitted problem rather than
// the service.
func IsInvalid(err error) bool {
	var verr *promethee.ValidationError
	if errors.As(err, &verr) {
		return true
	}
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
