package runner

import (
	"errors"
	"fmt"
	"strings"
)

// Operation names a computation a problem document can be submitted for.
type Operation string

const (
	OpPreference        Operation = "preference"
	OpVeto              Operation = "veto"
	OpDiscordance       Operation = "discordance"
	OpFlows             Operation = "flows"
	OpAggregate         Operation = "aggregate"
	OpUnicriterionFlows Operation = "unicriterion_flows"
	OpSurrogateWeights  Operation = "surrogate_weights"
	OpSRFWeights        Operation = "srf_weights"
)

var ErrUnknownOperation = errors.New("unknown operation")

// Operations lists every supported operation.
var Operations = []Operation{
	OpPreference, OpVeto, OpDiscordance, OpFlows,
	OpAggregate, OpUnicriterionFlows, OpSurrogateWeights, OpSRFWeights,
}

func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Operations {
		if op == known {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}
