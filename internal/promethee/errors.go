package promethee

import (
	"errors"
	"strings"
)

var (
	ErrWrongPreferenceDirection = errors.New("wrong preference direction")
	ErrMissingThreshold         = errors.New("missing threshold")
	ErrInvalidShape             = errors.New("invalid generalised criterion")
	ErrInvalidTopology          = errors.New("invalid comparison topology")
	ErrInvalidInputs            = errors.New("invalid inputs")
	ErrInvalidInteraction       = errors.New("invalid interaction")
	ErrExclusiveInteraction     = errors.New("weakening and strengthening effects are mutually exclusive")
	ErrNetBalance               = errors.New("net balance condition violated")
)

// ValidationError accumulates every problem found while checking inputs so
// the caller can report them all at once.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error { return e.Problems }

// Messages returns the individual problem descriptions.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return msgs
}

// Add records a problem.
func (e *ValidationError) Add(err error) {
	e.Problems = append(e.Problems, err)
}

// Err returns nil when nothing was recorded.
func (e *ValidationError) Err() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
