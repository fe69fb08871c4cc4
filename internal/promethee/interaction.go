package promethee

import (
	"fmt"
	"strings"
)

// InteractionKind is the effect one criterion has on another.
type InteractionKind string

const (
	Weakening     InteractionKind = "weakening"
	Strengthening InteractionKind = "strengthening"
	Antagonistic  InteractionKind = "antagonistic"
)

// Interaction is a single entry of the criteria interaction table.
// Antagonistic entries read as "Criterion1 is opposed by Criterion2".
type Interaction struct {
	Kind        InteractionKind `json:"type" yaml:"type"`
	Criterion1  string          `json:"criterion1" yaml:"criterion1"`
	Criterion2  string          `json:"criterion2" yaml:"criterion2"`
	Coefficient float64         `json:"coefficient" yaml:"coefficient"`
}

// ZFunction combines the partial preferences of two interacting criteria.
type ZFunction string

const (
	ZMultiplication ZFunction = "multiplication"
	ZMinimum        ZFunction = "minimum"
)

func ParseZFunction(s string) (ZFunction, error) {
	switch z := ZFunction(strings.ToLower(strings.TrimSpace(s))); z {
	case "":
		return ZMultiplication, nil
	case ZMultiplication, ZMinimum:
		return z, nil
	}
	return "", fmt.Errorf("%w: z function %q, possible values are: multiplication, minimum", ErrInvalidInteraction, s)
}

func (z ZFunction) apply(x, y float64) float64 {
	if z == ZMinimum {
		return min(x, y)
	}
	return x * y
}

type criteriaPair struct {
	first, second string
}

// unordered normalizes a criteria pair so (c1,c2) and (c2,c1) share a key.
func unordered(c1, c2 string) criteriaPair {
	if c2 < c1 {
		c1, c2 = c2, c1
	}
	return criteriaPair{c1, c2}
}

// InteractionTable holds validated interaction entries. Weakening and
// strengthening are keyed by unordered criteria pair, antagonistic entries by
// ordered pair.
type InteractionTable struct {
	entries      []Interaction
	mutual       map[criteriaPair]Interaction
	antagonistic map[criteriaPair]Interaction
}

// NewInteractionTable validates entries and reports every problem found.
func NewInteractionTable(entries []Interaction) (*InteractionTable, error) {
	t := &InteractionTable{
		mutual:       make(map[criteriaPair]Interaction),
		antagonistic: make(map[criteriaPair]Interaction),
	}
	verr := &ValidationError{}

	for _, it := range entries {
		if it.Criterion1 == "" || it.Criterion2 == "" {
			verr.Add(fmt.Errorf("%w: interaction needs exactly 2 criteria", ErrInvalidInteraction))
			continue
		}
		if it.Criterion1 == it.Criterion2 {
			verr.Add(fmt.Errorf("%w: criterion %s cannot interact with itself", ErrInvalidInteraction, it.Criterion1))
			continue
		}

		switch it.Kind {
		case Weakening, Strengthening:
			if it.Kind == Weakening && it.Coefficient >= 0 {
				verr.Add(fmt.Errorf("%w: weakening coefficient must be less than zero (%s, %s)", ErrInvalidInteraction, it.Criterion1, it.Criterion2))
				continue
			}
			if it.Kind == Strengthening && it.Coefficient <= 0 {
				verr.Add(fmt.Errorf("%w: strengthening coefficient must be greater than zero (%s, %s)", ErrInvalidInteraction, it.Criterion1, it.Criterion2))
				continue
			}
			key := unordered(it.Criterion1, it.Criterion2)
			if prev, ok := t.mutual[key]; ok {
				if prev.Kind != it.Kind {
					verr.Add(fmt.Errorf("%w (%s, %s)", ErrExclusiveInteraction, it.Criterion1, it.Criterion2))
				} else {
					verr.Add(fmt.Errorf("%w: only one %s effect per pair of criteria can exist (%s, %s)", ErrInvalidInteraction, it.Kind, it.Criterion1, it.Criterion2))
				}
				continue
			}
			t.mutual[key] = it
		case Antagonistic:
			if it.Coefficient <= 0 {
				verr.Add(fmt.Errorf("%w: antagonistic coefficient must be greater than zero (%s, %s)", ErrInvalidInteraction, it.Criterion1, it.Criterion2))
				continue
			}
			key := criteriaPair{it.Criterion1, it.Criterion2}
			if _, ok := t.antagonistic[key]; ok {
				verr.Add(fmt.Errorf("%w: only one antagonistic effect per pair of criteria can exist (%s, %s)", ErrInvalidInteraction, it.Criterion1, it.Criterion2))
				continue
			}
			t.antagonistic[key] = it
		default:
			verr.Add(fmt.Errorf("%w: %q unrecognized, only three interaction types are supported: weakening, strengthening, antagonistic", ErrInvalidInteraction, it.Kind))
			continue
		}
		t.entries = append(t.entries, it)
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// Entries returns the accepted entries in input order.
func (t *InteractionTable) Entries() []Interaction {
	if t == nil {
		return nil
	}
	out := make([]Interaction, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *InteractionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// correction is the signed amount added to the weighted numerator of a
// pair's total preference, given that pair's partial preferences.
func (t *InteractionTable) correction(z ZFunction, pp map[string]float64) float64 {
	var sum float64
	for _, it := range t.entries {
		x, y := pp[it.Criterion1], pp[it.Criterion2]
		switch it.Kind {
		case Weakening, Strengthening:
			sum += it.Coefficient * z.apply(x, y)
		case Antagonistic:
			sum -= it.Coefficient * x * (1 - y)
		}
	}
	return sum
}

// checkNetBalance requires every criterion to keep a positive weight once its
// weakening and antagonistic effects are subtracted.
func (t *InteractionTable) checkNetBalance(criteria []Criterion) error {
	verr := &ValidationError{}
	for _, c := range criteria {
		balance := c.Weight
		for _, it := range t.entries {
			switch {
			case it.Kind == Weakening && (it.Criterion1 == c.ID || it.Criterion2 == c.ID):
				balance += it.Coefficient
			case it.Kind == Antagonistic && it.Criterion1 == c.ID:
				balance -= it.Coefficient
			}
		}
		if balance <= 0 {
			verr.Add(fmt.Errorf("%w: criterion %s has non-positive net balance %g", ErrNetBalance, c.ID, balance))
		}
	}
	return verr.Err()
}
