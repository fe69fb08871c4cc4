package promethee

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Shape selects one of the six generalised criteria.
type Shape int

const (
	ShapeUsual Shape = iota + 1
	ShapeUShape
	ShapeVShape
	ShapeLevel
	ShapeVShapeIndifference
	ShapeGaussian
)

var shapeLabels = map[Shape]string{
	ShapeUsual:              "usual",
	ShapeUShape:             "u-shape",
	ShapeVShape:             "v-shape",
	ShapeLevel:              "level",
	ShapeVShapeIndifference: "v-shape-ind",
	ShapeGaussian:           "gaussian",
}

func (s Shape) String() string {
	if l, ok := shapeLabels[s]; ok {
		return l
	}
	return "shape(" + strconv.Itoa(int(s)) + ")"
}

// Valid reports whether s is one of the six known shapes.
func (s Shape) Valid() bool {
	return s >= ShapeUsual && s <= ShapeGaussian
}

// ParseShape accepts a shape label ("usual", "v-shape-ind", ...) or its number 1..6.
func ParseShape(label string) (Shape, error) {
	label = strings.TrimSpace(label)
	if n, err := strconv.Atoi(label); err == nil {
		if s := Shape(n); s.Valid() {
			return s, nil
		}
		return 0, fmt.Errorf("%w: generalised criteria must be integers between 1 and 6, got %d", ErrInvalidShape, n)
	}
	for s, l := range shapeLabels {
		if l == label {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q, possible values are: usual, u-shape, v-shape, level, v-shape-ind, gaussian", ErrInvalidShape, label)
}

// Requires lists which thresholds the shape needs: preference, indifference, sigma.
func (s Shape) Requires() (p, q, sigma bool) {
	switch s {
	case ShapeUShape:
		return false, true, false
	case ShapeVShape:
		return true, false, false
	case ShapeLevel, ShapeVShapeIndifference:
		return true, true, false
	case ShapeGaussian:
		return false, false, true
	}
	return false, false, false
}

type shapeFunc func(diff float64, p, q, s *float64) float64

var shapeFuncs = [...]shapeFunc{
	ShapeUsual: func(diff float64, _, _, _ *float64) float64 {
		if diff <= 0 {
			return 0
		}
		return 1
	},
	ShapeUShape: func(diff float64, _, q, _ *float64) float64 {
		if diff <= *q {
			return 0
		}
		return 1
	},
	ShapeVShape: func(diff float64, p, _, _ *float64) float64 {
		switch {
		case diff <= 0:
			return 0
		case diff > *p:
			return 1
		}
		return diff / *p
	},
	ShapeLevel: func(diff float64, p, q, _ *float64) float64 {
		switch {
		case diff <= *q:
			return 0
		case diff > *p:
			return 1
		}
		return 0.5
	},
	ShapeVShapeIndifference: func(diff float64, p, q, _ *float64) float64 {
		switch {
		case diff <= *q:
			return 0
		case diff > *p:
			return 1
		}
		return (diff - *q) / (*p - *q)
	},
	ShapeGaussian: func(diff float64, _, _, s *float64) float64 {
		if diff <= 0 {
			return 0
		}
		return 1 - math.Exp(-(diff*diff)/(2*(*s)*(*s)))
	},
}

// Evaluate maps a difference of evaluations to a preference degree in [0,1].
// A threshold required by the shape but passed as nil yields ErrMissingThreshold.
func Evaluate(shape Shape, diff float64, p, q, s *float64) (float64, error) {
	if !shape.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidShape, int(shape))
	}
	needP, needQ, needS := shape.Requires()
	if needP && p == nil {
		return 0, fmt.Errorf("%w: %s function requires preference threshold", ErrMissingThreshold, shape)
	}
	if needQ && q == nil {
		return 0, fmt.Errorf("%w: %s function requires indifference threshold", ErrMissingThreshold, shape)
	}
	if needS && s == nil {
		return 0, fmt.Errorf("%w: %s function requires sigma threshold", ErrMissingThreshold, shape)
	}
	return shapeFuncs[shape](diff, p, q, s), nil
}
