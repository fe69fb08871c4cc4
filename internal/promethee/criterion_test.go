package promethee

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(v float64) *float64 { return &v }

func TestEvaluateShapes(t *testing.T) {
	p, q, s := float64Ptr(4), float64Ptr(1), float64Ptr(2)

	tests := []struct {
		name  string
		shape Shape
		diff  float64
		want  float64
	}{
		{"usual negative", ShapeUsual, -1, 0},
		{"usual zero", ShapeUsual, 0, 0},
		{"usual positive", ShapeUsual, 0.0001, 1},
		{"u-shape at q", ShapeUShape, 1, 0},
		{"u-shape above q", ShapeUShape, 1.5, 1},
		{"v-shape zero", ShapeVShape, 0, 0},
		{"v-shape half", ShapeVShape, 2, 0.5},
		{"v-shape at p", ShapeVShape, 4, 1},
		{"v-shape above p", ShapeVShape, 10, 1},
		{"level at q", ShapeLevel, 1, 0},
		{"level between", ShapeLevel, 2, 0.5},
		{"level at p", ShapeLevel, 4, 0.5},
		{"level above p", ShapeLevel, 4.01, 1},
		{"v-shape-ind at q", ShapeVShapeIndifference, 1, 0},
		{"v-shape-ind between", ShapeVShapeIndifference, 2.5, 0.5},
		{"v-shape-ind at p", ShapeVShapeIndifference, 4, 1},
		{"gaussian zero", ShapeGaussian, 0, 0},
		{"gaussian at sigma", ShapeGaussian, 2, 1 - math.Exp(-0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.shape, tt.diff, p, q, s)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestEvaluateRange(t *testing.T) {
	p, q, s := float64Ptr(3), float64Ptr(1), float64Ptr(1.5)
	for shape := ShapeUsual; shape <= ShapeGaussian; shape++ {
		for diff := -5.0; diff <= 5.0; diff += 0.25 {
			got, err := Evaluate(shape, diff, p, q, s)
			require.NoError(t, err)
			if got < 0 || got > 1 {
				t.Errorf("%s: evaluate(%g) = %g, outside [0,1]", shape, diff, got)
			}
		}
	}
}

func TestUsualIgnoresThresholds(t *testing.T) {
	thresholds := [][3]*float64{
		{nil, nil, nil},
		{float64Ptr(1), float64Ptr(0.5), float64Ptr(2)},
		{float64Ptr(100), float64Ptr(50), float64Ptr(0.01)},
	}
	for _, th := range thresholds {
		zero, err := Evaluate(ShapeUsual, 0, th[0], th[1], th[2])
		require.NoError(t, err)
		assert.Equal(t, 0.0, zero)

		one, err := Evaluate(ShapeUsual, 0.0001, th[0], th[1], th[2])
		require.NoError(t, err)
		assert.Equal(t, 1.0, one)
	}
}

func TestEvaluateMissingThreshold(t *testing.T) {
	tests := []struct {
		shape Shape
		p, q  *float64
		s     *float64
		want  string
	}{
		{ShapeUShape, nil, nil, nil, "indifference"},
		{ShapeVShape, nil, nil, nil, "preference"},
		{ShapeLevel, float64Ptr(2), nil, nil, "indifference"},
		{ShapeVShapeIndifference, nil, float64Ptr(1), nil, "preference"},
		{ShapeGaussian, nil, nil, nil, "sigma"},
	}
	for _, tt := range tests {
		t.Run(tt.shape.String(), func(t *testing.T) {
			_, err := Evaluate(tt.shape, 1, tt.p, tt.q, tt.s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingThreshold))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEvaluateInvalidShape(t *testing.T) {
	_, err := Evaluate(Shape(7), 1, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidShape)
	_, err = Evaluate(Shape(0), 1, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestParseShape(t *testing.T) {
	for _, label := range []string{"usual", "u-shape", "v-shape", "level", "v-shape-ind", "gaussian"} {
		s, err := ParseShape(label)
		require.NoError(t, err, label)
		assert.Equal(t, label, s.String())
	}

	s, err := ParseShape("5")
	require.NoError(t, err)
	assert.Equal(t, ShapeVShapeIndifference, s)

	_, err = ParseShape("9")
	assert.ErrorIs(t, err, ErrInvalidShape)
	_, err = ParseShape("triangle")
	assert.ErrorIs(t, err, ErrInvalidShape)
}
