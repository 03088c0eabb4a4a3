package ode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkradau/ivp/la"
)

// These mirror the literal end-to-end scenarios of spec section 8.

func TestScenarioLinearScalarDoPri8(t *testing.T) {
	sys := New(1, func(fx la.Vector, x float64, y la.Vector, args interface{}) bool {
		fx[0] = x + y[0]
		return true
	}, nil, false, 0, 0)
	p := NewParams(DoPri8).SetTols(1e-8, 1e-8)
	sol, err := NewSolver(p, sys)
	require.NoError(t, err)

	y := la.Vector{0.0}
	require.NoError(t, sol.Solve(y, 0, 1, 0, nil, nil))
	assert.InDelta(t, math.E-2, y[0], 1e-8)
}

// probBrusselator is the classical two-component Brusselator oscillator.
func probBrusselator() *System {
	return New(2, func(fx la.Vector, x float64, y la.Vector, args interface{}) bool {
		fx[0] = 1 - 4*y[0] + y[0]*y[0]*y[1]
		fx[1] = 3*y[0] - y[0]*y[0]*y[1]
		return true
	}, nil, false, 0, 0)
}

func TestScenarioBrusselatorDoPri8(t *testing.T) {
	sys := probBrusselator()
	p := NewParams(DoPri8).SetTols(1e-8, 1e-8)
	sol, err := NewSolver(p, sys)
	require.NoError(t, err)

	y := la.Vector{1.5, 3}
	require.NoError(t, sol.Solve(y, 0, 20, 0, nil, nil))
	assert.InDelta(t, 0.4986, y[0], 1e-3)
	assert.InDelta(t, 4.5968, y[1], 1e-3)
}

func TestScenarioRobertsonAcceptedStepBudget(t *testing.T) {
	sys := probRobertson()
	p := NewParams(Radau5).SetTols(1.0e-6, 1.0e-3)
	sol, err := NewSolver(p, sys)
	require.NoError(t, err)

	y := la.Vector{1, 0, 0}
	require.NoError(t, sol.Solve(y, 0, 0.3, 0, nil, nil))
	assert.LessOrEqual(t, sol.Stats().Naccepted, 30)
}

func TestScenarioVanDerPolNewtonBudget(t *testing.T) {
	sys := probVanDerPol(1e-3)
	p := NewParams(Radau5).SetTols(1e-5, 1e-5)
	sol, err := NewSolver(p, sys)
	require.NoError(t, err)

	y := la.Vector{2, 0}
	require.NoError(t, sol.Solve(y, 0, 2, 0, nil, nil))
	assert.GreaterOrEqual(t, sol.Stats().Njeval, 1)
	assert.LessOrEqual(t, sol.Stats().Nitmax, 7)
}
