package la

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripletToDenseSumsDuplicates(t *testing.T) {
	var tri Triplet
	tri.Init(2, 2, 4)
	tri.Put(0, 0, 1)
	tri.Put(0, 0, 2) // duplicate, should sum to 3
	tri.Put(1, 1, 5)

	d := tri.ToDense()
	assert.Equal(t, 3.0, d.At(0, 0))
	assert.Equal(t, 0.0, d.At(0, 1))
	assert.Equal(t, 5.0, d.At(1, 1))
}

func TestDenseRealSolverSolvesLinearSystem(t *testing.T) {
	var tri Triplet
	tri.Init(2, 2, 4)
	tri.Put(0, 0, 2)
	tri.Put(0, 1, 1)
	tri.Put(1, 0, 1)
	tri.Put(1, 1, 3)

	var solver DenseRealSolver
	require.NoError(t, solver.Factorize(&tri))

	x, err := solver.Solve(Vector{5, 10})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, x[0], 1e-9)
	assert.InDelta(t, 3.0, x[1], 1e-9)
}

func TestDenseRealSolverDetectsSingular(t *testing.T) {
	var tri Triplet
	tri.Init(2, 2, 4)
	tri.Put(0, 0, 1)
	tri.Put(0, 1, 2)
	tri.Put(1, 0, 2)
	tri.Put(1, 1, 4)

	var solver DenseRealSolver
	err := solver.Factorize(&tri)
	require.ErrorIs(t, err, ErrSingular)
}

func TestDenseComplexSolverSolvesLinearSystem(t *testing.T) {
	var tri TripletC
	tri.Init(2, 2, 4)
	tri.Put(0, 0, complex(2, 1))
	tri.Put(0, 1, complex(0, 0))
	tri.Put(1, 0, complex(0, 0))
	tri.Put(1, 1, complex(1, -1))

	var solver DenseComplexSolver
	require.NoError(t, solver.Factorize(&tri))

	x, err := solver.Solve([]complex128{complex(2, 1), complex(1, -1)})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, real(x[0]), 1e-9)
	assert.InDelta(t, 0.0, imag(x[0]), 1e-9)
	assert.InDelta(t, 1.0, real(x[1]), 1e-9)
	assert.InDelta(t, 0.0, imag(x[1]), 1e-9)
}

func TestRmsScaledNorm(t *testing.T) {
	v := Vector{1, 1}
	sc := Vector{1, 1}
	assert.InDelta(t, 1.0, RmsScaledNorm(v, sc), 1e-12)
}
