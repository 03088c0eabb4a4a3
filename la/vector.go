// Package la provides the small linear-algebra surface the ode package
// needs: plain vectors, COO triplets for sparse assembly, and the
// real/complex sparse-solver contract that the Radau5 and Backward-Euler
// steppers factorize and solve against.
package la

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector is a dense real vector. It is the calling convention for every
// user-supplied right-hand-side and Jacobian callback in this module.
type Vector []float64

// NewVector allocates a zeroed vector of length n.
func NewVector(n int) Vector {
	return make(Vector, n)
}

// Copy returns a new vector holding the same values as v.
func (v Vector) Copy() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Fill sets every entry of v to x.
func (v Vector) Fill(x float64) {
	for i := range v {
		v[i] = x
	}
}

// Norm returns the Euclidean norm of v.
func (v Vector) Norm() float64 {
	return floats.Norm(v, 2)
}

// RmsScaledNorm returns sqrt((1/n) * sum((v[i]/sc[i])^2)), the scaled
// error norm used throughout the step-size controller and estimators.
func RmsScaledNorm(v, sc Vector) float64 {
	n := len(v)
	if n == 0 {
		return 0
	}
	ratio := make([]float64, n)
	floats.DivTo(ratio, v, sc)
	return math.Sqrt(floats.Dot(ratio, ratio) / float64(n))
}

// ScalingVector fills sc[i] = atol + rtol*max(|y0[i]|, |y1[i]|), the
// per-component tolerance scale from spec section 4.2. gonum/floats has
// no elementwise two-vector abs-max primitive, so this stays a plain
// loop (see DESIGN.md).
func ScalingVector(sc, y0, y1 Vector, atol, rtol float64) {
	for i := range sc {
		a0, a1 := absf(y0[i]), absf(y1[i])
		m := a0
		if a1 > m {
			m = a1
		}
		sc[i] = atol + rtol*m
	}
}

func absf(x float64) float64 {
	return math.Abs(x)
}
