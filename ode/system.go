package ode

import "github.com/rkradau/ivp/la"

// Func is the user-supplied right-hand side f(x, y) -> y-valued,
// writing into fx. It returns false to signal a transient evaluation
// failure (spec section 5, cooperative cancellation); the stepper
// retries with a smaller h before surfacing KindCallback.
type Func func(fx la.Vector, x float64, y la.Vector, args interface{}) bool

// JacFunc is the user-supplied analytical Jacobian builder. It must
// populate dfdy with m*(df/dy): the engine always passes the
// coefficient m so the hot path never needs a post-multiply (spec
// section 9). It returns false on transient failure, same convention
// as Func.
type JacFunc func(dfdy *la.Triplet, x float64, y la.Vector, m float64, args interface{}) bool

// System is the immutable-over-a-solve descriptor of spec section 3:
// dimension, right-hand side, optional analytical Jacobian, and
// optional constant mass matrix.
type System struct {
	N       int
	Fcn     Func
	Jac     JacFunc
	HasJac  bool
	JacNnz  int
	MassNnz int

	mass    *la.Triplet
	massSet bool
}

// New builds a System. jac may be nil if hasJac is false, in which case
// Radau5 and Backward Euler fall back to a numerical Jacobian (see
// jacobian.go). jacNnz is the capacity hint for the Jacobian triplet
// the engine allocates on each analytical-Jacobian evaluation; massNnz
// is stored on the System but not used for allocation (InitMassMatrix
// takes its own nnz).
func New(n int, fcn Func, jac JacFunc, hasJac bool, jacNnz, massNnz int) *System {
	return &System{
		N:       n,
		Fcn:     fcn,
		Jac:     jac,
		HasJac:  hasJac,
		JacNnz:  jacNnz,
		MassNnz: massNnz,
	}
}

// InitMassMatrix allocates the constant mass-matrix triplet with room
// for nnz entries. A System with no mass matrix is understood to have
// M = I (spec section 3).
func (s *System) InitMassMatrix(nnz int) {
	s.mass = &la.Triplet{}
	s.mass.Init(s.N, s.N, nnz)
	s.massSet = true
}

// MassPut writes one entry of the constant mass matrix.
func (s *System) MassPut(i, j int, v float64) {
	if !s.massSet {
		panic("ode: MassPut called before InitMassMatrix")
	}
	s.mass.Put(i, j, v)
}

// HasMass reports whether a mass matrix was supplied.
func (s *System) HasMass() bool { return s.massSet }

// MassDense returns the dense n x n mass matrix, or nil when absent.
func (s *System) MassDense() [][]float64 {
	if !s.massSet {
		return nil
	}
	d := s.mass.ToDense()
	r, c := d.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		out[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			out[i][j] = d.At(i, j)
		}
	}
	return out
}
