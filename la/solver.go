package la

import "errors"

// ErrSingular is returned by factorize when the coefficient matrix is
// numerically singular. Callers (the Radau5 and Backward-Euler steppers)
// map this to the Linear-solver-failure error kind (spec section 7.5).
var ErrSingular = errors.New("la: singular matrix")

// RealSparseSolver is the external collaborator contract of spec
// section 6 for the real coefficient matrices the engine assembles
// (the backward-Euler iteration matrix M-h*J, and the gamma/h*M-J
// system of Radau5's decoupled Newton iteration). Implementations own
// their own handle and are not required to be reentrant across handles
// (spec section 5).
type RealSparseSolver interface {
	// Factorize consumes the triplet's current entries and prepares the
	// solver for repeated Solve calls against the same matrix. It
	// returns ErrSingular (wrapped) if the matrix cannot be factorized.
	Factorize(t *Triplet) error
	// Solve returns x solving A*x = rhs using the most recent
	// factorization. rhs is not mutated.
	Solve(rhs Vector) (Vector, error)
	// Det returns the determinant as a*2^c when requested, matching the
	// teacher's determinant-request flag (spec section 6).
	Det() (a float64, c float64)
}

// ComplexSparseSolver is the complex-matrix half of the same contract,
// used for the (alpha+i*beta)/h*M - J system in Radau5 (spec 4.7, 9).
type ComplexSparseSolver interface {
	Factorize(t *TripletC) error
	Solve(rhs []complex128) ([]complex128, error)
}
