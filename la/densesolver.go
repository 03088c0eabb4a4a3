package la

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DenseRealSolver is the reference implementation of RealSparseSolver.
// It densifies the triplet and factorizes it with gonum's LU
// decomposition. gosl's own ode package hands this job to a cgo
// binding around UMFPACK/MUMPS (out of scope here, spec section 1); for
// problem sizes the adaptive engine itself targets (n in the tens to
// low hundreds) a dense LU is a faithful, dependency-grounded stand-in,
// and it is the only concrete factorization backend wired into this
// module — see DESIGN.md.
type DenseRealSolver struct {
	n  int
	lu mat.LU
}

var _ RealSparseSolver = (*DenseRealSolver)(nil)

// Factorize implements RealSparseSolver.
func (s *DenseRealSolver) Factorize(t *Triplet) error {
	m, n := t.Dims()
	if m != n {
		return fmt.Errorf("la: DenseRealSolver requires a square matrix, got %dx%d", m, n)
	}
	s.n = n
	dense := t.ToDense()
	s.lu.Factorize(dense)
	if detectSingular(&s.lu) {
		return fmt.Errorf("la: factorize: %w", ErrSingular)
	}
	return nil
}

// Solve implements RealSparseSolver.
func (s *DenseRealSolver) Solve(rhs Vector) (Vector, error) {
	b := mat.NewVecDense(s.n, append([]float64(nil), rhs...))
	var x mat.VecDense
	if err := s.lu.SolveVecTo(&x, false, b); err != nil {
		return nil, fmt.Errorf("la: solve: %w", err)
	}
	out := make(Vector, s.n)
	for i := 0; i < s.n; i++ {
		out[i] = x.AtVec(i)
	}
	return out, nil
}

// Det implements RealSparseSolver as a*2^c, matching the teacher's
// determinant-request convention (spec section 6).
func (s *DenseRealSolver) Det() (a, c float64) {
	det := s.lu.Det()
	if det == 0 {
		return 0, 0
	}
	sign := 1.0
	if det < 0 {
		sign = -1.0
		det = -det
	}
	exp := math.Floor(math.Log2(det))
	mant := det / math.Pow(2, exp)
	return sign * mant, exp
}

// detectSingular reports whether an LU factorization has a zero, NaN or
// Inf determinant, standing in for gonum.LU's own singularity signal
// (gonum does not expose a boolean "is singular" on LU, only a
// reciprocal condition estimate via Cond()). Ill-conditioned matrices
// with a finite nonzero determinant are not reported.
func detectSingular(lu *mat.LU) bool {
	det := lu.Det()
	return det == 0 || math.IsNaN(det) || math.IsInf(det, 0)
}
