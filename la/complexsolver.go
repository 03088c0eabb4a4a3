package la

import (
	"fmt"
	"math"
	"math/cmplx"
)

// DenseComplexSolver is a hand-rolled dense Gaussian-elimination solver
// with partial pivoting over complex128. No example repository in the
// retrieval pack carries a complex linear-algebra dependency (gonum/mat
// is real-valued only), so this is the one piece of the module built
// directly on the standard library rather than a wired third-party
// package; see SPEC_FULL.md section 11 and DESIGN.md.
type DenseComplexSolver struct {
	n    int
	a    [][]complex128 // LU-factored in place
	piv  []int
	sing bool
}

var _ ComplexSparseSolver = (*DenseComplexSolver)(nil)

// Factorize implements ComplexSparseSolver.
func (s *DenseComplexSolver) Factorize(t *TripletC) error {
	m, n := t.Dims()
	if m != n {
		return fmt.Errorf("la: DenseComplexSolver requires a square matrix, got %dx%d", m, n)
	}
	s.n = n
	s.a = t.ToDense()
	s.piv = make([]int, n)
	for i := range s.piv {
		s.piv[i] = i
	}
	s.sing = false

	for k := 0; k < n; k++ {
		// partial pivot on column k
		maxAbs, maxRow := -1.0, k
		for i := k; i < n; i++ {
			if abs := cmplx.Abs(s.a[i][k]); abs > maxAbs {
				maxAbs, maxRow = abs, i
			}
		}
		if maxAbs == 0 || math.IsNaN(maxAbs) {
			s.sing = true
			return fmt.Errorf("la: factorize: %w", ErrSingular)
		}
		if maxRow != k {
			s.a[k], s.a[maxRow] = s.a[maxRow], s.a[k]
			s.piv[k], s.piv[maxRow] = s.piv[maxRow], s.piv[k]
		}
		pivot := s.a[k][k]
		for i := k + 1; i < n; i++ {
			factor := s.a[i][k] / pivot
			s.a[i][k] = factor
			for j := k + 1; j < n; j++ {
				s.a[i][j] -= factor * s.a[k][j]
			}
		}
	}
	return nil
}

// Solve implements ComplexSparseSolver using the cached LU factors.
func (s *DenseComplexSolver) Solve(rhs []complex128) ([]complex128, error) {
	if s.sing {
		return nil, fmt.Errorf("la: solve: %w", ErrSingular)
	}
	n := s.n
	y := make([]complex128, n)
	for i := 0; i < n; i++ {
		y[i] = rhs[s.piv[i]]
	}
	// forward substitution (L has unit diagonal)
	for i := 1; i < n; i++ {
		sum := y[i]
		for j := 0; j < i; j++ {
			sum -= s.a[i][j] * y[j]
		}
		y[i] = sum
	}
	// back substitution (U)
	x := make([]complex128, n)
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for j := i + 1; j < n; j++ {
			sum -= s.a[i][j] * x[j]
		}
		x[i] = sum / s.a[i][i]
	}
	return x, nil
}
