package ode

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/rkradau/ivp/la"
)

// assembleJacobianDense returns m*df/dy(x,y) as a dense n x n matrix,
// matching the JacFunc convention: the engine always passes the
// coefficient m so the hot path never needs a post-multiply. When the
// System has no analytical Jacobian, it falls back to a
// central-difference estimate via gonum's diff/fd, the same
// collaborator godesim's NewtonRaphsonSolver reaches for.
func assembleJacobianDense(sys *System, x float64, y la.Vector, m float64, args interface{}) (*mat.Dense, bool) {
	n := sys.N
	if sys.HasJac {
		t := &la.Triplet{}
		t.Init(n, n, sys.JacNnz)
		if !sys.Jac(t, x, y, m, args) {
			return nil, false
		}
		return t.ToDense(), true
	}
	dst := mat.NewDense(n, n, nil)
	ok := true
	f := func(fy, yy []float64) {
		if !sys.Fcn(la.Vector(fy), x, la.Vector(yy), args) {
			ok = false
		}
	}
	fd.Jacobian(dst, f, []float64(y), &fd.JacobianSettings{Formula: fd.Central})
	if !ok {
		return nil, false
	}
	dst.Scale(m, dst)
	return dst, true
}

// massOrIdentity returns the constant mass matrix as a dense n x n
// matrix, or the identity when the System has none: a System with no
// mass matrix is understood to have M = I.
func massOrIdentity(sys *System) *mat.Dense {
	n := sys.N
	if !sys.HasMass() {
		return identityDense(n)
	}
	rows := sys.MassDense()
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d.Set(i, j, rows[i][j])
		}
	}
	return d
}

func identityDense(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1.0)
	}
	return d
}

// denseToTriplet copies a dense matrix into a freshly initialized
// Triplet, the shape la.RealSparseSolver.Factorize expects.
func denseToTriplet(d *mat.Dense) *la.Triplet {
	r, c := d.Dims()
	t := &la.Triplet{}
	t.Init(r, c, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := d.At(i, j)
			if v != 0 {
				t.Put(i, j, v)
			}
		}
	}
	return t
}
