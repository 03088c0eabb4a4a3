package ode

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/rkradau/ivp/la"
)

// newtonBwEuler runs the simplified Newton iteration for the
// backward-Euler residual
//
//	G(Y) = M*(Y - yn) - h*f(xn+h, Y) = 0
//
// reusing the iteration matrix (M - h*J) across steps while h is
// unchanged and the last convergence rate theta stays at or below
// Params.JacRecomputeTheta (adapted from num/nlsolver.go's NlSolver.Solve -- scaling vector,
// theta/fnewt bookkeeping -- narrowed to this one fixed residual; see
// DESIGN.md).
type newtonBwEuler struct {
	sys    *System
	p      *Params
	ws     *workspace
	args   interface{}
	solver la.RealSparseSolver

	massCache *mat.Dense
}

func newNewtonBwEuler(sys *System, p *Params, ws *workspace, args interface{}) *newtonBwEuler {
	return &newtonBwEuler{
		sys:       sys,
		p:         p,
		ws:        ws,
		args:      args,
		solver:    &la.DenseRealSolver{},
		massCache: massOrIdentity(sys),
	}
}

// solve attempts one backward-Euler step of size h from (x0, y0). The
// returned y1 is only valid when diverged, linFailed and cbFailed are
// all false.
func (nb *newtonBwEuler) solve(x0 float64, y0 la.Vector, h float64) (y1 la.Vector, nit int, diverged, linFailed, cbFailed bool) {
	n := nb.sys.N
	ws := nb.ws
	x1 := x0 + h
	mass := nb.massCache

	reuse := nb.p.AllowSimpleNewton && ws.factValid && ws.jacCurrent
	if !reuse {
		jacStart := time.Now()
		jac, ok := assembleJacobianDense(nb.sys, x1, y0, h, nb.args)
		if !ok {
			return nil, 0, false, false, true
		}
		ws.stats.Njeval++
		ws.stats.trackPhase("jacobian", jacStart)
		iter := mat.NewDense(n, n, nil)
		iter.Sub(mass, jac)
		if err := nb.solver.Factorize(denseToTriplet(iter)); err != nil {
			return nil, 0, false, true, false
		}
		ws.stats.Ndecomp++
		ws.factValid = true
		ws.jacCurrent = true
	}

	la.ScalingVector(ws.sc, y0, y0, nb.p.Atol, nb.p.Rtol)

	y := y0.Copy()
	fx := la.NewVector(n)
	diff := make([]float64, n)
	res := make([]float64, n)
	negRes := make([]float64, n)

	thetaPrev := 1.0
	normPrev := 0.0

	for k := 0; k < nb.p.NewtonMaxIter; k++ {
		if !nb.sys.Fcn(fx, x1, y, nb.args) {
			return nil, k, false, false, true
		}
		ws.stats.Nfeval++

		for i := 0; i < n; i++ {
			diff[i] = y[i] - y0[i]
		}
		diffVec := mat.NewVecDense(n, diff)
		var mv mat.VecDense
		mv.MulVec(mass, diffVec)
		for i := 0; i < n; i++ {
			res[i] = mv.AtVec(i) - h*fx[i]
			negRes[i] = -res[i]
		}

		linStart := time.Now()
		delta, err := nb.solver.Solve(la.Vector(negRes))
		if err != nil {
			return nil, k + 1, false, true, false
		}
		ws.stats.Nlinsol++
		ws.stats.trackPhase("linsolve", linStart)

		for i := 0; i < n; i++ {
			y[i] += delta[i]
		}

		normCur := la.RmsScaledNorm(delta, ws.sc)
		nit = k + 1
		ws.newtonThetaLast = thetaPrev

		if k > 0 && normPrev > 0 {
			theta := normCur / normPrev
			ws.newtonThetaLast = theta
			thetaPrev = theta
			if theta >= 1.0 {
				return nil, nit, true, false, false
			}
			// predicted remaining error under linear contraction (the
			// teacher's fnewt acceptance bound)
			if normCur*theta/(1-theta) <= nb.p.NewtonTolFactor {
				return y, nit, false, false, false
			}
		} else if normCur <= nb.p.NewtonTolFactor {
			return y, nit, false, false, false
		}
		normPrev = normCur
	}
	return nil, nit, true, false, false
}
