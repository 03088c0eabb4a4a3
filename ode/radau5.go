package ode

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/rkradau/ivp/la"
)

// Classical 3-stage Radau IIA coefficients (Hairer & Wanner, "Solving
// Ordinary Differential Equations II", section IV.8), the same
// constants radau5.f's DEC/SOL routines are built from.
var (
	radau5C1 = (4.0 - math.Sqrt(6)) / 10.0
	radau5C2 = (4.0 + math.Sqrt(6)) / 10.0
	radau5C3 = 1.0

	radau5A = [3][3]float64{
		{(88.0 - 7.0*math.Sqrt(6)) / 360.0, (296.0 - 169.0*math.Sqrt(6)) / 1800.0, (-2.0 + 3.0*math.Sqrt(6)) / 225.0},
		{(296.0 + 169.0*math.Sqrt(6)) / 1800.0, (88.0 + 7.0*math.Sqrt(6)) / 360.0, (-2.0 - 3.0*math.Sqrt(6)) / 225.0},
		{(16.0 - math.Sqrt(6)) / 36.0, (16.0 + math.Sqrt(6)) / 36.0, 1.0 / 9.0},
	}

	// eigenvalues of A^-1: one real (gamma), one complex conjugate pair
	// (alpha +/- i*beta). Used to decouple the 3n-dimensional Newton
	// system into one real n x n solve and one complex n x n solve.
	radau5Gamma = 3.6378342527443792
	radau5Alpha = 2.6810828736277154
	radau5Beta  = 3.0504301992474110

	// T / TI: the real similarity transform diagonalizing A^-1 into
	// diag(gamma, [[alpha,-beta],[beta,alpha]]).
	radau5T = [3][3]float64{
		{9.1232394870892942792e-02, -0.14125529502095420843, -3.0029194105147424492e-02},
		{0.24171793270710701896, 0.20412935229379993199, 0.38294211275726193779},
		{0.96604818261509293619, 1.0, 0.0},
	}
	radau5TI = [3][3]float64{
		{4.3255798900631553510, 0.33919925181580986954, 0.54177053993587487119},
		{-4.1787185915519047273, -0.32768282076106238708, 0.47662355450055045196},
		{-0.50287263494578687595, 2.5719269498556054292, -0.59603920482822492497},
	}

	// error-estimator weights (Hairer's DD1/DD2/DD3 divided by gamma).
	radau5E1 = -(13.0 + 7.0*math.Sqrt(6)) / 3.0 / radau5Gamma
	radau5E2 = (-13.0 + 7.0*math.Sqrt(6)) / 3.0 / radau5Gamma
	radau5E3 = -1.0 / 3.0 / radau5Gamma
)

// radau5Stepper implements spec section 4.7: the 3-stage collocation
// method with a decoupled real/complex simplified Newton iteration, an
// embedded error estimate reusing the real factorization, and a cubic
// collocation dense-output polynomial. Grounded in structure on
// num/nlsolver.go's Newton bookkeeping, generalized to the
// block-diagonalized multi-stage system the single-equation
// newtonBwEuler never needs (see DESIGN.md).
type radau5Stepper struct {
	sys  *System
	p    *Params
	ws   *workspace
	args interface{}

	realSolver la.RealSparseSolver
	cplxSolver la.ComplexSparseSolver
	mass       *mat.Dense

	lastH float64
}

func newRadau5Stepper(sys *System, p *Params, ws *workspace, args interface{}) *radau5Stepper {
	return &radau5Stepper{
		sys:        sys,
		p:          p,
		ws:         ws,
		args:       args,
		realSolver: &la.DenseRealSolver{},
		cplxSolver: &la.DenseComplexSolver{},
		mass:       massOrIdentity(sys),
	}
}

func (s *radau5Stepper) refactor(x0 float64, y0 la.Vector, h float64) (factored, cbFailed bool) {
	n := s.sys.N
	jacStart := time.Now()
	jac, ok := assembleJacobianDense(s.sys, x0, y0, 1.0, s.args) // unscaled df/dy
	if !ok {
		return false, true
	}
	s.ws.stats.Njeval++
	s.ws.stats.trackPhase("jacobian", jacStart)

	factStart := time.Now()
	// real system: (gamma/h)*M - J
	realIter := mat.NewDense(n, n, nil)
	realIter.Scale(radau5Gamma/h, s.mass)
	realIter.Sub(realIter, jac)
	if err := s.realSolver.Factorize(denseToTriplet(realIter)); err != nil {
		return false, false
	}

	// complex system: ((alpha+i*beta)/h)*M - J
	ct := &la.TripletC{}
	ct.Init(n, n, n*n)
	coef := complex(radau5Alpha/h, radau5Beta/h)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := coef*complex(s.mass.At(i, j), 0) - complex(jac.At(i, j), 0)
			if v != 0 {
				ct.Put(i, j, v)
			}
		}
	}
	if err := s.cplxSolver.Factorize(ct); err != nil {
		return false, false
	}
	s.ws.stats.Ndecomp += 2
	s.ws.stats.trackPhase("factorize", factStart)
	s.ws.jacCurrent = true
	s.ws.factValid = true
	return true, false
}

func (s *radau5Stepper) step(h float64) stepOutcome {
	n := s.sys.N
	ws := s.ws
	x0 := ws.x
	y0 := ws.y

	needRefactor := !ws.factValid || !s.p.AllowSimpleNewton || !ws.jacCurrent || h != s.lastH
	if needRefactor {
		if factored, cbFailed := s.refactor(x0, y0, h); !factored {
			if cbFailed {
				return stepOutcome{callbackFailed: true}
			}
			return stepOutcome{linearSolverFailed: true}
		}
	}
	s.lastH = h

	// initial guess for Z1,Z2,Z3: scale the previous step's converged
	// values by the step-size ratio, zero on the first step of the solve
	// (a simplification of radau5.f's full collocation extrapolation;
	// see DESIGN.md).
	Z := [3]la.Vector{la.NewVector(n), la.NewVector(n), la.NewVector(n)}
	if !ws.firstStep && ws.radauHPrev > 0 {
		ratio := h / ws.radauHPrev
		for k := 0; k < 3; k++ {
			for i := 0; i < n; i++ {
				Z[k][i] = ratio * ws.radauZPrev[k][i]
			}
		}
	}

	F := [3]la.Vector{la.NewVector(n), la.NewVector(n), la.NewVector(n)}
	Y := [3]la.Vector{la.NewVector(n), la.NewVector(n), la.NewVector(n)}
	cs := [3]float64{radau5C1, radau5C2, radau5C3}

	normPrev := 0.0
	nit := 0
	converged := false

	for k := 0; k < s.p.NewtonMaxIter; k++ {
		for st := 0; st < 3; st++ {
			for i := 0; i < n; i++ {
				Y[st][i] = y0[i] + Z[st][i]
			}
			if !s.sys.Fcn(F[st], x0+cs[st]*h, Y[st], s.args) {
				return stepOutcome{callbackFailed: true}
			}
			ws.stats.Nfeval++
		}

		// residual R_st = -M*Z_st + h*sum_j A[st][j]*F[j], then transform
		// into the (gamma, alpha+i*beta) basis via TI and scale by
		// Lambda/h = diag(gamma, [[alpha,-beta],[beta,alpha]])/h.
		R := [3]la.Vector{la.NewVector(n), la.NewVector(n), la.NewVector(n)}
		for st := 0; st < 3; st++ {
			var mz mat.VecDense
			mz.MulVec(s.mass, mat.NewVecDense(n, Z[st]))
			for i := 0; i < n; i++ {
				sum := 0.0
				for j := 0; j < 3; j++ {
					sum += radau5A[st][j] * F[j][i]
				}
				R[st][i] = h*sum - mz.AtVec(i)
			}
		}
		S := [3]la.Vector{la.NewVector(n), la.NewVector(n), la.NewVector(n)}
		for kk := 0; kk < 3; kk++ {
			for i := 0; i < n; i++ {
				sum := 0.0
				for j := 0; j < 3; j++ {
					sum += radau5TI[kk][j] * R[j][i]
				}
				S[kk][i] = sum
			}
		}
		for i := 0; i < n; i++ {
			s1, s2 := S[1][i], S[2][i]
			S[0][i] *= radau5Gamma / h
			S[1][i] = (radau5Alpha*s1 - radau5Beta*s2) / h
			S[2][i] = (radau5Beta*s1 + radau5Alpha*s2) / h
		}

		linStart := time.Now()
		dW1, err := s.realSolver.Solve(S[0])
		if err != nil {
			return stepOutcome{linearSolverFailed: true}
		}
		ws.stats.Nlinsol++
		rhsC := make([]complex128, n)
		for i := 0; i < n; i++ {
			rhsC[i] = complex(S[1][i], S[2][i])
		}
		dWc, err := s.cplxSolver.Solve(rhsC)
		if err != nil {
			return stepOutcome{linearSolverFailed: true}
		}
		ws.stats.Nlinsol++
		ws.stats.trackPhase("linsolve", linStart)

		dW2 := make(la.Vector, n)
		dW3 := make(la.Vector, n)
		for i := 0; i < n; i++ {
			dW2[i] = real(dWc[i])
			dW3[i] = imag(dWc[i])
		}
		dW := [3]la.Vector{dW1, dW2, dW3}

		for st := 0; st < 3; st++ {
			for i := 0; i < n; i++ {
				dz := radau5T[st][0]*dW[0][i] + radau5T[st][1]*dW[1][i] + radau5T[st][2]*dW[2][i]
				Z[st][i] += dz
			}
		}
		la.ScalingVector(ws.sc, y0, y0, s.p.Atol, s.p.Rtol)
		flat := make(la.Vector, n)
		for i := 0; i < n; i++ {
			flat[i] = math.Sqrt((dW[0][i]*dW[0][i] + dW[1][i]*dW[1][i] + dW[2][i]*dW[2][i]) / 3.0)
		}
		normCur := la.RmsScaledNorm(flat, ws.sc)
		nit = k + 1

		if k > 0 && normPrev > 0 {
			theta := normCur / normPrev
			ws.newtonThetaLast = theta
			if theta >= 1.0 {
				return stepOutcome{newtonDiverged: true}
			}
			if normCur*theta/(1-theta) <= s.p.NewtonTolFactor {
				converged = true
				break
			}
		} else if normCur <= s.p.NewtonTolFactor {
			converged = true
			break
		}
		normPrev = normCur
	}
	if !converged {
		return stepOutcome{newtonDiverged: true}
	}

	y1 := la.NewVector(n)
	for i := 0; i < n; i++ {
		y1[i] = y0[i] + Z[2][i]
	}
	if hasNaNOrInf(y1) {
		return stepOutcome{numericalFailure: true}
	}

	// embedded error estimate: solve the real system once more against
	// the weighted stage derivatives (approximates radau5.f's ESTRAD).
	errRhs := make(la.Vector, n)
	for i := 0; i < n; i++ {
		errRhs[i] = radau5E1*F[0][i] + radau5E2*F[1][i] + radau5E3*F[2][i]
	}
	errVec, err := s.realSolver.Solve(errRhs)
	errNorm := 0.0
	if err == nil {
		ws.stats.Nlinsol++
		errNorm = la.RmsScaledNorm(errVec, ws.sc)
	}

	ws.stats.NitLast = nit
	if nit > ws.stats.Nitmax {
		ws.stats.Nitmax = nit
	}
	if ws.newtonThetaLast > s.p.JacRecomputeTheta {
		ws.jacCurrent = false
	}

	ws.radauZPrev = Z
	ws.radauHPrev = h

	out := stepOutcome{accepted: accepted(errNorm), errNorm: errNorm, y1: y1}
	if out.accepted && s.p.DenseOutput {
		out.denseFn = radau5DenseInterp(n, y0, Z, cs)
	}
	return out
}

// radau5DenseInterp builds the cubic collocation polynomial through
// (0,0), (c1,Z1), (c2,Z2), (c3,Z3) via Lagrange interpolation, returning
// y0 + P(theta) (spec section 4.7: "collocation dense output").
func radau5DenseInterp(n int, y0 la.Vector, Z [3]la.Vector, cs [3]float64) DenseInterp {
	nodes := [4]float64{0, cs[0], cs[1], cs[2]}
	return func(theta float64) la.Vector {
		out := make(la.Vector, n)
		vals := [4]float64{0, 0, 0, 0}
		for i := 0; i < n; i++ {
			vals[1], vals[2], vals[3] = Z[0][i], Z[1][i], Z[2][i]
			out[i] = y0[i] + lagrange4(nodes, vals, theta)
		}
		return out
	}
}

func lagrange4(nodes, vals [4]float64, x float64) float64 {
	sum := 0.0
	for i := 0; i < 4; i++ {
		term := vals[i]
		for j := 0; j < 4; j++ {
			if j == i {
				continue
			}
			term *= (x - nodes[j]) / (nodes[i] - nodes[j])
		}
		sum += term
	}
	return sum
}
