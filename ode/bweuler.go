package ode

import "github.com/rkradau/ivp/la"

// bwEulerStepper is a single-stage implicit step with no embedded error
// estimate, driven by newtonBwEuler. Every converged step is reported
// as accepted with errNorm 0; the driver does not run the step-size
// controller for this method and keeps h unchanged between steps.
type bwEulerStepper struct {
	sys    *System
	p      *Params
	ws     *workspace
	args   interface{}
	newton *newtonBwEuler

	lastH float64
}

func newBwEulerStepper(sys *System, p *Params, ws *workspace, args interface{}) *bwEulerStepper {
	return &bwEulerStepper{
		sys:    sys,
		p:      p,
		ws:     ws,
		args:   args,
		newton: newNewtonBwEuler(sys, p, ws, args),
	}
}

func (s *bwEulerStepper) step(h float64) stepOutcome {
	ws := s.ws
	if ws.factValid && h != s.lastH {
		ws.jacCurrent = false
	}
	x0, y0 := ws.x, ws.y

	y1, nit, diverged, linFailed, cbFailed := s.newton.solve(x0, y0, h)
	s.lastH = h

	if cbFailed {
		return stepOutcome{callbackFailed: true}
	}
	if linFailed {
		ws.jacCurrent = false
		return stepOutcome{linearSolverFailed: true}
	}
	if diverged {
		ws.jacCurrent = false
		return stepOutcome{newtonDiverged: true}
	}
	if hasNaNOrInf(y1) {
		return stepOutcome{numericalFailure: true}
	}

	ws.stats.NitLast = nit
	if nit > ws.stats.Nitmax {
		ws.stats.Nitmax = nit
	}
	if ws.newtonThetaLast > s.p.JacRecomputeTheta {
		ws.jacCurrent = false
	}

	out := stepOutcome{accepted: true, errNorm: 0, y1: y1}
	if s.p.DenseOutput {
		n := len(y0)
		out.denseFn = func(theta float64) la.Vector {
			yi := make(la.Vector, n)
			for i := 0; i < n; i++ {
				yi[i] = y0[i] + theta*(y1[i]-y0[i])
			}
			return yi
		}
	}
	return out
}
