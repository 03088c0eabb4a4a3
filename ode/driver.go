package ode

import (
	"math"

	"github.com/rkradau/ivp/la"
)

// maxRetries bounds the number of times the driver halves h in
// response to a callback failure, Newton divergence, or linear-solver
// failure before surfacing the corresponding terminal Status. A
// pathological callback failing "twice in a row at the minimum step"
// is treated as a bounded retry budget so it cannot spin forever at a
// single x.
const maxRetries = 8

// Solver drives the adaptive (or fixed-step) integration loop, owning
// the per-solve workspace, stepper, step-size controller and
// stiffness detector.
type Solver struct {
	sys   *System
	p     *Params
	stats Stats
}

// NewSolver validates the configuration and returns a reusable Solver.
// The same Solver can run multiple Solve calls; each call gets a fresh
// workspace.
func NewSolver(p *Params, sys *System) (*Solver, error) {
	if err := p.validate(sys); err != nil {
		return nil, err
	}
	return &Solver{sys: sys, p: p}, nil
}

// Stats returns the counters of the most recently completed Solve call.
func (s *Solver) Stats() Stats { return s.stats }

// Free releases the Solver's last-run state. Go's garbage collector
// does the real work; this exists as an explicit lifecycle call for
// callers used to releasing solver resources between runs.
func (s *Solver) Free() { s.stats = Stats{} }

// solverRun is the mutable state of one Solve call -- everything
// driver.go needs beyond the shared workspace.
type solverRun struct {
	ws       *workspace
	stepper  stepper
	ctl      *controller
	stiffDet *stiffnessDetector

	forward    bool
	nextGridX  float64
	prevAccept bool
	istep      int
}

// Solve integrates y from x0 to x1 in place, recording into output
// (which may be nil). The Stats of this run are retrieved afterwards
// via Stats().
func (s *Solver) Solve(y la.Vector, x0, x1 float64, h0 float64, output *Output, args interface{}) error {
	n := s.sys.N
	ws := newWorkspace(n)
	ws.stats.reset()
	ws.x = x0
	copy(ws.y, y)

	if output == nil {
		output = NewOutput()
	}
	if s.p.StepOutput && !output.stepEnabled {
		output.EnableStepOut(nil)
	}
	output.initDense(n)
	output.x1 = x1

	run := &solverRun{ws: ws, forward: x1 >= x0}

	var st stepper
	var ctl *controller
	var sd *stiffnessDetector
	switch {
	case s.p.Method == Radau5:
		st = newRadau5Stepper(s.sys, s.p, ws, args)
		ctl = newController(s.p, &tableau{order: 5})
	case s.p.Method == BwEuler:
		st = newBwEulerStepper(s.sys, s.p, ws, args)
		ctl = newController(s.p, &tableau{order: 1})
	default:
		t := tableauFor(s.p.Method)
		st = newExplicitStepper(s.sys, s.p, ws, args)
		ctl = newController(s.p, t)
		sd = newStiffnessDetector(s.p, t)
	}
	run.stepper = st
	run.ctl = ctl
	run.stiffDet = sd
	run.nextGridX = x0

	finalize := func() {
		ws.stats.StiffFlagged = ws.stiffFlagged
		ws.stats.StiffFlaggedStep = ws.stiffFlaggedStep
		ws.stats.finish()
		s.stats = ws.stats
	}

	h, err := s.initialStep(ws, x0, y, x1, h0, args)
	if err != nil {
		finalize()
		return err
	}

	output.recordStep(0, x0, ws.y, 0)

	retries := 0
	errPrev := 1.0
	for (run.forward && ws.x < x1-1e-13) || (!run.forward && ws.x > x1+1e-13) {
		if run.forward && ws.x+h > x1 {
			h = x1 - ws.x
		} else if !run.forward && ws.x+h < x1 {
			h = x1 - ws.x
		}
		if h == 0 {
			break
		}

		ws.stats.Nsteps++
		out := run.stepper.step(h)

		if out.callbackFailed || out.newtonDiverged || out.linearSolverFailed {
			retries++
			kind := KindCallback
			switch {
			case out.newtonDiverged:
				kind = KindNewtonDivergence
			case out.linearSolverFailed:
				kind = KindLinearSolver
			}
			if retries > maxRetries || math.Abs(h) <= s.p.HMin {
				finalize()
				return newStatus(kind, "failed at x=%g with h=%g after %d retries", ws.x, h, retries)
			}
			h *= 0.5
			s.p.trace("ode: retry at x=%g, shrinking h to %g (%s)\n", ws.x, h, kind)
			continue
		}
		if out.numericalFailure {
			finalize()
			return newStatus(KindNumericalFailure, "NaN/Inf detected at x=%g", ws.x)
		}
		retries = 0

		if s.p.FixedH > 0 {
			out.accepted = true
		}

		if !out.accepted {
			ws.stats.Nrejected++
			hNew, ep := ctl.next(h, out.errNorm, errPrev, run.prevAccept, false, ws.lastH)
			errPrev = ep
			h = hNew
			if math.Abs(h) < s.p.HMin && s.p.HMin > 0 {
				finalize()
				return newStatus(KindStepUnderflow, "step size underflowed to %g at x=%g", h, ws.x)
			}
			run.prevAccept = false
			s.p.trace("ode: rejected step at x=%g err=%g, new h=%g\n", ws.x, out.errNorm, h)
			continue
		}

		ws.stats.Naccepted++
		run.istep++
		x0step := ws.x
		y0step := ws.y
		ws.x += h
		ws.y = out.y1
		ws.firstStep = false

		if run.stiffDet != nil && out.stiffKs != nil {
			run.stiffDet.observe(run.istep, h, out.stiffKs, out.stiffKsm1, out.stiffYs, out.stiffYsm1)
			if run.stiffDet.flagged && !ws.stiffFlagged {
				ws.stiffFlaggedStep = run.istep
			}
			ws.stiffFlagged = ws.stiffFlagged || run.stiffDet.flagged
		}

		output.recordStep(run.istep, ws.x, ws.y, h)
		if output.denseEnabled && out.denseFn != nil {
			stop := false
			run.nextGridX, stop = output.recordDense(run.istep, x0step, h, y0step, out.denseFn, run.nextGridX, x1, run.forward)
			if stop {
				break
			}
		}

		hPrevStep := ws.lastH
		ws.lastH = h
		if s.p.FixedH > 0 {
			h = s.p.FixedH
			run.prevAccept = true
			continue
		}
		if s.p.Method == BwEuler {
			// no embedded estimate to drive a controller: hold h fixed,
			// the user steers it via SetIniH/SetFixedH instead.
			run.prevAccept = true
			continue
		}
		hNew, ep := ctl.next(h, out.errNorm, errPrev, run.prevAccept, true, hPrevStep)
		errPrev = ep
		h = hNew
		if s.p.HMax > 0 && math.Abs(h) > s.p.HMax {
			if h < 0 {
				h = -s.p.HMax
			} else {
				h = s.p.HMax
			}
		}
		run.prevAccept = true
	}

	copy(y, ws.y)
	ws.stats.HSuggest = h
	finalize()
	return nil
}

// initialStep picks h0: the user's explicit IniH or FixedH wins
// outright; otherwise a one-evaluation estimate, 0.01*||y||/||f(x0,y0)||
// in the tolerance-scaled norm, bounded by |x1-x0| and the step limits.
func (s *Solver) initialStep(ws *workspace, x0 float64, y la.Vector, x1, h0 float64, args interface{}) (float64, error) {
	if s.p.FixedH > 0 {
		return withSign(s.p.FixedH, x1 >= x0), nil
	}
	if s.p.IniH > 0 {
		return withSign(s.p.IniH, x1 >= x0), nil
	}
	if h0 > 0 {
		return withSign(h0, x1 >= x0), nil
	}

	n := s.sys.N
	f0 := la.NewVector(n)
	if !s.sys.Fcn(f0, x0, y, args) {
		return 0, newStatus(KindCallback, "initial evaluation failed at x=%g", x0)
	}
	ws.stats.Nfeval++

	sc := la.NewVector(n)
	la.ScalingVector(sc, y, y, s.p.Atol, s.p.Rtol)
	d0 := la.RmsScaledNorm(y, sc)
	d1 := la.RmsScaledNorm(f0, sc)

	var hEst float64
	if d0 < 1e-5 || d1 < 1e-5 {
		hEst = 1e-6
	} else {
		hEst = 0.01 * d0 / d1
	}
	hEst = math.Min(hEst, math.Abs(x1-x0))
	if s.p.HMax > 0 {
		hEst = math.Min(hEst, s.p.HMax)
	}
	if s.p.HMin > 0 {
		hEst = math.Max(hEst, s.p.HMin)
	}
	return withSign(hEst, x1 >= x0), nil
}

func withSign(h float64, forward bool) float64 {
	h = math.Abs(h)
	if !forward {
		return -h
	}
	return h
}
