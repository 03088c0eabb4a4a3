package ode

import "math"

// controller is the step-size controller: a PI controller by default
// for explicit methods, and a Gustafsson predictive controller for
// Radau5, including the hysteresis freeze band Radau5 uses and the
// rejected-step fallback to a pure I-controller.
type controller struct {
	gustafsson bool

	safety    float64
	shrinkMin float64
	growMax   float64
	alpha     float64
	beta      float64
	order     int

	// hysteresis band around 1.0 that freezes h on an accepted step;
	// only used by the Gustafsson controller, matching Radau5's default.
	hysteresisLo, hysteresisHi float64
}

func newController(p *Params, t *tableau) *controller {
	c := &controller{
		safety:    p.Safety,
		shrinkMin: p.ShrinkMin,
		growMax:   p.GrowMax,
		beta:      p.ControllerBeta,
	}
	if p.Method == Radau5 {
		c.gustafsson = true
		c.order = 5
		c.hysteresisLo, c.hysteresisHi = 1.0, 1.2
	} else {
		c.order = t.effectiveOrder()
	}
	if p.ControllerAlpha != 0 {
		c.alpha = p.ControllerAlpha
	} else {
		c.alpha = 1.0/float64(c.order+1) - 0.75*c.beta
	}
	return c
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// next computes h_new given the current h, the step's error norm, the
// previous step's error norm (errPrev), whether the previous step was
// accepted, whether this step was accepted, and the h used on the
// previous accepted step (hPrev, needed by the Gustafsson predictive
// factor). It returns the new h and the errPrev to carry forward.
func (c *controller) next(h, err, errPrev float64, prevAccepted, thisAccepted bool, hPrev float64) (hNew, errPrevOut float64) {
	if !thisAccepted {
		var fac float64
		if c.gustafsson {
			// Radau5 rejection: a safer pure I-controller (spec 4.3),
			// not the PI formula used for the following accepted step.
			fac = c.safety * math.Pow(err, -1.0/float64(c.order))
		} else {
			fac = c.safety * math.Pow(err, -c.alpha)
		}
		fac = clamp(fac, c.shrinkMin, 1.0)
		return h * fac, 1.0
	}

	if err == 0 {
		// tie-break: maximum growth on a perfect step
		return h * c.growMax, 1.0
	}

	if c.gustafsson && prevAccepted {
		hRatio := 1.0
		if hPrev > 0 {
			hRatio = h / hPrev
		}
		fac := c.safety * math.Pow(err, -1.0/float64(c.order)) * math.Pow(errPrev/err, 1.0/float64(c.order)) * hRatio
		fac = clamp(fac, c.shrinkMin, c.growMax)
		if fac >= c.hysteresisLo && fac <= c.hysteresisHi {
			fac = 1.0
		}
		return h * fac, err
	}

	if c.gustafsson {
		// first accepted step after a rejection (or the very first
		// step): fall back to a safe pure I-controller.
		fac := c.safety * math.Pow(err, -1.0/float64(c.order))
		fac = clamp(fac, c.shrinkMin, c.growMax)
		return h * fac, err
	}

	// PI controller
	fac := c.safety * math.Pow(err, -c.alpha) * math.Pow(errPrev, c.beta)
	fac = clamp(fac, c.shrinkMin, c.growMax)
	return h * fac, err
}
