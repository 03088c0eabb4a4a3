package ode

import (
	"gonum.org/v1/gonum/floats"

	"github.com/rkradau/ivp/la"
)

// stiffnessDetector implements spec section 4.5: a dominant-eigenvalue
// proxy computed from the last two stage values of an explicit step,
// with hysteresis counters before the flag is raised or cleared. It
// only reports; it never changes integrator behavior.
type stiffnessDetector struct {
	enabled      bool
	detectAfter  int
	confirmAfter int
	ratio        float64
	limit        float64

	positive int
	negative int
	flagged  bool
}

func newStiffnessDetector(p *Params, t *tableau) *stiffnessDetector {
	return &stiffnessDetector{
		enabled:      p.StiffnessDetect && t.stabilityLimit > 0,
		detectAfter:  p.DetectAfter,
		confirmAfter: p.ConfirmAfter,
		ratio:        p.StiffnessRatio,
		limit:        t.stabilityLimit,
	}
}

// observe feeds in the last two stage derivatives and stage arguments
// of an accepted step and updates the stiffness flag. step is the
// 1-based accepted-step count.
func (d *stiffnessDetector) observe(step int, h float64, ks, ksm1, Ys, Ysm1 la.Vector) {
	if !d.enabled || step < d.detectAfter {
		return
	}
	num := diffNorm(ks, ksm1)
	den := diffNorm(Ys, Ysm1)
	if den == 0 {
		return
	}
	rhoEst := num / den
	if h*rhoEst > d.ratio*d.limit {
		d.positive++
		d.negative = 0
		if d.positive >= d.confirmAfter {
			d.flagged = true
		}
	} else {
		d.negative++
		d.positive = 0
		if d.negative >= d.confirmAfter {
			d.flagged = false
		}
	}
}

func diffNorm(a, b la.Vector) float64 {
	diff := make(la.Vector, len(a))
	floats.SubTo(diff, a, b)
	return diff.Norm()
}
