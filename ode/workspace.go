package ode

import "github.com/rkradau/ivp/la"

// workspace is the mutable per-solve state of spec section 3. Its
// lifetime is exactly one Solve call; steppers take it by exclusive
// reference and never retain it (spec section 9).
type workspace struct {
	n int

	x      float64
	y      la.Vector
	stages []la.Vector // k_1..k_s for the active explicit tableau
	sc     la.Vector   // scaling vector (spec 4.2)

	firstStep    bool
	lastRejected bool
	lastH        float64
	errPrev      float64 // err_{n-1}, for PI control
	errPrevPrev  float64 // err_{n-2}

	// FSAL carry-over
	fsalValid bool
	fsalStage la.Vector

	// Newton state (Backward Euler and Radau5)
	newtonThetaLast float64
	jacCurrent      bool
	factValid       bool

	// Radau5-specific extrapolation memory
	radauZPrev [3]la.Vector
	radauHPrev float64

	// stiffness detector counters
	stiffPositive   int
	stiffNegative   int
	stiffFlagged    bool // sticky: once raised, stays true for the solve
	stiffFlaggedStep int

	stats Stats
}

func newWorkspace(n int) *workspace {
	return &workspace{
		n:         n,
		y:         la.NewVector(n),
		sc:        la.NewVector(n),
		firstStep: true,
	}
}

func (w *workspace) allocStages(s int) {
	w.stages = make([]la.Vector, s)
	for i := range w.stages {
		w.stages[i] = la.NewVector(w.n)
	}
}
