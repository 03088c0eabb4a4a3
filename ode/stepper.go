package ode

import "github.com/rkradau/ivp/la"

// stepOutcome is the common result shape every stepper reports to the
// driver (spec section 2's data-flow: "stepper produces a new (x, y),
// error estimate, and dense-output coefficients"). The driver alone
// decides accept/reject bookkeeping, retries, and terminal errors, so
// every stepper implementation stays a small, retryable value type
// constructed fresh per solve (spec section 9).
type stepOutcome struct {
	accepted bool
	errNorm  float64 // 0 when the method has no embedded estimate (BwEuler, methods without bhat)
	y1       la.Vector
	denseFn  DenseInterp

	callbackFailed     bool
	newtonDiverged     bool
	linearSolverFailed bool
	numericalFailure   bool

	// inputs to the stiffness detector; zero-valued when not applicable
	stiffKs, stiffKsm1, stiffYs, stiffYsm1 la.Vector
}

// stepper is the contract every concrete stepper (explicit RK, Backward
// Euler, Radau5) satisfies.
type stepper interface {
	// step attempts one trial step of size h from the driver-owned
	// workspace's current (x, y), without mutating ws.x/ws.y itself --
	// the driver commits the outcome only on acceptance.
	step(h float64) stepOutcome
}

func hasNaNOrInf(y la.Vector) bool {
	for _, v := range y {
		if v != v || v > maxFinite || v < -maxFinite {
			return true
		}
	}
	return false
}

const maxFinite = 1.0e300
