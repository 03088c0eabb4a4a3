package ode

// Params holds the tolerances, step-size bounds, controller constants,
// Newton limits and feature flags controlling a solve. It is configured
// through setter methods, in a Config-object idiom, rather than public
// struct literals, so defaults stay centralized and documented.
type Params struct {
	Method Method

	Atol, Rtol float64

	HMin, HMax float64
	IniH       float64 // 0 means "let the driver estimate it"
	FixedH     float64 // >0 switches the stepper to fixed-step mode, disabling the adaptive controller

	Safety           float64
	ShrinkMin        float64
	GrowMax          float64
	ControllerAlpha  float64 // 0 means "derive from method order"
	ControllerBeta   float64

	NewtonMaxIter      int
	NewtonTolFactor    float64
	JacRecomputeTheta  float64 // theta_last threshold to force Jacobian recompute
	AllowSimpleNewton  bool

	StiffnessDetect bool
	DetectAfter     int
	ConfirmAfter    int
	StiffnessRatio  float64

	DenseOutput     bool
	StepOutput      bool

	Verbose bool
}

// NewParams returns a Params with sensible defaults for the given
// method.
func NewParams(method Method) *Params {
	p := &Params{
		Method:            method,
		Atol:              1e-6,
		Rtol:              1e-6,
		Safety:            0.9,
		ShrinkMin:         0.2,
		GrowMax:           10.0,
		NewtonMaxIter:     7,
		NewtonTolFactor:   0.03,
		JacRecomputeTheta: 1e-3,
		AllowSimpleNewton: true,
		DetectAfter:       40,
		ConfirmAfter:      5,
		StiffnessRatio:    0.976,
	}
	p.ControllerBeta = defaultBeta(method)
	return p
}

// defaultBeta returns beta=0.04 for DoPri5, 0 for every other explicit
// method, matching Hairer & Wanner's published PI-controller defaults.
func defaultBeta(m Method) float64 {
	if m == DoPri5 {
		return 0.04
	}
	return 0.0
}

// SetTols sets the absolute and relative tolerances. Both must be > 0
// (enforced as a Configuration error at NewSolver time).
func (p *Params) SetTols(atol, rtol float64) *Params {
	p.Atol, p.Rtol = atol, rtol
	return p
}

// SetStepBounds sets the minimum and maximum accepted step size.
func (p *Params) SetStepBounds(hMin, hMax float64) *Params {
	p.HMin, p.HMax = hMin, hMax
	return p
}

// SetIniH sets the initial step size explicitly, bypassing the
// driver's automatic estimate.
func (p *Params) SetIniH(h float64) *Params {
	p.IniH = h
	return p
}

// SetFixedH switches the stepper to fixed-step mode at step size h,
// disabling the adaptive controller entirely.
func (p *Params) SetFixedH(h float64) *Params {
	p.FixedH = h
	return p
}

// SetSafety overrides the controller safety factor (default 0.9).
func (p *Params) SetSafety(safety float64) *Params {
	p.Safety = safety
	return p
}

// SetLimits overrides the shrink/grow clamp (defaults 0.2 / 10.0).
func (p *Params) SetLimits(shrinkMin, growMax float64) *Params {
	p.ShrinkMin, p.GrowMax = shrinkMin, growMax
	return p
}

// SetControllerExponents overrides alpha/beta directly. Passing
// alpha=0 keeps the derived default (spec section 4.3).
func (p *Params) SetControllerExponents(alpha, beta float64) *Params {
	p.ControllerAlpha, p.ControllerBeta = alpha, beta
	return p
}

// SetNewton overrides the Newton iteration controls of spec section 3.
func (p *Params) SetNewton(maxIter int, tolFactor float64, allowSimple bool) *Params {
	p.NewtonMaxIter, p.NewtonTolFactor, p.AllowSimpleNewton = maxIter, tolFactor, allowSimple
	return p
}

// SetJacRecompute overrides the theta_last threshold past which Radau5
// recomputes the Jacobian even on an otherwise-accepted step (spec
// section 4.7, SPEC_FULL.md section 13(b)).
func (p *Params) SetJacRecompute(thetaMax float64) *Params {
	p.JacRecomputeTheta = thetaMax
	return p
}

// SetStiffnessDetection enables/disables the explicit-method stiffness
// detector and its confirmation/clearing counters (spec section 4.5).
func (p *Params) SetStiffnessDetection(enabled bool, detectAfter, confirmAfter int, ratio float64) *Params {
	p.StiffnessDetect, p.DetectAfter, p.ConfirmAfter, p.StiffnessRatio = enabled, detectAfter, confirmAfter, ratio
	return p
}

// SetDenseOutput enables per-step dense-output coefficient computation.
// The grid itself is configured on Output (spec section 3, 12).
func (p *Params) SetDenseOutput(enabled bool) *Params {
	p.DenseOutput = enabled
	return p
}

// SetStepOutput enables accepted-step recording on Output.
func (p *Params) SetStepOutput(enabled bool) *Params {
	p.StepOutput = enabled
	return p
}

// SetVerbose enables console tracing (see trace.go).
func (p *Params) SetVerbose(v bool) *Params {
	p.Verbose = v
	return p
}

// validate checks the configuration invariants of spec section 7.1 and
// returns a Configuration-kind Status on violation.
func (p *Params) validate(sys *System) error {
	if p.Atol <= 0 || p.Rtol <= 0 {
		return newStatus(KindConfiguration, "tolerances must be > 0, got atol=%g rtol=%g", p.Atol, p.Rtol)
	}
	if p.Method < Rk2 || p.Method > Radau5 {
		return newStatus(KindConfiguration, "unknown method %d", p.Method)
	}
	if p.Method == Radau5 && sys.HasJac && sys.Jac == nil {
		return newStatus(KindConfiguration, "system declares HasJac=true but Jac is nil")
	}
	if sys.HasMass() && !p.Method.isImplicit() {
		return newStatus(KindConfiguration, "mass matrix (DAE) requires an implicit method, got %s", p.Method)
	}
	if p.FixedH == 0 && p.Method != Radau5 && p.HMin > 0 && p.HMax > 0 && p.HMin > p.HMax {
		return newStatus(KindConfiguration, "hMin (%g) > hMax (%g)", p.HMin, p.HMax)
	}
	return nil
}
