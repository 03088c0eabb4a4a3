package ode

import "time"

// Stats holds the monotone counters of spec section 3, reset at the
// start of every Solve call. Field names match the teacher's own test
// suite (t_ode_test.go, t_radau5_test.go) verbatim, since they are a
// tested public contract.
type Stats struct {
	Nfeval    int // function evaluations
	Njeval    int // Jacobian evaluations
	Ndecomp   int // factorizations
	Nlinsol   int // linear solves
	Nsteps    int // steps attempted
	Naccepted int // steps accepted
	Nrejected int // steps rejected
	Nitmax    int // max Newton iterations seen over the whole solve
	NitLast   int // Newton iterations of the last step
	HSuggest  float64

	// StiffFlagged reports whether the stiffness detector (section 4.5)
	// ever raised its flag during the solve; StiffFlaggedStep is the
	// 1-based accepted-step count at which it first did, 0 if never.
	StiffFlagged     bool
	StiffFlaggedStep int

	// PhaseWallMax holds, per named phase ("jacobian", "linsolve", ...),
	// the longest single call observed during the solve.
	PhaseWallMax map[string]time.Duration

	wallStart time.Time
	WallTotal time.Duration
}

func (s *Stats) reset() {
	*s = Stats{PhaseWallMax: make(map[string]time.Duration)}
	s.wallStart = time.Now()
}

func (s *Stats) finish() {
	s.WallTotal = time.Since(s.wallStart)
}

// trackPhase records one call's duration against phase, keeping the
// running maximum (spec section 3: "per-phase wall-clock maxima").
func (s *Stats) trackPhase(phase string, start time.Time) {
	d := time.Since(start)
	if d > s.PhaseWallMax[phase] {
		s.PhaseWallMax[phase] = d
	}
}
