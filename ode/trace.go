package ode

import "fmt"

// trace prints a single opt-in diagnostic line, in the spirit of the
// teacher's io.Pf/chk.PrintTitle helpers: silent unless the caller asked
// for it via Params.Verbose, stdlib fmt underneath, never a structured
// logging framework (see SPEC_FULL.md section 10).
func (p *Params) trace(format string, args ...interface{}) {
	if p == nil || !p.Verbose {
		return
	}
	fmt.Printf(format, args...)
}
