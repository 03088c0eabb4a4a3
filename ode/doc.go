// Package ode solves initial-value problems for ordinary differential
// equations and index-1 differential-algebraic equations
//
//	M*y'(x) = f(x, y(x)),  y(x0) = y0
//
// where M is an optional constant mass matrix (identity when absent).
// It offers a family of explicit Runge-Kutta methods for non-stiff
// problems and an implicit Radau-IIA method of order 5 (Radau5) with
// simplified Newton iteration for stiff problems and DAEs.
package ode
