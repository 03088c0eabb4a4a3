package ode

import "github.com/rkradau/ivp/la"

// errorNorm computes the scaled RMS error norm given y_n, y_{n+1} and
// the embedded estimate yhat, using
// sc_i = atol + rtol*max(|y_n,i|, |y_{n+1,i}|).
func errorNorm(yn, y1, yhat la.Vector, atol, rtol float64, sc la.Vector) float64 {
	la.ScalingVector(sc, yn, y1, atol, rtol)
	diff := make(la.Vector, len(y1))
	for i := range diff {
		diff[i] = y1[i] - yhat[i]
	}
	return la.RmsScaledNorm(diff, sc)
}

// accepted reports whether an error norm is within the tolerance band:
// err <= 1, with a small slack for floating-point round-off.
func accepted(err float64) bool {
	return err <= 1.0+1e-12
}
