package ode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rkradau/ivp/la"
)

func TestStiffnessDetectorConfirmsAfterThreshold(t *testing.T) {
	p := NewParams(DoPri5).SetStiffnessDetection(true, 0, 2, 0.9)
	tab := tableauFor(DoPri5)
	d := newStiffnessDetector(p, tab)

	ks := la.Vector{10, 0}
	ksm1 := la.Vector{0, 0}
	ys := la.Vector{0.01, 0}
	ysm1 := la.Vector{0, 0}

	d.observe(1, 1.0, ks, ksm1, ys, ysm1)
	assert.False(t, d.flagged)
	d.observe(2, 1.0, ks, ksm1, ys, ysm1)
	assert.True(t, d.flagged)
}

func TestStiffnessDetectorClearsAfterRecovery(t *testing.T) {
	p := NewParams(DoPri5).SetStiffnessDetection(true, 0, 1, 0.9)
	tab := tableauFor(DoPri5)
	d := newStiffnessDetector(p, tab)

	d.observe(1, 1.0, la.Vector{10, 0}, la.Vector{0, 0}, la.Vector{0.01, 0}, la.Vector{0, 0})
	assert.True(t, d.flagged)

	d.observe(2, 1.0, la.Vector{0.1, 0}, la.Vector{0, 0}, la.Vector{1, 0}, la.Vector{0, 0})
	assert.False(t, d.flagged)
}

func TestStiffnessDetectorDisabledNeverFlags(t *testing.T) {
	p := NewParams(DoPri5) // StiffnessDetect defaults false
	tab := tableauFor(DoPri5)
	d := newStiffnessDetector(p, tab)
	d.observe(1, 1.0, la.Vector{100, 0}, la.Vector{0, 0}, la.Vector{0.001, 0}, la.Vector{0, 0})
	assert.False(t, d.flagged)
}
