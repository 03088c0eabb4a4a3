package ode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControllerShrinksOnRejectedStep(t *testing.T) {
	p := NewParams(DoPri5)
	tab := tableauFor(DoPri5)
	c := newController(p, tab)

	hNew, errPrev := c.next(1.0, 4.0, 1.0, true, false, 1.0)
	assert.Less(t, hNew, 1.0)
	assert.Equal(t, 1.0, errPrev)
}

func TestControllerGrowsOnGoodStep(t *testing.T) {
	p := NewParams(DoPri5)
	tab := tableauFor(DoPri5)
	c := newController(p, tab)

	hNew, _ := c.next(1.0, 0.1, 1.0, true, true, 1.0)
	assert.Greater(t, hNew, 1.0)
}

func TestGustafssonHysteresisFreezesNearOne(t *testing.T) {
	p := NewParams(Radau5)
	c := newController(p, nil)
	// err = safety^order makes the raw Gustafsson factor land exactly at
	// 1.0 (safety * err^(-1/order) = safety * (1/safety) = 1), inside the
	// [1.0, 1.2] freeze band, so h should come back completely unchanged.
	err := 1.0
	for i := 0; i < c.order; i++ {
		err *= p.Safety
	}
	// hPrev = 1.0 keeps h/hPrev == 1 so the freeze-band assertion below
	// still isolates the err/errPrev factor.
	hNew, _ := c.next(1.0, err, err, true, true, 1.0)
	assert.InDelta(t, 1.0, hNew, 1e-9)
}
