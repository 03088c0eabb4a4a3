package ode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestButcherRowSumsMatchC(t *testing.T) {
	methods := []Method{Rk2, Rk3, Heun3, Rk4, Rk4alt, MdEuler, Merson4, Zonneveld4, Fehlberg4, DoPri5, Verner6, Fehlberg7, DoPri8}
	for _, m := range methods {
		tab := tableauFor(m)
		assert.Truef(t, rowSumsMatchC(tab), "%s: row sums do not match c", m)
	}
}

func TestWeightsSumToOne(t *testing.T) {
	methods := []Method{Rk2, Rk3, Heun3, Rk4, Rk4alt, MdEuler, Merson4, Zonneveld4, Fehlberg4, DoPri5, Verner6, Fehlberg7, DoPri8}
	for _, m := range methods {
		tab := tableauFor(m)
		sum := 0.0
		for _, bi := range tab.b {
			sum += bi
		}
		assert.InDeltaf(t, 1.0, sum, 1e-9, "%s: b weights do not sum to 1", m)
	}
}

func TestMethodStringRoundTrip(t *testing.T) {
	assert.Equal(t, "dopri5", DoPri5.String())
	assert.Equal(t, "radau5", Radau5.String())
	assert.True(t, Radau5.isImplicit())
	assert.False(t, DoPri5.isImplicit())
}
