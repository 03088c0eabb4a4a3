package ode

// Method selects the stepping scheme.
type Method int

const (
	Rk2 Method = iota
	Rk3
	Heun3
	Rk4
	Rk4alt
	MdEuler
	Merson4
	Zonneveld4
	Fehlberg4
	DoPri5
	Verner6
	Fehlberg7
	DoPri8
	BwEuler
	Radau5
)

func (m Method) String() string {
	switch m {
	case Rk2:
		return "rk2"
	case Rk3:
		return "rk3"
	case Heun3:
		return "heun3"
	case Rk4:
		return "rk4"
	case Rk4alt:
		return "rk4alt"
	case MdEuler:
		return "mdeuler"
	case Merson4:
		return "merson4"
	case Zonneveld4:
		return "zonneveld4"
	case Fehlberg4:
		return "fehlberg4"
	case DoPri5:
		return "dopri5"
	case Verner6:
		return "verner6"
	case Fehlberg7:
		return "fehlberg7"
	case DoPri8:
		return "dopri8"
	case BwEuler:
		return "bweuler"
	case Radau5:
		return "radau5"
	default:
		return "unknown"
	}
}

// isImplicit reports whether m is one of the two implicit methods.
func (m Method) isImplicit() bool {
	return m == BwEuler || m == Radau5
}
