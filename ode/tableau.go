package ode

import "math"

// tableau is the Butcher tableau of spec section 4.1 for one explicit
// method: stage count, lower-triangular A, solution weights b, embedded
// weights bhat (nil if the method has none), classical/embedded order,
// and the FSAL flag.
type tableau struct {
	stages   int
	a        [][]float64
	b        []float64
	bhat     []float64
	c        []float64
	order    int
	embOrder int
	fsal     bool

	// stabilityLimit is the explicit-stability boundary used by the
	// stiffness detector (spec section 4.5); 0 disables detection for
	// methods the detector was never calibrated against.
	stabilityLimit float64
}

func (t *tableau) effectiveOrder() int {
	if t.embOrder > 0 && t.embOrder < t.order {
		return t.embOrder
	}
	return t.order
}

// tableauFor returns the tableau for an explicit method. BwEuler and
// Radau5 are implicit and have their own steppers (bweuler.go, radau5.go).
func tableauFor(m Method) *tableau {
	switch m {
	case Rk2:
		return rk2Tableau()
	case Rk3:
		return rk3Tableau()
	case Heun3:
		return heun3Tableau()
	case Rk4:
		return rk4Tableau()
	case Rk4alt:
		return rk4altTableau()
	case MdEuler:
		return mdEulerTableau()
	case Merson4:
		return merson4Tableau()
	case Zonneveld4:
		return zonneveld4Tableau()
	case Fehlberg4:
		return fehlberg4Tableau()
	case DoPri5:
		return dopri5Tableau()
	case Verner6:
		return verner6Tableau()
	case Fehlberg7:
		return fehlberg7Tableau()
	case DoPri8:
		return dopri8Tableau()
	default:
		return nil
	}
}

func rk2Tableau() *tableau {
	return &tableau{
		stages: 2,
		a: [][]float64{
			{0, 0},
			{1, 0},
		},
		b:              []float64{0.5, 0.5},
		c:              []float64{0, 1},
		order:          2,
		stabilityLimit: 2.0,
	}
}

func rk3Tableau() *tableau {
	return &tableau{
		stages: 3,
		a: [][]float64{
			{0, 0, 0},
			{0.5, 0, 0},
			{-1, 2, 0},
		},
		b:              []float64{1.0 / 6.0, 2.0 / 3.0, 1.0 / 6.0},
		c:              []float64{0, 0.5, 1},
		order:          3,
		stabilityLimit: 2.5,
	}
}

func heun3Tableau() *tableau {
	return &tableau{
		stages: 3,
		a: [][]float64{
			{0, 0, 0},
			{1.0 / 3.0, 0, 0},
			{0, 2.0 / 3.0, 0},
		},
		b:              []float64{0.25, 0, 0.75},
		c:              []float64{0, 1.0 / 3.0, 2.0 / 3.0},
		order:          3,
		stabilityLimit: 2.5,
	}
}

func rk4Tableau() *tableau {
	return &tableau{
		stages: 4,
		a: [][]float64{
			{0, 0, 0, 0},
			{0.5, 0, 0, 0},
			{0, 0.5, 0, 0},
			{0, 0, 1, 0},
		},
		b:              []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
		c:              []float64{0, 0.5, 0.5, 1},
		order:          4,
		stabilityLimit: 2.8,
	}
}

func rk4altTableau() *tableau {
	return &tableau{
		stages: 4,
		a: [][]float64{
			{0, 0, 0, 0},
			{1.0 / 3.0, 0, 0, 0},
			{-1.0 / 3.0, 1, 0, 0},
			{1, -1, 1, 0},
		},
		b:              []float64{1.0 / 8.0, 3.0 / 8.0, 3.0 / 8.0, 1.0 / 8.0},
		c:              []float64{0, 1.0 / 3.0, 2.0 / 3.0, 1},
		order:          4,
		stabilityLimit: 2.8,
	}
}

// mdEulerTableau pairs the explicit midpoint rule (order 2) with the
// forward-Euler solution (order 1) as its embedded estimate, giving a
// cheap 2(1) error-controlled pair.
func mdEulerTableau() *tableau {
	return &tableau{
		stages: 2,
		a: [][]float64{
			{0, 0},
			{0.5, 0},
		},
		b:              []float64{0, 1},
		bhat:           []float64{1, 0},
		c:              []float64{0, 0.5},
		order:          2,
		embOrder:       1,
		stabilityLimit: 2.0,
	}
}

// merson4Tableau is Merson's "Kutta-Merson" 4(3) embedded pair (the
// embedded solution reaches order 5 only on linear problems).
func merson4Tableau() *tableau {
	return &tableau{
		stages: 5,
		a: [][]float64{
			{0, 0, 0, 0, 0},
			{1.0 / 3.0, 0, 0, 0, 0},
			{1.0 / 6.0, 1.0 / 6.0, 0, 0, 0},
			{1.0 / 8.0, 0, 3.0 / 8.0, 0, 0},
			{0.5, 0, -1.5, 2, 0},
		},
		b:              []float64{1.0 / 6.0, 0, 0, 2.0 / 3.0, 1.0 / 6.0},
		bhat:           []float64{0.1, 0, 0.3, 0.4, 0.2},
		c:              []float64{0, 1.0 / 3.0, 1.0 / 3.0, 0.5, 1},
		order:          4,
		embOrder:       3,
		stabilityLimit: 3.0,
	}
}

// zonneveld4Tableau is Zonneveld's 4(3) embedded pair.
func zonneveld4Tableau() *tableau {
	return &tableau{
		stages: 5,
		a: [][]float64{
			{0, 0, 0, 0, 0},
			{0.5, 0, 0, 0, 0},
			{0, 0.5, 0, 0, 0},
			{0, 0, 1, 0, 0},
			{5.0 / 32.0, 7.0 / 32.0, 13.0 / 32.0, -1.0 / 32.0, 0},
		},
		b:              []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0, 0},
		bhat:           []float64{-0.5, 7.0 / 3.0, 7.0 / 3.0, 13.0 / 6.0, -16.0 / 3.0},
		c:              []float64{0, 0.5, 0.5, 1, 0.75},
		order:          4,
		embOrder:       3,
		stabilityLimit: 3.0,
	}
}

// fehlberg4Tableau is the classical Fehlberg 4(5) pair (Table III,
// Fehlberg 1969), the same coefficients soypat/godesim's RKF45Solver
// uses.
func fehlberg4Tableau() *tableau {
	return &tableau{
		stages: 6,
		a: [][]float64{
			{0, 0, 0, 0, 0, 0},
			{0.25, 0, 0, 0, 0, 0},
			{3.0 / 32.0, 9.0 / 32.0, 0, 0, 0, 0},
			{1932.0 / 2197.0, -7200.0 / 2197.0, 7296.0 / 2197.0, 0, 0, 0},
			{439.0 / 216.0, -8, 3680.0 / 513.0, -845.0 / 4104.0, 0, 0},
			{-8.0 / 27.0, 2, -3544.0 / 2565.0, 1859.0 / 4104.0, -11.0 / 40.0, 0},
		},
		b:              []float64{25.0 / 216.0, 0, 1408.0 / 2565.0, 2197.0 / 4104.0, -1.0 / 5.0, 0},
		bhat:           []float64{16.0 / 135.0, 0, 6656.0 / 12825.0, 28561.0 / 56430.0, -9.0 / 50.0, 2.0 / 55.0},
		c:              []float64{0, 0.25, 3.0 / 8.0, 12.0 / 13.0, 1, 0.5},
		order:          4,
		embOrder:       5,
		stabilityLimit: 3.0,
	}
}

// dopri5Tableau is Dormand & Prince's 5(4) FSAL pair.
func dopri5Tableau() *tableau {
	return &tableau{
		stages: 7,
		a: [][]float64{
			{0, 0, 0, 0, 0, 0, 0},
			{1.0 / 5.0, 0, 0, 0, 0, 0, 0},
			{3.0 / 40.0, 9.0 / 40.0, 0, 0, 0, 0, 0},
			{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0, 0, 0, 0, 0},
			{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0, 0, 0, 0},
			{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0, 0, 0},
			{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0},
		},
		b:              []float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0},
		bhat:           []float64{5179.0 / 57600.0, 0, 7571.0 / 16695.0, 393.0 / 640.0, -92097.0 / 339200.0, 187.0 / 2100.0, 1.0 / 40.0},
		c:              []float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1},
		order:          5,
		embOrder:       4,
		fsal:           true,
		stabilityLimit: 3.3,
	}
}

// verner6Tableau is Verner's 6(5) pair (8 stages).
func verner6Tableau() *tableau {
	return &tableau{
		stages: 8,
		a: [][]float64{
			{0, 0, 0, 0, 0, 0, 0, 0},
			{1.0 / 6.0, 0, 0, 0, 0, 0, 0, 0},
			{4.0 / 75.0, 16.0 / 75.0, 0, 0, 0, 0, 0, 0},
			{5.0 / 6.0, -8.0 / 3.0, 5.0 / 2.0, 0, 0, 0, 0, 0},
			{-165.0 / 64.0, 55.0 / 6.0, -425.0 / 64.0, 85.0 / 96.0, 0, 0, 0, 0},
			{12.0 / 5.0, -8.0, 4015.0 / 612.0, -11.0 / 36.0, 88.0 / 255.0, 0, 0, 0},
			{-8263.0 / 15000.0, 124.0 / 75.0, -643.0 / 680.0, -81.0 / 250.0, 2484.0 / 10625.0, 0, 0, 0},
			{3501.0 / 1720.0, -300.0 / 43.0, 297275.0 / 52632.0, -319.0 / 2322.0, 24068.0 / 84065.0, 0, 3850.0 / 26703.0, 0},
		},
		b:              []float64{3.0 / 40.0, 0, 875.0 / 2244.0, 23.0 / 72.0, 264.0 / 1955.0, 0, 125.0 / 11592.0, 43.0 / 616.0},
		bhat:           []float64{13.0 / 160.0, 0, 2375.0 / 5984.0, 5.0 / 16.0, 12.0 / 85.0, 3.0 / 44.0, 0, 0},
		c:              []float64{0, 1.0 / 6.0, 4.0 / 15.0, 2.0 / 3.0, 5.0 / 6.0, 1, 1.0 / 15.0, 1},
		order:          6,
		embOrder:       5,
		stabilityLimit: 3.9,
	}
}

// fehlberg7Tableau is the 13-stage Fehlberg 7(8) pair; coefficients as
// in soypat/godesim's RKF78Solver, which traces to Fehlberg (1968)
// "Classical Fifth, Sixth, Seventh and Eighth Order Runge-Kutta Formulas
// with Stepsize Control", Table X.
func fehlberg7Tableau() *tableau {
	c := []float64{0, 2.0 / 27.0, 1.0 / 9.0, 1.0 / 6.0, 5.0 / 12.0, 0.5, 5.0 / 6.0, 1.0 / 6.0, 2.0 / 3.0, 1.0 / 3.0, 1, 0, 1}
	a := make([][]float64, 13)
	for i := range a {
		a[i] = make([]float64, 13)
	}
	a[1][0] = 2.0 / 27.0
	a[2][0], a[2][1] = 1.0/36.0, 1.0/12.0
	a[3][0], a[3][2] = 1.0/24.0, 1.0/8.0
	a[4][0], a[4][2], a[4][3] = 5.0/12.0, -25.0/16.0, 25.0/16.0
	a[5][0], a[5][3], a[5][4] = 1.0/20.0, 1.0/4.0, 1.0/5.0
	a[6][0], a[6][3], a[6][4], a[6][5] = -25.0/108.0, 125.0/108.0, -65.0/27.0, 125.0/54.0
	a[7][0], a[7][4], a[7][5], a[7][6] = 31.0/300.0, 61.0/225.0, -2.0/9.0, 13.0/900.0
	a[8][0], a[8][3], a[8][4], a[8][5], a[8][6], a[8][7] = 2, -53.0/6.0, 704.0/45.0, -107.0/9.0, 67.0/90.0, 3
	a[9][0], a[9][3], a[9][4], a[9][5], a[9][6], a[9][7], a[9][8] = -91.0/108.0, 23.0/108.0, -976.0/135.0, 311.0/54.0, -19.0/60.0, 17.0/6.0, -1.0/12.0
	a[10][0], a[10][3], a[10][4], a[10][5], a[10][6], a[10][7], a[10][8], a[10][9] = 2383.0/4100.0, -341.0/164.0, 4496.0/1025.0, -301.0/82.0, 2133.0/4100.0, 45.0/82.0, 45.0/164.0, 18.0/41.0
	a[11][0], a[11][5], a[11][6], a[11][7], a[11][8], a[11][9] = 3.0/205.0, -6.0/41.0, -3.0/205.0, -3.0/41.0, 3.0/41.0, 6.0/41.0
	a[12][0], a[12][3], a[12][4], a[12][5], a[12][6], a[12][7], a[12][8], a[12][9], a[12][11] = -1777.0/4100.0, -341.0/164.0, 4496.0/1025.0, -289.0/82.0, 2193.0/4100.0, 51.0/82.0, 33.0/164.0, 12.0/41.0, 1
	b := make([]float64, 13)
	b[0], b[5], b[6], b[7], b[8], b[9], b[10], b[11], b[12] = 41.0/840.0, 34.0/105.0, 9.0/35.0, 9.0/35.0, 9.0/280.0, 9.0/280.0, 41.0/840.0, 0, 0
	bhat := make([]float64, 13)
	bhat[5], bhat[6], bhat[7], bhat[8], bhat[9], bhat[10], bhat[11], bhat[12] = 34.0/105.0, 9.0/35.0, 9.0/35.0, 9.0/280.0, 9.0/280.0, 0, 41.0/840.0, 41.0/840.0
	return &tableau{
		stages:         13,
		a:              a,
		b:              b,
		bhat:           bhat,
		c:              c,
		order:          7,
		embOrder:       8,
		stabilityLimit: 4.6,
	}
}

// dopri8Tableau is Prince & Dormand's own 8(7)13M pair ("High order
// embedded Runge-Kutta formulae", J. Comp. Appl. Math 7:67-75, 1981),
// the same 13-stage coefficients GSL's rk8pd.c uses -- a distinct
// tableau from fehlberg7Tableau's Fehlberg (1968) 7(8) pair, not a
// relabeling of it.
func dopri8Tableau() *tableau {
	c := []float64{
		0,
		1.0 / 18.0,
		1.0 / 12.0,
		1.0 / 8.0,
		5.0 / 16.0,
		3.0 / 8.0,
		59.0 / 400.0,
		93.0 / 200.0,
		5490023248.0 / 9719169821.0,
		13.0 / 20.0,
		1201146811.0 / 1299019798.0,
		1,
		1,
	}
	a := make([][]float64, 13)
	for i := range a {
		a[i] = make([]float64, 13)
	}
	a[1][0] = 1.0 / 18.0

	a[2][0], a[2][1] = 1.0/48.0, 1.0/16.0

	a[3][0], a[3][2] = 1.0/32.0, 3.0/32.0

	a[4][0], a[4][2], a[4][3] = 5.0/16.0, -75.0/64.0, 75.0/64.0

	a[5][0], a[5][3], a[5][4] = 3.0/80.0, 3.0/16.0, 3.0/20.0

	a[6][0], a[6][3], a[6][4], a[6][5] =
		29443841.0/614563906.0, 77736538.0/692538347.0, -28693883.0/1125000000.0, 23124283.0/1800000000.0

	a[7][0], a[7][3], a[7][4], a[7][5], a[7][6] =
		16016141.0/946692911.0, 61564180.0/158732637.0, 22789713.0/633445777.0, 545815736.0/2771057229.0, -180193667.0/1043307555.0

	a[8][0], a[8][3], a[8][4], a[8][5], a[8][6], a[8][7] =
		39632708.0/573591083.0, -433636366.0/683701615.0, -421739975.0/2616292301.0, 100302831.0/723423059.0, 790204164.0/839813087.0, 800635310.0/3783071287.0

	a[9][0], a[9][3], a[9][4], a[9][5], a[9][6], a[9][7], a[9][8] =
		246121993.0/1340847787.0, -37695042795.0/15268766246.0, -309121744.0/1061227803.0, -12992083.0/490766935.0, 6005943493.0/2108947869.0, 393006217.0/1396673457.0, 123872331.0/1001029789.0

	a[10][0], a[10][3], a[10][4], a[10][5], a[10][6], a[10][7], a[10][8], a[10][9] =
		-1028468189.0/846180014.0, 8478235783.0/508512852.0, 1311729495.0/1432422823.0, -10304129995.0/1701304382.0, -48777925059.0/3047939560.0, 15336726248.0/1032824649.0, -45442868181.0/3398467696.0, 3065993473.0/597172653.0

	a[11][0], a[11][3], a[11][4], a[11][5], a[11][6], a[11][7], a[11][8], a[11][9], a[11][10] =
		185892177.0/718116043.0, -3185094517.0/667107341.0, -477755414.0/1098053517.0, -703635378.0/230739211.0, 5731566787.0/1027545527.0, 5232866602.0/850066563.0, -4093664535.0/808688257.0, 3962137247.0/1805957418.0, 65686358.0/487910083.0

	a[12][0], a[12][3], a[12][4], a[12][5], a[12][6], a[12][7], a[12][8], a[12][9], a[12][10], a[12][11] =
		403863854.0/491063109.0, -5068492393.0/434740067.0, -411421997.0/543043805.0, 652783627.0/914296604.0, 11173962825.0/925320556.0, -13158990841.0/6184727034.0, 3936647629.0/1978049680.0, -160528059.0/685178525.0, 248638103.0/1413531060.0, 0

	b := []float64{
		14005451.0 / 335480064.0, 0, 0, 0, 0,
		-59238493.0 / 1068277825.0,
		181606767.0 / 758867731.0,
		561292985.0 / 797845732.0,
		-1041891430.0 / 1371343529.0,
		760417239.0 / 1151165299.0,
		118820643.0 / 751138087.0,
		-528747749.0 / 2220607170.0,
		1.0 / 4.0,
	}
	bhat := []float64{
		13451932.0 / 455176623.0, 0, 0, 0, 0,
		-808719846.0 / 976000145.0,
		1757004468.0 / 5645159321.0,
		656045339.0 / 265891186.0,
		-3867574721.0 / 1518517206.0,
		465885868.0 / 322736535.0,
		53011238.0 / 667516719.0,
		2.0 / 45.0,
		0,
	}
	return &tableau{
		stages:         13,
		a:              a,
		b:              b,
		bhat:           bhat,
		c:              c,
		order:          8,
		embOrder:       7,
		stabilityLimit: 6.0,
	}
}

// rowSumsMatchC is a sanity check used in tests: every explicit tableau
// must satisfy c_i = sum_j A_ij (spec section 4.1).
func rowSumsMatchC(t *tableau) bool {
	const eps = 1e-12
	for i := 0; i < t.stages; i++ {
		sum := 0.0
		for j := 0; j < i; j++ {
			sum += t.a[i][j]
		}
		if math.Abs(sum-t.c[i]) > eps {
			return false
		}
	}
	return true
}
