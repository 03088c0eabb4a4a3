package ode

import "github.com/rkradau/ivp/la"

// DenseInterp produces y(x0+theta*h) for theta in [0,1] from the
// stage information of one accepted step. Each stepper supplies its own
// (explicit.go's per-method continuous extension, radau5.go's
// collocation polynomial, bweuler.go's linear interpolant).
type DenseInterp func(theta float64) la.Vector

// DenseCallback is invoked once per dense-output grid point with the
// owning step index, step size, step start, the dense sample, and may
// request early termination.
type DenseCallback func(istep int, h, x float64, y la.Vector, xout float64, yout la.Vector) (stop bool)

// StepCallback is invoked once per accepted step.
type StepCallback func(istep int, x float64, y la.Vector)

// Output is the accepted-step/dense-output sink. A zero Output records
// nothing; EnableStepOut/EnableDenseOut opt in to one or both recording
// modes, each offering both a recorded slice and a live callback.
type Output struct {
	stepEnabled bool
	stepCB      StepCallback
	stepX       []float64
	stepY       [][]float64
	stepH       []float64

	denseEnabled bool
	hOut         float64
	components   []int
	denseCB      DenseCallback
	denseS       []int
	denseX       []float64
	denseY       [][]float64 // [component][sample]

	x1      float64
	started bool
}

// NewOutput returns an empty Output.
func NewOutput() *Output { return &Output{} }

// EnableStepOut turns on accepted-step recording; cb may be nil.
func (o *Output) EnableStepOut(cb StepCallback) *Output {
	o.stepEnabled = true
	o.stepCB = cb
	return o
}

// EnableDenseOut turns on dense-grid sampling with spacing hOut over
// the given y-component indices (nil means all components); cb may be
// nil.
func (o *Output) EnableDenseOut(hOut float64, components []int, cb DenseCallback) *Output {
	o.denseEnabled = true
	o.hOut = hOut
	o.components = components
	o.denseCB = cb
	return o
}

// GetStepX returns the recorded x at every accepted step.
func (o *Output) GetStepX() []float64 { return o.stepX }

// GetStepY returns the recorded y-component j at every accepted step.
func (o *Output) GetStepY(j int) []float64 {
	col := make([]float64, len(o.stepY))
	for i, row := range o.stepY {
		col[i] = row[j]
	}
	return col
}

// GetStepH returns the accepted step size used to reach each recorded point.
func (o *Output) GetStepH() []float64 { return o.stepH }

// GetDenseS returns the owning step index of each dense sample.
func (o *Output) GetDenseS() []int { return o.denseS }

// GetDenseX returns the x-coordinate of each dense sample.
func (o *Output) GetDenseX() []float64 { return o.denseX }

// GetDenseY returns the dense samples of y-component j.
func (o *Output) GetDenseY(j int) []float64 { return o.denseY[j] }

func (o *Output) initDense(n int) {
	if !o.denseEnabled {
		return
	}
	comps := o.components
	if comps == nil {
		comps = make([]int, n)
		for i := range comps {
			comps[i] = i
		}
	}
	o.components = comps
	o.denseY = make([][]float64, n)
	for _, j := range comps {
		if o.denseY[j] == nil {
			o.denseY[j] = []float64{}
		}
	}
}

// recordStep appends one accepted step (x_n, y_n, h).
func (o *Output) recordStep(istep int, x float64, y la.Vector, h float64) {
	if !o.stepEnabled {
		return
	}
	o.stepX = append(o.stepX, x)
	o.stepY = append(o.stepY, append([]float64(nil), y...))
	o.stepH = append(o.stepH, h)
	if o.stepCB != nil {
		o.stepCB(istep, x, y)
	}
}

// recordDense walks the grid points covered by [x0, x1] (the accepted
// step just taken) and samples interp at each, in the direction of the
// overall integration (sign of x1-x0 of the whole solve). nextGridX is
// updated via the returned value so the driver can thread it across
// steps.
func (o *Output) recordDense(istep int, x0, h float64, y0 la.Vector, interp DenseInterp, nextGridX, solveX1 float64, forward bool) (updatedNextGridX float64, stop bool) {
	if !o.denseEnabled {
		return nextGridX, false
	}
	x1 := x0 + h
	step := o.hOut
	if !forward {
		step = -o.hOut
	}
	for (forward && nextGridX <= x1+1e-13) || (!forward && nextGridX >= x1-1e-13) {
		theta := (nextGridX - x0) / h
		var yout la.Vector
		if theta <= 0 {
			yout = y0
		} else {
			yout = interp(theta)
		}
		o.denseS = append(o.denseS, istep)
		o.denseX = append(o.denseX, nextGridX)
		for _, j := range o.components {
			o.denseY[j] = append(o.denseY[j], yout[j])
		}
		if o.denseCB != nil {
			if o.denseCB(istep, h, x0, y0, nextGridX, yout) {
				return nextGridX, true
			}
		}
		nextGridX += step
		if (forward && nextGridX > solveX1+1e-9) || (!forward && nextGridX < solveX1-1e-9) {
			break
		}
	}
	return nextGridX, false
}
