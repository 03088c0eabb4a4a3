package la

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Triplet is a COO (coordinate-format) accumulator for a sparse real
// matrix: a list of (row, col, value) entries where duplicates at the
// same (row, col) are summed on assembly. It holds no factorization
// logic of its own — that lives in the sparse-solver types below.
type Triplet struct {
	m, n int
	i, j []int
	x    []float64
	pos  int
}

// Init allocates a triplet for an m x n matrix with room for nnz entries.
func (t *Triplet) Init(m, n, nnz int) {
	t.m, t.n = m, n
	t.i = make([]int, nnz)
	t.j = make([]int, nnz)
	t.x = make([]float64, nnz)
	t.pos = 0
}

// Reset rewinds the write position without reallocating, so the same
// backing arrays can be reused across Jacobian evaluations.
func (t *Triplet) Reset() {
	t.pos = 0
}

// Put appends one (row, col, value) entry. Put panics with an
// out-of-bounds error if row or col exceed the declared size, matching
// the teacher's convention of failing fast on programmer error.
func (t *Triplet) Put(row, col int, value float64) {
	if row < 0 || row >= t.m || col < 0 || col >= t.n {
		panic(fmt.Sprintf("la: Triplet.Put(%d,%d) out of bounds for %dx%d matrix", row, col, t.m, t.n))
	}
	if t.pos >= len(t.i) {
		t.i = append(t.i, row)
		t.j = append(t.j, col)
		t.x = append(t.x, value)
		t.pos++
		return
	}
	t.i[t.pos], t.j[t.pos], t.x[t.pos] = row, col, value
	t.pos++
}

// Dims returns the declared matrix shape.
func (t *Triplet) Dims() (m, n int) { return t.m, t.n }

// Len returns the number of entries written since the last Init/Reset.
func (t *Triplet) Len() int { return t.pos }

// ToDense materializes the triplet as a dense matrix, summing duplicate
// entries. This is the densification step the reference real sparse
// solver uses before handing the system to gonum.
func (t *Triplet) ToDense() *mat.Dense {
	d := mat.NewDense(t.m, t.n, nil)
	for k := 0; k < t.pos; k++ {
		d.Set(t.i[k], t.j[k], d.At(t.i[k], t.j[k])+t.x[k])
	}
	return d
}

// TripletC is the complex-valued counterpart of Triplet, used for the
// decoupled complex Newton system in the Radau5 stepper (spec 4.7, 9).
type TripletC struct {
	m, n int
	i, j []int
	x    []complex128
	pos  int
}

// Init allocates a complex triplet for an m x n matrix with room for nnz entries.
func (t *TripletC) Init(m, n, nnz int) {
	t.m, t.n = m, n
	t.i = make([]int, nnz)
	t.j = make([]int, nnz)
	t.x = make([]complex128, nnz)
	t.pos = 0
}

// Reset rewinds the write position without reallocating.
func (t *TripletC) Reset() {
	t.pos = 0
}

// Put appends one (row, col, value) complex entry.
func (t *TripletC) Put(row, col int, value complex128) {
	if row < 0 || row >= t.m || col < 0 || col >= t.n {
		panic(fmt.Sprintf("la: TripletC.Put(%d,%d) out of bounds for %dx%d matrix", row, col, t.m, t.n))
	}
	if t.pos >= len(t.i) {
		t.i = append(t.i, row)
		t.j = append(t.j, col)
		t.x = append(t.x, value)
		t.pos++
		return
	}
	t.i[t.pos], t.j[t.pos], t.x[t.pos] = row, col, value
	t.pos++
}

// Dims returns the declared matrix shape.
func (t *TripletC) Dims() (m, n int) { return t.m, t.n }

// Len returns the number of entries written since the last Init/Reset.
func (t *TripletC) Len() int { return t.pos }

// ToDense materializes the complex triplet as a dense row-major matrix,
// summing duplicate entries.
func (t *TripletC) ToDense() [][]complex128 {
	d := make([][]complex128, t.m)
	for r := range d {
		d[r] = make([]complex128, t.n)
	}
	for k := 0; k < t.pos; k++ {
		d[t.i[k]][t.j[k]] += t.x[k]
	}
	return d
}
