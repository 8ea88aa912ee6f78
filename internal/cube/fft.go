package cube

import "gonum.org/v1/gonum/dsp/fourier"

// grid is a zero padded complex plane transformed with row and column FFTs
type grid struct {
	h, w int
	data []complex128

	rows, cols *fourier.CmplxFFT
	col        []complex128
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// newGrid returns a grid of at least h x w cells
func newGrid(h, w int) *grid {
	h, w = nextPow2(h), nextPow2(w)
	return &grid{
		h:    h,
		w:    w,
		data: make([]complex128, h*w),
		rows: fourier.NewCmplxFFT(w),
		cols: fourier.NewCmplxFFT(h),
		col:  make([]complex128, h),
	}
}

func (g *grid) reset() {
	clear(g.data)
}

func (g *grid) at(y, x int) complex128 {
	return g.data[y*g.w+x]
}

func (g *grid) set(y, x int, v complex128) {
	g.data[y*g.w+x] = v
}

// transform runs the 2-D transform in place. Gonum transforms are not
// normalised, the inverse result is scaled by 1/(h*w) here.
func (g *grid) transform(forward bool) {
	for y := range g.h {
		row := g.data[y*g.w : (y+1)*g.w]
		if forward {
			g.rows.Coefficients(row, row)
		} else {
			g.rows.Sequence(row, row)
		}
	}

	for x := range g.w {
		for y := range g.h {
			g.col[y] = g.data[y*g.w+x]
		}
		if forward {
			g.cols.Coefficients(g.col, g.col)
		} else {
			g.cols.Sequence(g.col, g.col)
		}
		for y := range g.h {
			g.data[y*g.w+x] = g.col[y]
		}
	}

	if !forward {
		scale := complex(1/float64(g.h*g.w), 0)
		for i := range g.data {
			g.data[i] *= scale
		}
	}
}

// multiply multiplies g by o cell by cell
func (g *grid) multiply(o *grid) {
	for i := range g.data {
		g.data[i] *= o.data[i]
	}
}
