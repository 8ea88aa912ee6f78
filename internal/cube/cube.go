// Package cube holds spectral image cubes in memory and the few image
// operations needed to turn them into spectra and moment maps.
//
// Blanked pixels are NaN and every operation skips them.
package cube

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrShapeMismatch is returned when two cubes of different shape are combined
var ErrShapeMismatch = errors.New("cube shapes differ")

// Cube is a (x, y, channel) image cube stored in FITS order: x varies
// fastest, then y, then the channel.
type Cube struct {
	Nx, Ny, Nz int
	Data       []float64
}

// New creates a zero-filled cube
func New(nx, ny, nz int) *Cube {
	return &Cube{Nx: nx, Ny: ny, Nz: nz, Data: make([]float64, nx*ny*nz)}
}

// FromData wraps data as a cube without copying it
func FromData(nx, ny, nz int, data []float64) (*Cube, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("invalid cube shape %dx%dx%d", nx, ny, nz)
	}
	if len(data) != nx*ny*nz {
		return nil, fmt.Errorf("cube of %dx%dx%d needs %d values, got %d", nx, ny, nz, nx*ny*nz, len(data))
	}
	return &Cube{Nx: nx, Ny: ny, Nz: nz, Data: data}, nil
}

// Index returns the position of a pixel within Data
func (c *Cube) Index(x, y, z int) int {
	return x + c.Nx*(y+c.Ny*z)
}

func (c *Cube) At(x, y, z int) float64 {
	return c.Data[c.Index(x, y, z)]
}

func (c *Cube) Set(x, y, z int, v float64) {
	c.Data[c.Index(x, y, z)] = v
}

// Plane returns the pixels of channel z. The slice shares memory with the cube.
func (c *Cube) Plane(z int) []float64 {
	n := c.Nx * c.Ny
	return c.Data[z*n : (z+1)*n]
}

// Clone returns a deep copy of the cube
func (c *Cube) Clone() *Cube {
	return &Cube{Nx: c.Nx, Ny: c.Ny, Nz: c.Nz, Data: slices.Clone(c.Data)}
}

// SameShape reports whether both cubes have the same dimensions
func (c *Cube) SameShape(o *Cube) bool {
	return c.Nx == o.Nx && c.Ny == o.Ny && c.Nz == o.Nz
}

// RMS returns the root mean square of all valid pixels, NaN when there are none
func (c *Cube) RMS() float64 {
	var sum float64
	var n int
	for _, v := range c.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v * v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return math.Sqrt(sum / float64(n))
}

// MaskBy returns a copy of c where every pixel whose counterpart in ref is
// not above cutoff is blanked
func (c *Cube) MaskBy(ref *Cube, cutoff float64) (*Cube, error) {
	if !c.SameShape(ref) {
		return nil, ErrShapeMismatch
	}

	out := c.Clone()
	for i, v := range ref.Data {
		if !(v > cutoff) {
			out.Data[i] = math.NaN()
		}
	}
	return out, nil
}
