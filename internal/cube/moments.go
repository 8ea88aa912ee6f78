package cube

import (
	"fmt"
	"math"
)

// Moments holds the moment maps of a cube, each a single channel cube
type Moments struct {
	Zero *Cube // integrated intensity
	One  *Cube // intensity weighted coordinate
	Two  *Cube // intensity weighted dispersion
}

// Moments computes moment maps over channels start..end (inclusive).
// axis holds the spectral coordinate of every channel, e.g. velocities.
func (c *Cube) Moments(start, end int, axis []float64) (*Moments, error) {
	if len(axis) != c.Nz {
		return nil, fmt.Errorf("spectral axis has %d values for %d channels", len(axis), c.Nz)
	}
	if start < 0 || end >= c.Nz || start > end {
		return nil, fmt.Errorf("channel range %d~%d outside 0~%d", start, end, c.Nz-1)
	}

	width := 1.0
	if c.Nz > 1 {
		width = math.Abs(axis[1] - axis[0])
	}

	m := Moments{
		Zero: New(c.Nx, c.Ny, 1),
		One:  New(c.Nx, c.Ny, 1),
		Two:  New(c.Nx, c.Ny, 1),
	}

	for y := range c.Ny {
		for x := range c.Nx {
			var sum, weighted float64
			var n int
			for z := start; z <= end; z++ {
				v := c.At(x, y, z)
				if math.IsNaN(v) {
					continue
				}
				sum += v
				weighted += v * axis[z]
				n++
			}

			i := m.Zero.Index(x, y, 0)
			if n == 0 {
				m.Zero.Data[i] = math.NaN()
				m.One.Data[i] = math.NaN()
				m.Two.Data[i] = math.NaN()
				continue
			}

			m.Zero.Data[i] = sum * width
			if sum == 0 {
				m.One.Data[i] = math.NaN()
				m.Two.Data[i] = math.NaN()
				continue
			}

			mean := weighted / sum
			var dispersion float64
			for z := start; z <= end; z++ {
				v := c.At(x, y, z)
				if math.IsNaN(v) {
					continue
				}
				d := axis[z] - mean
				dispersion += v * d * d
			}

			m.One.Data[i] = mean
			m.Two.Data[i] = math.Sqrt(math.Abs(dispersion / sum))
		}
	}

	return &m, nil
}
