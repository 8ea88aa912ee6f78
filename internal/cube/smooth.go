package cube

import "math"

// fwhmToSigma converts a Gaussian full width at half maximum to its sigma
var fwhmToSigma = 1 / (2 * math.Sqrt(2*math.Ln2))

// minWeight is the smallest share of valid kernel weight a smoothed pixel
// needs, below it the pixel is blank
const minWeight = 1e-9

// gaussianKernelGrid returns the transform of a unit sum circular Gaussian
// centred on cell (0, 0) of a grid sized for ny x nx planes
func gaussianKernelGrid(fwhm float64, ny, nx int) *grid {
	sigma := fwhm * fwhmToSigma
	radius := int(math.Ceil(3 * sigma))

	// padding by the kernel width keeps the circular convolution from
	// wrapping around and the kernel from aliasing onto itself
	g := newGrid(ny+2*radius+1, nx+2*radius+1)

	var sum float64
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			sum += math.Exp(-float64(dx*dx+dy*dy) / (2 * sigma * sigma))
		}
	}
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			w := math.Exp(-float64(dx*dx+dy*dy)/(2*sigma*sigma)) / sum
			g.set((dy+g.h)%g.h, (dx+g.w)%g.w, complex(w, 0))
		}
	}

	g.transform(true)
	return g
}

// GaussianSmooth convolves every channel with a circular Gaussian of the
// given full width at half maximum in pixels. The convolution is normalised
// by the weight of the valid pixels, so blanks and edges do not bias the
// result, and blank pixels stay blank.
func (c *Cube) GaussianSmooth(fwhm float64) *Cube {
	if fwhm <= 0 {
		return c.Clone()
	}

	kernel := gaussianKernelGrid(fwhm, c.Ny, c.Nx)
	plane := newGrid(kernel.h, kernel.w)
	out := c.Clone()

	for z := range c.Nz {
		// data in the real part, validity in the imaginary part: the kernel is
		// real so both are convolved with a single transform
		plane.reset()
		for y := range c.Ny {
			for x := range c.Nx {
				if v := c.At(x, y, z); !math.IsNaN(v) {
					plane.set(y, x, complex(v, 1))
				}
			}
		}

		plane.transform(true)
		plane.multiply(kernel)
		plane.transform(false)

		for y := range c.Ny {
			for x := range c.Nx {
				i := c.Index(x, y, z)
				if math.IsNaN(c.Data[i]) {
					continue
				}

				v := plane.at(y, x)
				if imag(v) < minWeight {
					out.Data[i] = math.NaN()
					continue
				}
				out.Data[i] = real(v) / imag(v)
			}
		}
	}

	return out
}

// convolve1D runs kernel along n samples starting at offset off with the
// given stride, normalising by the weight of the valid samples
func convolve1D(dst, src []float64, off, stride, n int, kernel []float64) {
	radius := len(kernel) / 2
	for i := range n {
		var sum, weight float64
		for k, w := range kernel {
			j := i + k - radius
			if j < 0 || j >= n {
				continue
			}
			v := src[off+j*stride]
			if math.IsNaN(v) {
				continue
			}
			sum += w * v
			weight += w
		}

		if weight == 0 || math.IsNaN(src[off+i*stride]) {
			dst[off+i*stride] = math.NaN()
		} else {
			dst[off+i*stride] = sum / weight
		}
	}
}

// HanningSmooth smooths every spectrum with the 3-channel Hanning kernel
func (c *Cube) HanningSmooth() *Cube {
	kernel := []float64{0.25, 0.5, 0.25}
	out := c.Clone()

	for y := range c.Ny {
		for x := range c.Nx {
			convolve1D(out.Data, c.Data, c.Index(x, y, 0), c.Nx*c.Ny, c.Nz, kernel)
		}
	}

	return out
}
