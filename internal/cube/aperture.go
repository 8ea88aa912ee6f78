package cube

import "math"

// Circle is a circular aperture in 0-based pixel coordinates
type Circle struct {
	X, Y   float64
	Radius float64
}

// Contains reports whether the centre of pixel (x, y) lies within the circle
func (c Circle) Contains(x, y int) bool {
	dx := float64(x) - c.X
	dy := float64(y) - c.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// bounds returns the pixel box around aper clipped to the image
func (c *Cube) bounds(aper Circle) (x0, x1, y0, y1 int) {
	x0 = max(int(math.Floor(aper.X-aper.Radius)), 0)
	x1 = min(int(math.Ceil(aper.X+aper.Radius)), c.Nx-1)
	y0 = max(int(math.Floor(aper.Y-aper.Radius)), 0)
	y1 = min(int(math.Ceil(aper.Y+aper.Radius)), c.Ny-1)
	return
}

// AperturePixels returns the number of image pixels within the aperture
func (c *Cube) AperturePixels(aper Circle) int {
	x0, x1, y0, y1 := c.bounds(aper)

	var n int
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if aper.Contains(x, y) {
				n++
			}
		}
	}
	return n
}

// ApertureMean returns, per channel, the mean of the valid pixels within the
// aperture. Channels without a valid pixel in the aperture are NaN.
func (c *Cube) ApertureMean(aper Circle) []float64 {
	x0, x1, y0, y1 := c.bounds(aper)

	spectrum := make([]float64, c.Nz)
	for z := range c.Nz {
		var sum float64
		var n int
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if !aper.Contains(x, y) {
					continue
				}
				v := c.At(x, y, z)
				if math.IsNaN(v) {
					continue
				}
				sum += v
				n++
			}
		}

		if n == 0 {
			spectrum[z] = math.NaN()
		} else {
			spectrum[z] = sum / float64(n)
		}
	}

	return spectrum
}
