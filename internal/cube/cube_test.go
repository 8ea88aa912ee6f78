package cube

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromData(t *testing.T) {
	_, err := FromData(2, 2, 2, make([]float64, 7))
	require.Error(t, err)

	c, err := FromData(2, 3, 2, make([]float64, 12))
	require.NoError(t, err)
	c.Set(1, 2, 1, 5)
	require.Equal(t, 5.0, c.Data[11])
	require.Equal(t, 5.0, c.Plane(1)[5])
}

func TestApertureMean(t *testing.T) {
	c := New(5, 5, 2)
	for y := range 5 {
		for x := range 5 {
			c.Set(x, y, 0, 1)
			c.Set(x, y, 1, float64(x))
		}
	}
	c.Set(2, 2, 0, math.NaN())
	c.Set(4, 4, 0, 100) // outside the aperture

	spec := c.ApertureMean(Circle{X: 2, Y: 2, Radius: 1})
	require.Len(t, spec, 2)
	require.InDelta(t, 1.0, spec[0], 1e-12)
	require.InDelta(t, 2.0, spec[1], 1e-12)

	spec = c.ApertureMean(Circle{X: -10, Y: -10, Radius: 1})
	require.True(t, math.IsNaN(spec[0]))

	require.Equal(t, 5, c.AperturePixels(Circle{X: 2, Y: 2, Radius: 1}))
	require.Equal(t, 1, c.AperturePixels(Circle{X: -1, Y: 0, Radius: 1}))
	require.Zero(t, c.AperturePixels(Circle{X: -10, Y: -10, Radius: 1}))
	require.Zero(t, c.AperturePixels(Circle{X: 191013, Y: 90612, Radius: 3}))
}

func TestRemoveSmallStructures(t *testing.T) {
	// channel 0:    channel 1:
	//   1 1 0 0       0 0 0 0
	//   1 0 0 1       0 1 0 0
	//   0 0 0 0       0 0 0 0
	c := New(4, 3, 2)
	for _, p := range [][3]int{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {3, 1, 0}, {1, 1, 1}} {
		c.Set(p[0], p[1], p[2], 1)
	}

	labels := make([]int, 12)
	require.Equal(t, 2, c.LabelPlane(0, labels))
	require.Equal(t, labels[0], labels[1])
	require.NotEqual(t, labels[0], labels[7])

	removed := c.RemoveSmallStructures(2)
	require.Equal(t, 2, removed)
	require.Equal(t, 1.0, c.At(0, 0, 0))
	require.True(t, math.IsNaN(c.At(3, 1, 0)))
	require.True(t, math.IsNaN(c.At(1, 1, 1)))

	// background stays untouched
	require.Equal(t, 0.0, c.At(2, 2, 0))
}

func TestGaussianSmooth(t *testing.T) {
	c := New(9, 9, 1)
	for i := range c.Data {
		c.Data[i] = 2
	}
	c.Set(4, 4, 0, math.NaN())

	s := c.GaussianSmooth(2)
	require.InDelta(t, 2.0, s.At(0, 0, 0), 1e-12)
	require.InDelta(t, 2.0, s.At(3, 4, 0), 1e-12)
	require.True(t, math.IsNaN(s.At(4, 4, 0)))

	point := New(9, 9, 1)
	point.Set(4, 4, 0, 1)
	s = point.GaussianSmooth(3)
	require.Less(t, s.At(4, 4, 0), 1.0)
	require.Greater(t, s.At(4, 4, 0), s.At(5, 4, 0))
	require.InDelta(t, s.At(3, 4, 0), s.At(5, 4, 0), 1e-12)
}

// directSmooth is the normalised convolution computed pixel by pixel
func directSmooth(c *Cube, fwhm float64) *Cube {
	sigma := fwhm * fwhmToSigma
	radius := int(math.Ceil(3 * sigma))

	out := c.Clone()
	for z := range c.Nz {
		for y := range c.Ny {
			for x := range c.Nx {
				if math.IsNaN(c.At(x, y, z)) {
					continue
				}

				var sum, weight float64
				for dy := -radius; dy <= radius; dy++ {
					for dx := -radius; dx <= radius; dx++ {
						xx, yy := x+dx, y+dy
						if xx < 0 || yy < 0 || xx >= c.Nx || yy >= c.Ny || math.IsNaN(c.At(xx, yy, z)) {
							continue
						}
						w := math.Exp(-float64(dx*dx+dy*dy) / (2 * sigma * sigma))
						sum += w * c.At(xx, yy, z)
						weight += w
					}
				}
				out.Set(x, y, z, sum/weight)
			}
		}
	}
	return out
}

func TestGaussianSmooth_MatchesDirectConvolution(t *testing.T) {
	c := New(13, 7, 2)
	for i := range c.Data {
		c.Data[i] = math.Sin(float64(i)) * float64(i%5)
	}
	c.Set(0, 0, 0, math.NaN())
	c.Set(6, 3, 0, math.NaN())
	c.Set(7, 3, 1, math.NaN())

	for _, fwhm := range []float64{1.2, 2.5, 6} {
		got := c.GaussianSmooth(fwhm)
		want := directSmooth(c, fwhm)
		for i := range want.Data {
			if math.IsNaN(want.Data[i]) {
				require.True(t, math.IsNaN(got.Data[i]), "pixel %d", i)
				continue
			}
			require.InDelta(t, want.Data[i], got.Data[i], 1e-9, "fwhm %v pixel %d", fwhm, i)
		}
	}
}

func TestHanningSmooth(t *testing.T) {
	c := New(1, 1, 5)
	c.Set(0, 0, 2, 4)

	s := c.HanningSmooth()
	require.InDelta(t, 1.0, s.At(0, 0, 1), 1e-12)
	require.InDelta(t, 2.0, s.At(0, 0, 2), 1e-12)
	require.InDelta(t, 1.0, s.At(0, 0, 3), 1e-12)
	require.InDelta(t, 0.0, s.At(0, 0, 0), 1e-12)
}

func TestRMSAndMask(t *testing.T) {
	c, err := FromData(2, 1, 2, []float64{3, -3, math.NaN(), 3})
	require.NoError(t, err)
	require.InDelta(t, 3.0, c.RMS(), 1e-12)

	ref, err := FromData(2, 1, 2, []float64{1, 5, 5, 0})
	require.NoError(t, err)

	masked, err := c.MaskBy(ref, 2)
	require.NoError(t, err)
	require.True(t, math.IsNaN(masked.Data[0]))
	require.Equal(t, -3.0, masked.Data[1])
	require.True(t, math.IsNaN(masked.Data[3]))

	_, err = c.MaskBy(New(1, 1, 1), 0)
	require.ErrorIs(t, err, ErrShapeMismatch)

	blank, err := FromData(1, 1, 1, []float64{math.NaN()})
	require.NoError(t, err)
	require.True(t, math.IsNaN(blank.RMS()))
}

func TestMoments(t *testing.T) {
	c := New(2, 1, 4)
	axis := []float64{-10, 0, 10, 20}
	// pixel 0: symmetric line around 0 km/s
	c.Set(0, 0, 0, 1)
	c.Set(0, 0, 1, 2)
	c.Set(0, 0, 2, 1)
	// pixel 1: all blank
	for z := range 4 {
		c.Set(1, 0, z, math.NaN())
	}

	m, err := c.Moments(0, 3, axis)
	require.NoError(t, err)
	require.InDelta(t, 40.0, m.Zero.At(0, 0, 0), 1e-12)
	require.InDelta(t, 0.0, m.One.At(0, 0, 0), 1e-12)
	require.InDelta(t, math.Sqrt(50), m.Two.At(0, 0, 0), 1e-12)
	require.True(t, math.IsNaN(m.Zero.At(1, 0, 0)))

	_, err = c.Moments(2, 4, axis)
	require.Error(t, err)
	_, err = c.Moments(0, 1, axis[:2])
	require.Error(t, err)
}
