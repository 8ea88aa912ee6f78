package flux

import (
	"math"

	"github.com/soniakeys/unit"
)

// tbConversion is the NRAO Jy/beam to Kelvin factor for frequencies in GHz,
// beam axes in arcsec and intensities in mJy/beam
const tbConversion = 1.222e3

// Beam is the restoring beam of an image plane. Axes are full widths at half
// maximum.
type Beam struct {
	Major         unit.Angle
	Minor         unit.Angle
	PositionAngle unit.Angle
}

// NewBeamArcsec creates a beam from axes in arcsec and a position angle in
// degrees, the units CASA reports them in
func NewBeamArcsec(major, minor, pa float64) Beam {
	return Beam{
		Major:         unit.AngleFromSec(major),
		Minor:         unit.AngleFromSec(minor),
		PositionAngle: unit.AngleFromDeg(pa),
	}
}

// IsZero reports whether the beam is undefined
func (b Beam) IsZero() bool {
	return b.Major == 0 || b.Minor == 0
}

// Area returns the area of the Gaussian beam in square arcsec
func (b Beam) Area() float64 {
	return math.Pi * b.Major.Sec() * b.Minor.Sec() / (4 * math.Ln2)
}

// Pixels returns the number of pixels of the given size covered by the beam
func (b Beam) Pixels(pixel unit.Angle) float64 {
	p := pixel.Sec()
	return b.Area() / (p * p)
}

// BrightnessTemperature converts an intensity in Jy/beam at frequency nu
// (Hz) into a Rayleigh-Jeans brightness temperature in K
func (b Beam) BrightnessTemperature(jyPerBeam, nu float64) float64 {
	ghz := nu / GigaHertz
	return tbConversion * jyPerBeam * 1e3 / (ghz * ghz * b.Major.Sec() * b.Minor.Sec())
}

// MeanBeam returns the beam whose axes are the mean of the given beams,
// skipping undefined ones
func MeanBeam(beams []Beam) Beam {
	var major, minor, pa float64
	var n int
	for _, b := range beams {
		if b.IsZero() {
			continue
		}
		major += b.Major.Rad()
		minor += b.Minor.Rad()
		pa += b.PositionAngle.Rad()
		n++
	}
	if n == 0 {
		return Beam{}
	}

	return Beam{
		Major:         unit.Angle(major / float64(n)),
		Minor:         unit.Angle(minor / float64(n)),
		PositionAngle: unit.Angle(pa / float64(n)),
	}
}

// Aperture is a circular aperture
type Aperture struct {
	Diameter unit.Angle
}

// Area returns the aperture area in square arcsec
func (a Aperture) Area() float64 {
	r := a.Diameter.Sec() / 2
	return math.Pi * r * r
}

// Pixels returns the number of pixels of the given size within the aperture
func (a Aperture) Pixels(pixel unit.Angle) float64 {
	p := pixel.Sec()
	return a.Area() / (p * p)
}

// Flux converts the mean intensity (Jy/beam) within the aperture into the
// total flux density (Jy) it encloses
func (a Aperture) Flux(meanJyPerBeam float64, beam Beam, pixel unit.Angle) float64 {
	return meanJyPerBeam * a.Pixels(pixel) / beam.Pixels(pixel)
}
