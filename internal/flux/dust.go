package flux

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DustTemperature is the mass-weighted dust temperature assumed by the
	// Scoville calibrations
	DustTemperature = 25.0 // K

	// Nu850 is the rest frequency of 850um
	Nu850 = 345 * GigaHertz

	// Alpha850 is the Scoville 2016 luminosity-to-mass ratio at 850um
	Alpha850 = 6.7e19 // erg s^-1 Hz^-1 Msun^-1

	luminosityScale = 1.19e27
	massScale       = 1.78e10
	mass850Exponent = 3.8
)

// ErrInvalidParameter is returned for non-physical inputs such as a zero
// temperature or a negative redshift
var ErrInvalidParameter = errors.New("invalid parameter")

// GammaRJ returns the correction for the departure of the rest frame
// Planck function from the Rayleigh-Jeans limit at temperature t (K),
// observed frequency nuObs (Hz) and redshift z.
func GammaRJ(t, nuObs, z float64) float64 {
	x := PlanckCGS * nuObs * (1 + z) / (BoltzmannCGS * t)
	if x == 0 {
		return 1
	}
	return x / math.Expm1(x)
}

// Source is an unresolved dust continuum detection
type Source struct {
	Flux      float64 // observed flux density in mJy
	Redshift  float64
	Frequency float64 // observed frequency in Hz
	Distance  float64 // luminosity distance in Gpc

	// Alpha is the luminosity-to-mass ratio, Alpha850 when zero
	Alpha float64
}

func (s Source) validate() error {
	switch {
	case s.Frequency <= 0:
		return fmt.Errorf("%w: frequency must be positive", ErrInvalidParameter)
	case s.Redshift < 0:
		return fmt.Errorf("%w: redshift must not be negative", ErrInvalidParameter)
	case s.Distance <= 0:
		return fmt.Errorf("%w: luminosity distance must be positive", ErrInvalidParameter)
	case s.Alpha < 0:
		return fmt.Errorf("%w: alpha must not be negative", ErrInvalidParameter)
	}
	return nil
}

func (s Source) gammaRatio() float64 {
	return GammaRJ(DustTemperature, Nu850, 0) / GammaRJ(DustTemperature, s.Frequency, s.Redshift)
}

func (s Source) alpha() float64 {
	if s.Alpha == 0 {
		return Alpha850
	}
	return s.Alpha
}

// Luminosity850 returns the rest frame 850um specific luminosity in
// erg s^-1 Hz^-1 (Scoville et al. 2016, eq. 10)
func (s Source) Luminosity850() (float64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}

	zp1 := 1 + s.Redshift
	return luminosityScale * s.Flux *
		math.Pow(Nu850/(s.Frequency*zp1), mass850Exponent) *
		s.Distance * s.Distance / zp1 *
		s.gammaRatio(), nil
}

// ISMMass returns the interstellar medium mass in solar masses
// (Scoville et al. 2017, eq. A1)
func (s Source) ISMMass() (float64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}

	return massScale * s.Flux *
		math.Pow(1+s.Redshift, -4.8) *
		math.Pow(Nu850/s.Frequency, mass850Exponent) *
		s.Distance * s.Distance *
		(Alpha850 / s.alpha()) *
		s.gammaRatio(), nil
}

// H2ColumnDensity returns the mean molecular hydrogen column density in
// cm^-2 of mass solar masses spread over a disc of the given radius in kpc
func H2ColumnDensity(mass, radius float64) (float64, error) {
	if radius <= 0 {
		return 0, fmt.Errorf("%w: radius must be positive", ErrInvalidParameter)
	}

	molecules := mass * SolarMassKg / (2 * ProtonMassKg)
	r := radius * KiloparsecCm
	return molecules / (math.Pi * r * r), nil
}
