// Package flux implements the flux density arithmetic used when reducing
// (sub)millimetre continuum and line data: Gaussian beam areas, Jy/beam to
// brightness temperature, aperture fluxes and the dust-continuum luminosity
// and ISM mass calibrations of Scoville et al.
package flux

// Physical constants in CGS units unless noted otherwise
const (
	PlanckCGS    = 6.62607015e-27 // erg s
	BoltzmannCGS = 1.380649e-16   // erg K^-1

	SolarMassKg  = 1.98840987e30   // kg
	ProtonMassKg = 1.67262192e-27  // kg
	ParsecCm     = 3.08567758e18   // cm
	KiloparsecCm = 1e3 * ParsecCm  // cm
	GigaHertz    = 1e9             // Hz
)
