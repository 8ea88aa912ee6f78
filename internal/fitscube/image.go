// Package fitscube reads and writes the FITS cubes exported from CASA
// (exportfits) and interprets the parts of their headers needed for
// spectral extraction: the beam, pixel size, spectral axis and celestial
// coordinates.
package fitscube

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/astrogo/fitsio"
	"github.com/soniakeys/unit"

	"github.com/roman-kulish/casakit/internal/cube"
	"github.com/roman-kulish/casakit/internal/flux"
)

// SpeedOfLight in km/s
const SpeedOfLight = 299792.458

var (
	ErrMissingKeyword    = errors.New("missing header keyword")
	ErrNoBeam            = errors.New("image has no restoring beam")
	ErrNoSpectralAxis    = errors.New("image has no spectral axis")
	ErrUnsupportedBitpix = errors.New("unsupported BITPIX")
)

// Image is a FITS image cube with the header cards that describe it
type Image struct {
	Cube *cube.Cube

	// Cards are the non-structural cards of the primary header
	Cards []fitsio.Card

	// Beams holds one beam per channel for images with per-plane beams
	Beams []flux.Beam
}

// Card returns the header card named key
func (im *Image) Card(key string) (fitsio.Card, bool) {
	key = strings.ToUpper(key)
	for _, c := range im.Cards {
		if c.Name == key {
			return c, true
		}
	}
	return fitsio.Card{}, false
}

// SetCard replaces the card of the same name or appends it
func (im *Image) SetCard(card fitsio.Card) {
	card.Name = strings.ToUpper(card.Name)
	for i, c := range im.Cards {
		if c.Name == card.Name {
			im.Cards[i] = card
			return
		}
	}
	im.Cards = append(im.Cards, card)
}

// Float returns a numeric header value
func (im *Image) Float(key string) (float64, bool) {
	c, ok := im.Card(key)
	if !ok {
		return 0, false
	}

	return toFloat(c.Value)
}

// Text returns a string header value with the FITS padding trimmed
func (im *Image) Text(key string) (string, bool) {
	c, ok := im.Card(key)
	if !ok {
		return "", false
	}
	s, ok := c.Value.(string)
	return strings.TrimSpace(s), ok
}

func (im *Image) mustFloat(key string) (float64, error) {
	v, ok := im.Float(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingKeyword, key)
	}
	return v, nil
}

// Beam returns the restoring beam of the image. Images with per-plane beams
// report the mean beam.
func (im *Image) Beam() (flux.Beam, error) {
	if mean := flux.MeanBeam(im.Beams); !mean.IsZero() {
		return mean, nil
	}

	bmaj, okMaj := im.Float("BMAJ")
	bmin, okMin := im.Float("BMIN")
	if !okMaj || !okMin || bmaj == 0 || bmin == 0 {
		return flux.Beam{}, ErrNoBeam
	}
	bpa, _ := im.Float("BPA")

	return flux.Beam{
		Major:         unit.AngleFromDeg(bmaj),
		Minor:         unit.AngleFromDeg(bmin),
		PositionAngle: unit.AngleFromDeg(bpa),
	}, nil
}

// ChannelBeam returns the beam of channel z
func (im *Image) ChannelBeam(z int) (flux.Beam, error) {
	if z >= 0 && z < len(im.Beams) && !im.Beams[z].IsZero() {
		return im.Beams[z], nil
	}
	return im.Beam()
}

// PixelSize returns the angular size of a pixel along the first axis
func (im *Image) PixelSize() (unit.Angle, error) {
	cdelt, err := im.mustFloat("CDELT1")
	if err != nil {
		return 0, err
	}
	return unit.AngleFromDeg(math.Abs(cdelt)), nil
}

func (im *Image) linearAxis(n int) ([]float64, error) {
	crval, err := im.mustFloat(fmt.Sprintf("CRVAL%d", n))
	if err != nil {
		return nil, err
	}
	cdelt, err := im.mustFloat(fmt.Sprintf("CDELT%d", n))
	if err != nil {
		return nil, err
	}
	crpix, ok := im.Float(fmt.Sprintf("CRPIX%d", n))
	if !ok {
		crpix = 1
	}

	values := make([]float64, im.Cube.Nz)
	for i := range values {
		values[i] = crval + (float64(i+1)-crpix)*cdelt
	}
	return values, nil
}

func (im *Image) spectralType() string {
	ctype, _ := im.Text("CTYPE3")
	return strings.ToUpper(ctype)
}

// Frequencies returns the frequency in Hz of every channel
func (im *Image) Frequencies() ([]float64, error) {
	ctype := im.spectralType()
	if ctype != "" && !strings.HasPrefix(ctype, "FREQ") {
		return nil, fmt.Errorf("%w: CTYPE3 is '%s'", ErrNoSpectralAxis, ctype)
	}

	freqs, err := im.linearAxis(3)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSpectralAxis, err)
	}

	if cunit, _ := im.Text("CUNIT3"); strings.EqualFold(cunit, "GHz") {
		for i := range freqs {
			freqs[i] *= flux.GigaHertz
		}
	}
	return freqs, nil
}

// RestFrequency returns the rest frequency of the observed line in Hz
func (im *Image) RestFrequency() (float64, bool) {
	if f, ok := im.Float("RESTFRQ"); ok && f > 0 {
		return f, true
	}
	if f, ok := im.Float("RESTFREQ"); ok && f > 0 {
		return f, true
	}
	return 0, false
}

// Velocities returns the radio velocity in km/s of every channel, either
// from a velocity axis or from a frequency axis and the rest frequency
func (im *Image) Velocities() ([]float64, error) {
	ctype := im.spectralType()
	if strings.HasPrefix(ctype, "VRAD") || strings.HasPrefix(ctype, "VELO") || strings.HasPrefix(ctype, "VOPT") {
		v, err := im.linearAxis(3)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoSpectralAxis, err)
		}
		if cunit, _ := im.Text("CUNIT3"); !strings.EqualFold(cunit, "km/s") {
			for i := range v {
				v[i] /= 1e3
			}
		}
		return v, nil
	}

	freqs, err := im.Frequencies()
	if err != nil {
		return nil, err
	}
	rest, ok := im.RestFrequency()
	if !ok {
		return nil, fmt.Errorf("%w: RESTFRQ", ErrMissingKeyword)
	}

	for i, f := range freqs {
		freqs[i] = SpeedOfLight * (1 - f/rest)
	}
	return freqs, nil
}

// SpectralAxis returns the coordinate moments are computed on: velocities
// in km/s when they can be derived, frequencies in GHz otherwise
func (im *Image) SpectralAxis() (values []float64, unitName string, err error) {
	if v, err := im.Velocities(); err == nil {
		return v, "km/s", nil
	}

	freqs, err := im.Frequencies()
	if err != nil {
		return nil, "", err
	}
	for i := range freqs {
		freqs[i] /= flux.GigaHertz
	}
	return freqs, "GHz", nil
}

// SkyToPixel converts equatorial coordinates into 0-based pixel coordinates
// using the orthographic (SIN) projection radio images are gridded on
func (im *Image) SkyToPixel(ra unit.RA, dec unit.Angle) (x, y float64, err error) {
	var v [6]float64
	for i, key := range []string{"CRVAL1", "CRVAL2", "CDELT1", "CDELT2", "CRPIX1", "CRPIX2"} {
		if v[i], err = im.mustFloat(key); err != nil {
			return 0, 0, err
		}
	}

	ra0 := unit.AngleFromDeg(v[0]).Rad()
	dec0 := unit.AngleFromDeg(v[1]).Rad()
	dra := unit.Angle(ra).Rad() - ra0
	d := dec.Rad()

	l := math.Cos(d) * math.Sin(dra)
	m := math.Sin(d)*math.Cos(dec0) - math.Cos(d)*math.Sin(dec0)*math.Cos(dra)

	x = v[4] - 1 + unit.Angle(l).Deg()/v[2]
	y = v[5] - 1 + unit.Angle(m).Deg()/v[3]
	return x, y, nil
}
