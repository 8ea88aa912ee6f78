package app

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/soniakeys/unit"

	"github.com/roman-kulish/casakit/internal/cube"
	"github.com/roman-kulish/casakit/internal/fitscube"
	"github.com/roman-kulish/casakit/internal/flux"
)

// ErrOutsideImage is returned for apertures holding no pixel of the image
var ErrOutsideImage = errors.New("aperture lies outside the image")

// Channel is one point of an aperture spectrum
type Channel struct {
	Index     int
	Frequency float64 // Hz
	Mean      float64 // Jy/beam
	Flux      float64 // Jy
	Tb        float64 // K
}

// Aperture returns the aperture of the given diameter centred on pos
// in pixel coordinates of im
func Aperture(im *fitscube.Image, pos Position, diameter unit.Angle) (cube.Circle, error) {
	pixel, err := im.PixelSize()
	if err != nil {
		return cube.Circle{}, err
	}

	x, y := pos.X, pos.Y
	if pos.Sky {
		if x, y, err = im.SkyToPixel(pos.RA, pos.Dec); err != nil {
			return cube.Circle{}, err
		}
	}

	aper := cube.Circle{X: x, Y: y, Radius: diameter.Sec() / 2 / pixel.Sec()}
	if im.Cube.AperturePixels(aper) == 0 {
		return cube.Circle{}, fmt.Errorf("%w: centre %.1f,%.1f of a %dx%d image", ErrOutsideImage, x, y, im.Cube.Nx, im.Cube.Ny)
	}
	return aper, nil
}

// Spectrum extracts the spectrum within aper. Every channel is converted
// with its own beam and frequency.
func Spectrum(im *fitscube.Image, aper cube.Circle, diameter unit.Angle) ([]Channel, error) {
	pixel, err := im.PixelSize()
	if err != nil {
		return nil, err
	}
	freqs, err := im.Frequencies()
	if err != nil {
		return nil, err
	}

	means := im.Cube.ApertureMean(aper)
	fa := flux.Aperture{Diameter: diameter}

	spectrum := make([]Channel, len(means))
	for z, mean := range means {
		beam, err := im.ChannelBeam(z)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", z, err)
		}

		spectrum[z] = Channel{
			Index:     z,
			Frequency: freqs[z],
			Mean:      mean,
			Flux:      fa.Flux(mean, beam, pixel),
			Tb:        beam.BrightnessTemperature(mean, freqs[z]),
		}
	}

	return spectrum, nil
}

// Peak returns the channel with the highest flux, ignoring blank channels
func Peak(spectrum []Channel) (Channel, bool) {
	var peak Channel
	found := false
	for _, ch := range spectrum {
		if math.IsNaN(ch.Flux) {
			continue
		}
		if !found || ch.Flux > peak.Flux {
			peak, found = ch, true
		}
	}
	return peak, found
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func WriteCSV(w io.Writer, spectrum []Channel) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"channel", "frequency_ghz", "intensity_jy_beam", "flux_jy", "tb_k"}); err != nil {
		return err
	}

	for _, ch := range spectrum {
		record := []string{
			strconv.Itoa(ch.Index),
			formatFloat(ch.Frequency / flux.GigaHertz),
			formatFloat(ch.Mean),
			formatFloat(ch.Flux),
			formatFloat(ch.Tb),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
