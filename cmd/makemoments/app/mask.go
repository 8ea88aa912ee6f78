package app

import (
	"errors"
	"math"

	"github.com/roman-kulish/casakit/internal/cube"
	"github.com/roman-kulish/casakit/internal/fitscube"
	"github.com/roman-kulish/casakit/internal/flux"
)

// MaskStats describes how a cube was masked
type MaskStats struct {
	KernelPix float64 // FWHM of the spatial smoothing kernel in pixels
	RMS       float64 // rms of the smoothed cube
	Cutoff    float64
	Removed   int // structures blanked for being too small
}

// largestBeam returns the largest channel beam, or the image beam
func largestBeam(im *fitscube.Image) (flux.Beam, error) {
	var largest flux.Beam
	for _, b := range im.Beams {
		if b.Major > largest.Major {
			largest = b
		}
	}
	if !largest.IsZero() {
		return largest, nil
	}
	return im.Beam()
}

// Mask blanks the pixels of the image cube that do not belong to emission.
// A copy of the cube is smoothed to factor times the beam and Hanning
// smoothed, pixels below cutoff times its rms are blanked in the original,
// and the structures smaller than minPixels left in every channel are
// blanked too.
func Mask(im *fitscube.Image, factor, cutoff float64, minPixels int) (*cube.Cube, MaskStats, error) {
	var stats MaskStats

	beam, err := largestBeam(im)
	if err != nil {
		return nil, stats, err
	}
	pixel, err := im.PixelSize()
	if err != nil {
		return nil, stats, err
	}

	// convolving a Gaussian beam of FWHM b with a kernel of FWHM k yields
	// sqrt(b^2 + k^2)
	stats.KernelPix = beam.Major.Sec() * math.Sqrt(factor*factor-1) / pixel.Sec()

	smoothed := im.Cube.GaussianSmooth(stats.KernelPix).HanningSmooth()
	stats.RMS = smoothed.RMS()
	if math.IsNaN(stats.RMS) {
		return nil, stats, errors.New("cube has no valid pixels")
	}
	stats.Cutoff = cutoff * stats.RMS

	masked, err := im.Cube.MaskBy(smoothed, stats.Cutoff)
	if err != nil {
		return nil, stats, err
	}
	stats.Removed = masked.RemoveSmallStructures(minPixels)

	return masked, stats, nil
}
