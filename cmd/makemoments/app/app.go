package app

import (
	"context"
	"log/slog"
	"slices"

	"github.com/astrogo/fitsio"

	"github.com/roman-kulish/casakit/internal/cube"
	"github.com/roman-kulish/casakit/internal/fitscube"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	im, err := fitscube.Open(config.FitsPath)
	if err != nil {
		return err
	}

	logger.Debug("cube loaded",
		slog.String("path", config.FitsPath),
		slog.Group("shape",
			slog.Int("nx", im.Cube.Nx),
			slog.Int("ny", im.Cube.Ny),
			slog.Int("nz", im.Cube.Nz)))

	if err = ctx.Err(); err != nil {
		return err
	}

	masked, stats, err := Mask(im, config.SmoothFactor, config.Cutoff, config.MinPixels)
	if err != nil {
		return err
	}

	logger.Info("mask",
		slog.Float64("kernelPix", stats.KernelPix),
		slog.Float64("rms", stats.RMS),
		slog.Float64("cutoff", stats.Cutoff),
		slog.Int("structuresRemoved", stats.Removed))

	if err = ctx.Err(); err != nil {
		return err
	}

	axis, axisUnit, err := im.SpectralAxis()
	if err != nil {
		return err
	}

	moments, err := masked.Moments(config.Channels.Start, config.Channels.End, axis)
	if err != nil {
		return err
	}

	paths, err := WriteMoments(im, moments, axisUnit, config.OutputPrefix)
	if err != nil {
		return err
	}

	for _, path := range paths {
		logger.Info("moment map written", slog.String("path", path))
	}
	return nil
}

// WriteMoments saves the moment maps next to each other as
// <prefix>.mom0.fits, <prefix>.mom1.fits and <prefix>.mom2.fits
func WriteMoments(im *fitscube.Image, m *cube.Moments, axisUnit, prefix string) ([]string, error) {
	bunit, ok := im.Text("BUNIT")
	if !ok {
		bunit = "Jy/beam"
	}

	maps := []struct {
		suffix string
		data   *cube.Cube
		unit   string
	}{
		{".mom0.fits", m.Zero, bunit + "." + axisUnit},
		{".mom1.fits", m.One, axisUnit},
		{".mom2.fits", m.Two, axisUnit},
	}

	paths := make([]string, 0, len(maps))
	for _, mm := range maps {
		out := &fitscube.Image{Cube: mm.data, Cards: slices.Clone(im.Cards)}
		out.SetCard(fitsio.Card{Name: "BUNIT", Value: mm.unit})

		path := prefix + mm.suffix
		if err := out.Write(path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}
