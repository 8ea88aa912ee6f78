package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/casakit/internal/fitscube"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) (err error) {
	im, err := fitscube.Open(config.FitsPath)
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	aper, err := Aperture(im, config.Position, config.Diameter)
	if err != nil {
		return err
	}

	logger.Info("aperture",
		slog.Float64("x", aper.X),
		slog.Float64("y", aper.Y),
		slog.Float64("radiusPix", aper.Radius),
		slog.Float64("diameterArcsec", config.Diameter.Sec()))

	spectrum, err := Spectrum(im, aper, config.Diameter)
	if err != nil {
		return err
	}

	if peak, ok := Peak(spectrum); ok {
		logger.Info("peak",
			slog.Int("channel", peak.Index),
			slog.String("frequency", humanize.SIWithDigits(peak.Frequency, 4, "Hz")),
			slog.String("flux", humanize.SIWithDigits(peak.Flux, 3, "Jy")),
			slog.Float64("tb", peak.Tb))
	}

	out, err := os.Create(config.OutputPath)
	if err != nil {
		return fmt.Errorf("creating spectrum file: %w", err)
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing spectrum file: %w", cErr)
		}
	}()

	if err = WriteCSV(out, spectrum); err != nil {
		return fmt.Errorf("writing spectrum: %w", err)
	}

	logger.Info("spectrum written", slog.String("path", config.OutputPath), slog.Int("channels", len(spectrum)))
	return nil
}
