package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/roman-kulish/casakit/internal/flux"
)

// Result holds the derived quantities of a source
type Result struct {
	Name          string
	Gamma         float64 // Rayleigh-Jeans correction at the observed frequency
	Luminosity850 float64 // erg s^-1 Hz^-1
	ISMMass       float64 // Msun
	ColumnDensity float64 // cm^-2, zero when no radius is configured
}

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	results := make([]Result, 0, len(config.Sources))
	for _, s := range config.Sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := Compute(s)
		if err != nil {
			return fmt.Errorf("source '%s': %w", s.Name, err)
		}

		logger.Debug("source",
			slog.String("name", s.Name),
			slog.String("frequency", s.Frequency.String()),
			slog.Float64("redshift", s.Redshift),
			slog.Float64("gamma", r.Gamma))

		results = append(results, r)
	}

	return WriteResults(os.Stdout, results)
}

func Compute(s SourceConfig) (Result, error) {
	src := s.Source()

	lum, err := src.Luminosity850()
	if err != nil {
		return Result{}, err
	}

	mass, err := src.ISMMass()
	if err != nil {
		return Result{}, err
	}

	r := Result{
		Name:          s.Name,
		Gamma:         flux.GammaRJ(flux.DustTemperature, src.Frequency, src.Redshift),
		Luminosity850: lum,
		ISMMass:       mass,
	}

	if s.Radius > 0 {
		if r.ColumnDensity, err = flux.H2ColumnDensity(mass, s.Radius); err != nil {
			return Result{}, err
		}
	}

	return r, nil
}

func WriteResults(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "source\tgamma_RJ\tL_850 [erg/s/Hz]\tM_ISM [Msun]\tN_H2 [cm^-2]")

	for _, r := range results {
		nh2 := "-"
		if r.ColumnDensity > 0 {
			nh2 = fmt.Sprintf("%.3e", r.ColumnDensity)
		}
		fmt.Fprintf(tw, "%s\t%.4f\t%.3e\t%.3e\t%s\n", r.Name, r.Gamma, r.Luminosity850, r.ISMMass, nh2)
	}

	return tw.Flush()
}
