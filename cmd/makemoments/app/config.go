package app

import (
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/roman-kulish/casakit/internal/casa"
)

const (
	defaultMinPixels    = 10
	defaultSmoothFactor = 1.5
	defaultCutoff       = 1.5
)

type Config struct {
	FitsPath string
	Channels casa.Range

	// MinPixels is the smallest structure, in pixels per channel, kept in the mask
	MinPixels int

	// SmoothFactor is the resolution of the masking cube in units of the beam
	SmoothFactor float64

	// Cutoff is the masking threshold in units of the smoothed cube rms
	Cutoff float64

	// OutputPrefix is prepended to the .mom0.fits, .mom1.fits and .mom2.fits suffixes
	OutputPrefix string
	Verbose      bool
}

func NewConfigFromCLI() (*Config, error) {
	return NewConfigFromArgs(flag.CommandLine, os.Args[1:])
}

// NewConfigFromArgs parses args into a configuration using fs
func NewConfigFromArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	c := Config{}
	var chans string

	fs.StringVar(&c.FitsPath, "fits", "", "Path to the FITS image cube")
	fs.StringVar(&chans, "chans", "", "Channel range the moments are computed over, e.g. '485~510'")
	fs.IntVar(&c.MinPixels, "npix", defaultMinPixels, "Minimum number of pixels of a structure kept in the mask")
	fs.Float64Var(&c.SmoothFactor, "smooth", defaultSmoothFactor, "Resolution of the masking cube in units of the beam")
	fs.Float64Var(&c.Cutoff, "cutoff", defaultCutoff, "Masking threshold in units of the smoothed cube rms")
	fs.StringVar(&c.OutputPrefix, "o", "", "Output file prefix (default: the FITS path without extension)")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	err := func() (err error) {
		switch {
		case c.FitsPath == "":
			return errors.New("FITS path is required")
		case chans == "":
			return errors.New("channel range is required")
		case c.MinPixels < 1:
			return errors.New("minimum structure size must be at least one pixel")
		case c.SmoothFactor < 1:
			return errors.New("smoothing factor must not be below one beam")
		case c.Cutoff <= 0:
			return errors.New("cutoff must be positive")
		}

		if c.Channels, err = casa.ParseRange(chans); err != nil {
			return err
		}

		if c.OutputPrefix == "" {
			c.OutputPrefix = strings.TrimSuffix(c.FitsPath, ".fits")
		}
		return nil
	}()
	if err != nil {
		fs.Usage()
		return nil, err
	}

	return &c, nil
}
