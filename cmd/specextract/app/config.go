package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"

	"github.com/roman-kulish/casakit/internal/fitscube"
)

// Position is an aperture centre, either on the sky or in 0-based pixels
type Position struct {
	Sky  bool
	RA   unit.RA
	Dec  unit.Angle
	X, Y float64
}

type Config struct {
	FitsPath   string
	Position   Position
	Diameter   unit.Angle
	OutputPath string
	Verbose    bool
}

func NewConfigFromCLI() (*Config, error) {
	return NewConfigFromArgs(flag.CommandLine, os.Args[1:])
}

// NewConfigFromArgs parses args into a configuration using fs
func NewConfigFromArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	var c Config
	var sky, pix string
	var diameter float64

	fs.StringVar(&c.FitsPath, "fits", "", "Path to the FITS image cube")
	fs.StringVar(&sky, "pos", "", "Aperture centre as 'hh:mm:ss.s,dd.mm.ss.s', 'hhmmss.s, +ddmmss.s' or decimal degrees")
	fs.StringVar(&pix, "pix", "", "Aperture centre as 0-based pixel coordinates 'x,y'")
	fs.Float64Var(&diameter, "diameter", 0, "Aperture diameter in arcsec")
	fs.StringVar(&c.OutputPath, "o", "", "Path to the output CSV file (default: <fits>.spec.csv)")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	err := func() error {
		if c.FitsPath == "" {
			return errors.New("FITS path is required")
		}
		if diameter <= 0 {
			return errors.New("aperture diameter must be positive")
		}
		c.Diameter = unit.AngleFromSec(diameter)

		switch {
		case sky != "" && pix != "":
			return errors.New("either sky or pixel position is expected, not both")
		case sky != "":
			ra, dec, err := fitscube.ParseSky(sky)
			if err != nil {
				return err
			}
			c.Position = Position{Sky: true, RA: ra, Dec: dec}
		case pix != "":
			x, y, err := parsePixel(pix)
			if err != nil {
				return err
			}
			c.Position = Position{X: x, Y: y}
		default:
			return errors.New("aperture position is required")
		}

		if c.OutputPath == "" {
			c.OutputPath = strings.TrimSuffix(c.FitsPath, ".fits") + ".spec.csv"
		}
		return nil
	}()
	if err != nil {
		fs.Usage()
		return nil, err
	}

	return &c, nil
}

func parsePixel(s string) (x, y float64, err error) {
	before, after, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("pixel position '%s': expected x,y", s)
	}
	if x, err = strconv.ParseFloat(strings.TrimSpace(before), 64); err != nil {
		return 0, 0, fmt.Errorf("pixel position '%s': %w", s, err)
	}
	if y, err = strconv.ParseFloat(strings.TrimSpace(after), 64); err != nil {
		return 0, 0, fmt.Errorf("pixel position '%s': %w", s, err)
	}
	return x, y, nil
}
