package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/casakit/internal/flux"
)

// Frequency is a frequency in Hz written with an SI prefix, e.g. "345GHz"
type Frequency float64

func ParseFrequency(s string) (Frequency, error) {
	value, u, err := humanize.ParseSI(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("frequency '%s': %w", s, err)
	}
	if u != "" && u != "Hz" {
		return 0, fmt.Errorf("frequency '%s': unexpected unit '%s'", s, u)
	}
	return Frequency(value), nil
}

func (f Frequency) String() string {
	return humanize.SIWithDigits(float64(f), 3, "Hz")
}

func (f *Frequency) UnmarshalYAML(value *yaml.Node) error {
	freq, err := ParseFrequency(value.Value)
	if err != nil {
		return fmt.Errorf("app.Frequency: failed to parse: %s", err)
	}

	*f = freq
	return nil
}

func (f Frequency) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

// Config represents the main application configuration
type Config struct {
	Settings Settings       `yaml:"settings"`
	Sources  []SourceConfig `yaml:"sources"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel slog.Level `yaml:"logLevel"`
}

// SourceConfig describes a single continuum detection
type SourceConfig struct {
	Name      string    `yaml:"name"`
	Flux      float64   `yaml:"flux"` // mJy
	Redshift  float64   `yaml:"redshift"`
	Frequency Frequency `yaml:"frequency"`
	Distance  float64   `yaml:"distance"` // luminosity distance, Gpc
	Radius    float64   `yaml:"radius"`   // kpc, column density is skipped when zero
	Alpha     float64   `yaml:"alpha"`    // erg s^-1 Hz^-1 Msun^-1, defaults to flux.Alpha850
}

func (s SourceConfig) Source() flux.Source {
	return flux.Source{
		Flux:      s.Flux,
		Redshift:  s.Redshift,
		Frequency: float64(s.Frequency),
		Distance:  s.Distance,
		Alpha:     s.Alpha,
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err = config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if len(c.Sources) == 0 {
		return errors.New("no sources configured")
	}

	var errs []error
	for i, s := range c.Sources {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("source %d: name is required", i))
		}
		if s.Radius < 0 {
			errs = append(errs, fmt.Errorf("source %d: radius must not be negative", i))
		}
	}
	return errors.Join(errs...)
}
