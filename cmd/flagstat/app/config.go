package app

import (
	"errors"
	"flag"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/roman-kulish/casakit/internal/casa"
	"github.com/roman-kulish/casakit/internal/flaglog"
)

type Config struct {
	LogPath  string
	Top      int
	Vis      string
	DBPath   string
	PerLine  bool
	FullScan bool
	History  bool
	Verbose  bool

	// Spws keeps only selected points in these spectral windows
	Spws []string

	// Scans keeps only selected points within this scan range
	Scans *casa.Range

	// Refant and GroupSize shape the per-antenna commands
	Refant    string
	GroupSize int

	// RunID selects a single journaled run to print with History
	RunID int64

	// Out receives the report
	Out io.Writer
}

func NewConfig() *Config {
	return &Config{
		Top:       flaglog.DefaultTop,
		GroupSize: 1,
		Out:       os.Stdout,
	}
}

func NewConfigFromCLI() (*Config, error) {
	return NewConfigFromArgs(flag.CommandLine, os.Args[1:])
}

// NewConfigFromArgs parses args into a configuration using fs
func NewConfigFromArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	c := NewConfig()

	fs.StringVar(&c.LogPath, "log", "", "Path to the CASA log, or a directory holding casa-*.log files to use the latest one")
	fs.IntVar(&c.Top, "n", flaglog.DefaultTop, "Number of most common values to report per category")
	fs.StringVar(&c.Vis, "vis", "", "Measurement set to put into the suggested flagdata commands")
	fs.StringVar(&c.DBPath, "db", "", "Path to the flag journal database (optional)")
	fs.BoolVar(&c.PerLine, "per-line", false, "Print a flagdata command for every selected point")
	fs.BoolVar(&c.FullScan, "full-scan", false, "Parse the whole log when no plotms selection marker is found")
	fs.BoolVar(&c.History, "history", false, "Print the runs and antenna totals stored in the flag journal")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	fs.Int64Var(&c.RunID, "run", 0, "With -history, print the points of a single journaled run")
	fs.StringVar(&c.Refant, "refant", "", "Reference antenna: per-antenna commands select the baselines to it")
	fs.IntVar(&c.GroupSize, "group", 1, "Number of antennas per per-antenna command")

	var spw, scans string
	fs.StringVar(&spw, "spw", "", "Keep only points in these spectral windows, e.g. '0,2' or '1~3'")
	fs.StringVar(&scans, "scan", "", "Keep only points within this scan range, e.g. '10~14'")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	err := func() (err error) {
		switch {
		case c.History && c.DBPath == "":
			return errors.New("db path is required for history")
		case !c.History && c.LogPath == "":
			return errors.New("log path is required")
		case c.RunID != 0 && !c.History:
			return errors.New("run is only valid with history")
		case c.Top <= 0:
			return errors.New("number of values to report must be positive")
		case c.GroupSize <= 0:
			return errors.New("group size must be positive")
		}

		if spw != "" {
			if c.Spws, err = casa.ExpandSpw(spw); err != nil {
				return err
			}
		}
		if scans != "" {
			r, err := casa.ParseRange(scans)
			if err != nil {
				return err
			}
			c.Scans = &r
		}
		return nil
	}()

	if err != nil {
		fs.Usage()
		return nil, err
	}

	return c, nil
}

// Filter returns the record filter of the configured spw and scan
// selections, nil when there is none
func (c *Config) Filter() func(flaglog.Record) bool {
	if len(c.Spws) == 0 && c.Scans == nil {
		return nil
	}

	return func(r flaglog.Record) bool {
		if len(c.Spws) > 0 && !slices.Contains(c.Spws, r.Spw) {
			return false
		}
		if c.Scans != nil {
			scan, err := strconv.Atoi(r.Scan)
			if err != nil || !c.Scans.Contains(scan) {
				return false
			}
		}
		return true
	}
}
