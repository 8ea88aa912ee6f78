package flaglog

import (
	"bytes"
	"fmt"
	"io"

	"github.com/roman-kulish/casakit/internal/casa"
)

// Category is a group of values tallied over a selection
type Category string

const (
	CategoryAntennas     Category = "antennas"
	CategoryBaselines    Category = "baselines"
	CategorySpws         Category = "spws"
	CategoryCorrelations Category = "corrs"
	CategoryChannels     Category = "chans"
	CategoryScans        Category = "scans"
	CategoryFields       Category = "fields"
)

// Categories lists the categories in reporting order
var Categories = []Category{
	CategoryAntennas,
	CategoryBaselines,
	CategorySpws,
	CategoryCorrelations,
	CategoryChannels,
	CategoryScans,
	CategoryFields,
}

// Report holds the records of a selection and their tallies
type Report struct {
	Section Section
	Records []Record

	top      int
	counters map[Category]*Counter
}

func newReport(sec Section, top int) *Report {
	r := Report{
		Section:  sec,
		top:      top,
		counters: make(map[Category]*Counter, len(Categories)),
	}
	for _, c := range Categories {
		r.counters[c] = NewCounter()
	}
	return &r
}

func (r *Report) add(rec Record) {
	r.Records = append(r.Records, rec)

	r.counters[CategoryAntennas].Add(rec.Antenna1)
	r.counters[CategoryAntennas].Add(rec.Antenna2)
	r.counters[CategoryBaselines].Add(rec.Baseline())
	r.counters[CategorySpws].Add(rec.Spw)
	r.counters[CategoryCorrelations].Add(rec.Correlation)
	r.counters[CategoryChannels].Add(rec.Channel)
	r.counters[CategoryScans].Add(rec.Scan)
	r.counters[CategoryFields].Add(rec.Field)
}

// Counter returns the full tally of a category
func (r *Report) Counter(c Category) *Counter {
	if counter, ok := r.counters[c]; ok {
		return counter
	}
	return NewCounter()
}

// Ranking returns the most common values of a category
func (r *Report) Ranking(c Category) []Count {
	return r.Counter(c).MostCommon(r.top)
}

// FlagCommand suggests a flagdata command for the most common baselines.
// Selections made of single antennas fall back to the most common antennas.
func (r *Report) FlagCommand(vis string) casa.FlagCommand {
	cmd := casa.NewFlagCommand(vis).WithoutBackup()

	if baselines := r.Ranking(CategoryBaselines); len(baselines) > 0 {
		values := make([]string, len(baselines))
		for i, b := range baselines {
			values[i] = b.Value
		}
		cmd.Antenna = casa.JoinBaselines(values)
		return cmd
	}

	antennas := r.Ranking(CategoryAntennas)
	values := make([]string, len(antennas))
	for i, a := range antennas {
		values[i] = a.Value
	}
	cmd.Antenna = casa.JoinSpw(values)
	return cmd
}

// AntennaCommands returns one flagdata command per most common antenna, to
// be completed with correlation, spw and time selections by hand
func (r *Report) AntennaCommands(vis string) []casa.FlagCommand {
	return r.GroupedAntennaCommands(vis, "", 1)
}

// GroupedAntennaCommands returns flagdata commands for the most common
// antennas, size antennas per command. With a reference antenna every
// command selects the baselines to it instead.
func (r *Report) GroupedAntennaCommands(vis, refant string, size int) []casa.FlagCommand {
	antennas := r.Ranking(CategoryAntennas)
	values := make([]string, len(antennas))
	for i, a := range antennas {
		values[i] = a.Value
	}

	groups := casa.GroupAntennas(values, refant, size)
	cmds := make([]casa.FlagCommand, len(groups))
	for i, g := range groups {
		cmd := casa.NewFlagCommand(vis).WithoutBackup()
		cmd.Antenna = g
		cmds[i] = cmd
	}
	return cmds
}

// RecordCommands returns a flagdata command for every selected point
func (r *Report) RecordCommands(vis string) []casa.FlagCommand {
	cmds := make([]casa.FlagCommand, len(r.Records))
	for i := range r.Records {
		cmds[i] = r.Records[i].FlagCommand(vis)
	}
	return cmds
}

// WriteRankings prints the N most common values of every category
func (r *Report) WriteRankings(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, c := range Categories {
		fmt.Fprintf(&buf, "%s:\n%s\n\n", c, FormatCounts(r.Ranking(c)))
	}
	return buf.WriteTo(w)
}

// WriteTo prints the rankings of every category followed by the suggested
// flagdata command
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := r.WriteRankings(w)
	if err != nil {
		return n, err
	}

	m, err := fmt.Fprintln(w, r.FlagCommand("").String())
	return n + int64(m), err
}
