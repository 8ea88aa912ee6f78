// Package casa builds and expands the selection strings understood by CASA
// tasks (spw, channel and antenna selections) and renders task invocations
// that can be pasted into a CASA session.
package casa

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	rangeSep = "~"
	listSep  = ","

	baselineSep      = "&"
	baselineGroupSep = ";"
)

// ErrInvalidRange is returned when a "start~end" selection cannot be parsed
var ErrInvalidRange = errors.New("invalid range selection")

// ExpandSpw expands a spectral window selection into single spws.
// Accepted forms are "3", "1,3,4" and "1~3".
func ExpandSpw(spw string) ([]string, error) {
	spw = strings.TrimSpace(spw)
	if spw == "" {
		return nil, nil
	}

	switch {
	case strings.Contains(spw, rangeSep):
		r, err := ParseRange(spw)
		if err != nil {
			return nil, err
		}

		spws := make([]string, 0, r.Len())
		for i := r.Start; i <= r.End; i++ {
			spws = append(spws, strconv.Itoa(i))
		}
		return spws, nil

	case strings.Contains(spw, listSep):
		parts := strings.Split(spw, listSep)
		spws := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				spws = append(spws, p)
			}
		}
		return spws, nil
	}

	return []string{spw}, nil
}

// JoinSpw is the opposite of ExpandSpw for list selections. It works for any
// CASA list selection, such as field names.
func JoinSpw(spws []string) string {
	return strings.Join(spws, listSep)
}

// Range is an inclusive integer range, as in a "485~510" channel selection
type Range struct {
	Start int
	End   int
}

// ParseRange parses "start~end" or a single integer
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, fmt.Errorf("%w: empty", ErrInvalidRange)
	}

	before, after, found := strings.Cut(s, rangeSep)
	start, err := strconv.Atoi(strings.TrimSpace(before))
	if err != nil {
		return Range{}, fmt.Errorf("%w: '%s'", ErrInvalidRange, s)
	}
	if !found {
		return Range{Start: start, End: start}, nil
	}

	end, err := strconv.Atoi(strings.TrimSpace(after))
	if err != nil {
		return Range{}, fmt.Errorf("%w: '%s'", ErrInvalidRange, s)
	}
	if end < start {
		return Range{}, fmt.Errorf("%w: '%s' ends before it starts", ErrInvalidRange, s)
	}

	return Range{Start: start, End: end}, nil
}

// Len returns the number of values in the range
func (r Range) Len() int {
	return r.End - r.Start + 1
}

// Contains reports whether v lies within the range
func (r Range) Contains(v int) bool {
	return v >= r.Start && v <= r.End
}

func (r Range) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d%s%d", r.Start, rangeSep, r.End)
}

// Baseline returns the CASA baseline selection for two antennas. The
// antennas are sorted so that "B&A" and "A&B" refer to the same baseline.
func Baseline(ant1, ant2 string) string {
	if ant2 < ant1 {
		ant1, ant2 = ant2, ant1
	}
	return ant1 + baselineSep + ant2
}

// JoinBaselines joins baseline selections into a single antenna selection
func JoinBaselines(baselines []string) string {
	return strings.Join(baselines, baselineGroupSep)
}

// GroupAntennas splits antennas into groups of at most size members, which
// is handy to plot a few baselines or antennas per figure.
//
// Without a reference antenna every group is an antenna list ("DA41,DA42").
// With one, the reference antenna is removed from the list and every group is
// a set of baselines to it ("DA41&DA42;DA41&DA43").
func GroupAntennas(antennas []string, refant string, size int) []string {
	if size <= 0 || len(antennas) == 0 {
		return nil
	}

	members := antennas
	if refant != "" {
		members = slices.DeleteFunc(slices.Clone(antennas), func(a string) bool {
			return a == refant
		})
	}

	var groups []string
	for chunk := range slices.Chunk(members, size) {
		if refant == "" {
			groups = append(groups, strings.Join(chunk, listSep))
			continue
		}

		baselines := make([]string, len(chunk))
		for i, ant := range chunk {
			baselines[i] = refant + baselineSep + ant
		}
		groups = append(groups, JoinBaselines(baselines))
	}

	return groups
}
