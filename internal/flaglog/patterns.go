// Package flaglog scrapes the points selected with plotms "locate" out of a
// CASA log and ranks the antennas, baselines, spws, correlations, channels,
// scans and fields that show up most often, so that a flagdata command can be
// suggested for them.
//
// A locate section in the log looks like this:
//
//	Scan=14 Field=J1427-4206 [0] Time=2019/03/21/05:12:33.0 BL=DA41@A075 & DA42@A076 [0&1] Spw=0 Chan=10 Freq=230.1234 Corr=XX X=... Y=...
//	...
//	Only first 1000 points reported above.
//	Found 2357 points (2357 unflagged)
//
// The truncation line is only present when plotms reports fewer points than
// it found.
package flaglog

import (
	"maps"
	"regexp"
)

// Field names a value parsed out of a selection line. Every pattern keyed by
// a Field must carry a named capture group of the same name.
type Field string

const (
	FieldScan        Field = "scan"
	FieldField       Field = "field"
	FieldTime        Field = "time"
	FieldAntenna1    Field = "ant1"
	FieldAntenna2    Field = "ant2"
	FieldSpw         Field = "spw"
	FieldChannel     Field = "chan"
	FieldFrequency   Field = "freq"
	FieldCorrelation Field = "corr"

	// groupFieldID is an extra group of the field pattern
	groupFieldID = "field_id"
)

// Fields lists every field in the order it appears on a selection line
var Fields = []Field{
	FieldScan,
	FieldField,
	FieldTime,
	FieldAntenna1,
	FieldAntenna2,
	FieldSpw,
	FieldChannel,
	FieldFrequency,
	FieldCorrelation,
}

// Patterns holds the regular expression used to find each field
type Patterns map[Field]*regexp.Regexp

var defaultPatterns = Patterns{
	FieldScan:  regexp.MustCompile(`Scan=(?P<scan>\d+)(?:\s|$)`),
	FieldField: regexp.MustCompile(`Field=(?P<field>[\w\s+.-]+?)\s\[(?P<field_id>\d+)\](?:\s|$)`),
	FieldTime:  regexp.MustCompile(`Time=(?P<time>[\w/:.]+)(?:\s|$)`),

	// "BL=DA41@A075 & DA42@A076 [0&1]" for baselines, "ANT1=DA41@A075 & * [0&*]"
	// when only one antenna is selected. The pad is optional.
	FieldAntenna1: regexp.MustCompile(`(?:BL|ANT1)=(?P<ant1>\w+)(?:@\w+)?\s&`),
	FieldAntenna2: regexp.MustCompile(`BL=\w+(?:@\w+)?\s&\s(?P<ant2>\w+)(?:@\w+)?\s\[[\d&]+\]`),

	FieldSpw:         regexp.MustCompile(`Spw=(?P<spw>\d+)(?:\s|$)`),
	FieldChannel:     regexp.MustCompile(`Chan=(?P<chan>\d+|<\d+~\d+>)(?:\s|$)`),
	FieldFrequency:   regexp.MustCompile(`(?:Avg\s)?Freq=(?P<freq>[\d.]+)(?:\s|$)`),
	FieldCorrelation: regexp.MustCompile(`Corr=(?P<corr>\w+)(?:\s|$)`),
}

// DefaultPatterns returns a copy of the patterns matching the plotms locate
// output of CASA 5.6 and later
func DefaultPatterns() Patterns {
	return maps.Clone(defaultPatterns)
}

var (
	foundMarker     = regexp.MustCompile(`Found (?P<found>\d+) points \((?P<unflagged>\d+) unflagged\)`)
	truncatedMarker = regexp.MustCompile(`Only first (?P<reported>\d+) points reported above`)
)

func namedGroup(re *regexp.Regexp, match []string, name string) string {
	if i := re.SubexpIndex(name); i >= 0 && i < len(match) {
		return match[i]
	}
	return ""
}
