package flaglog

import (
	"errors"
	"strconv"
)

// ErrNoSelection is returned when the log holds no "Found N points" marker
var ErrNoSelection = errors.New("no plotms selection found in log")

// Section locates the lines of the most recent plotms selection within a log
type Section struct {
	Start int // index of the first selection line
	End   int // index one past the last selection line

	Found     int  // points found by plotms
	Unflagged int  // unflagged points among them
	Reported  int  // points printed to the log
	Truncated bool // plotms printed fewer points than it found
	FullScan  bool // no marker was found and the whole log is used
}

// Len returns the number of lines in the section
func (s Section) Len() int {
	return s.End - s.Start
}

// FindSelection returns the most recent selection section of lines.
//
// The section ends right above the "Found N points" marker and spans N lines.
// When the marker is preceded by "Only first K points reported above" the
// section ends above that line and spans K lines. The start is clamped to the
// beginning of the log.
func FindSelection(lines []string) (Section, error) {
	for i := len(lines) - 1; i >= 0; i-- {
		match := foundMarker.FindStringSubmatch(lines[i])
		if match == nil {
			continue
		}

		sec := Section{End: i}
		sec.Found, _ = strconv.Atoi(namedGroup(foundMarker, match, "found"))
		sec.Unflagged, _ = strconv.Atoi(namedGroup(foundMarker, match, "unflagged"))
		sec.Reported = sec.Found

		if i > 0 {
			if over := truncatedMarker.FindStringSubmatch(lines[i-1]); over != nil {
				sec.Reported, _ = strconv.Atoi(namedGroup(truncatedMarker, over, "reported"))
				sec.Truncated = true
				sec.End = i - 1
			}
		}

		sec.Start = max(sec.End-sec.Reported, 0)
		return sec, nil
	}

	return Section{}, ErrNoSelection
}

func fullScan(lines []string) Section {
	return Section{
		End:      len(lines),
		Found:    len(lines),
		Reported: len(lines),
		FullScan: true,
	}
}
