package fitscube

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"
)

// ErrOutOfRange is returned for coordinates outside the celestial sphere
var ErrOutOfRange = errors.New("coordinate out of range")

// ParseSky parses an equatorial position as written in CASA regions, e.g.
// "19h10m13.148s, 09d06m12.970s", "13:15:06.315,-55.09.22.764",
// "191013.148, +090612.97" or "198.776 -55.156" in degrees.
func ParseSky(s string) (unit.RA, unit.Angle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		parts = strings.Fields(s)
	}
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid position '%s': need RA and Dec", s)
	}

	ra, err := parseRA(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid RA '%s': %w", parts[0], err)
	}
	dec, err := parseDec(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid Dec '%s': %w", parts[1], err)
	}

	if deg := unit.Angle(ra).Deg(); deg < 0 || deg >= 360 {
		return 0, 0, fmt.Errorf("%w: RA %.6f deg not within [0, 360)", ErrOutOfRange, deg)
	}
	if deg := dec.Deg(); deg < -90 || deg > 90 {
		return 0, 0, fmt.Errorf("%w: Dec %.6f deg not within [-90, 90]", ErrOutOfRange, deg)
	}
	return ra, dec, nil
}

func parseRA(s string) (unit.RA, error) {
	neg, fields, deg, err := splitSexagesimal(s)
	if err != nil {
		return 0, err
	}
	if fields == nil {
		return unit.RA(unit.AngleFromDeg(deg)), nil
	}
	if neg {
		return 0, fmt.Errorf("negative right ascension")
	}

	h, m, sec, err := sexagesimalParts(fields)
	if err != nil {
		return 0, err
	}
	return unit.NewRA(h, m, sec), nil
}

func parseDec(s string) (unit.Angle, error) {
	neg, fields, deg, err := splitSexagesimal(s)
	if err != nil {
		return 0, err
	}
	if fields == nil {
		return unit.AngleFromDeg(deg), nil
	}

	d, m, sec, err := sexagesimalParts(fields)
	if err != nil {
		return 0, err
	}

	sign := byte(' ')
	if neg {
		sign = '-'
	}
	return unit.NewAngle(sign, d, m, sec), nil
}

// compactDigits is the length of the integer part of "hhmmss.s" values
const compactDigits = 6

// splitSexagesimal returns the three fields of a sexagesimal value, or nil
// fields and the value itself when s is plain decimal degrees
func splitSexagesimal(s string) (neg bool, fields []string, deg float64, err error) {
	if s == "" {
		return false, nil, 0, fmt.Errorf("empty value")
	}
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case 'h', 'd', 'm', ':', ' ', '\'':
			return ':'
		case 's', '"':
			return -1
		}
		return r
	}, s)

	fields = strings.FieldsFunc(s, func(r rune) bool { return r == ':' })
	if len(fields) == 1 {
		// CASA writes declinations as dd.mm.ss.sss
		intPart, _, _ := strings.Cut(fields[0], ".")
		if dotted := strings.SplitN(fields[0], ".", 3); len(dotted) == 3 {
			fields = dotted
		} else if len(intPart) == compactDigits {
			v := fields[0]
			fields = []string{v[0:2], v[2:4], v[4:]}
		} else {
			if deg, err = strconv.ParseFloat(fields[0], 64); err != nil {
				return false, nil, 0, err
			}
			if neg {
				deg = -deg
			}
			return neg, nil, deg, nil
		}
	}

	if len(fields) != 3 {
		return false, nil, 0, fmt.Errorf("expected 3 sexagesimal fields, got %d", len(fields))
	}
	return neg, fields, 0, nil
}

func sexagesimalParts(fields []string) (a, b int, c float64, err error) {
	if a, err = strconv.Atoi(fields[0]); err != nil {
		return
	}
	if b, err = strconv.Atoi(fields[1]); err != nil {
		return
	}
	if c, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return
	}
	if a < 0 || b < 0 || b >= 60 || c < 0 || c >= 60 {
		err = fmt.Errorf("%w: %s", ErrOutOfRange, strings.Join(fields, ":"))
	}
	return
}
