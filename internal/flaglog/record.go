package flaglog

import (
	"io"
	"log/slog"

	"github.com/roman-kulish/casakit/internal/casa"
)

// Record is a single point selected in plotms. Fields that could not be
// found on the line are left empty.
type Record struct {
	Scan        string `json:"scan,omitempty"`
	Field       string `json:"field,omitempty"`
	FieldID     string `json:"fieldID,omitempty"`
	Time        string `json:"time,omitempty"`
	Antenna1    string `json:"antenna1,omitempty"`
	Antenna2    string `json:"antenna2,omitempty"`
	Spw         string `json:"spw,omitempty"`
	Channel     string `json:"channel,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
	Correlation string `json:"correlation,omitempty"`
}

// Baseline returns the sorted "ant1&ant2" pair, or an empty string for
// single-antenna selections
func (r *Record) Baseline() string {
	if r.Antenna1 == "" || r.Antenna2 == "" {
		return ""
	}
	return casa.Baseline(r.Antenna1, r.Antenna2)
}

// FlagCommand returns a flagdata command that flags exactly this point
func (r *Record) FlagCommand(vis string) casa.FlagCommand {
	cmd := casa.NewFlagCommand(vis)
	if baseline := r.Baseline(); baseline != "" {
		cmd.Antenna = baseline
	} else {
		cmd.Antenna = r.Antenna1
	}
	cmd.Correlation = r.Correlation
	cmd.Spw = r.Spw
	cmd.Scan = r.Scan
	cmd.TimeRange = r.Time
	return cmd
}

func (r *Record) set(field Field, value string) {
	switch field {
	case FieldScan:
		r.Scan = value
	case FieldField:
		r.Field = value
	case FieldTime:
		r.Time = value
	case FieldAntenna1:
		r.Antenna1 = value
	case FieldAntenna2:
		r.Antenna2 = value
	case FieldSpw:
		r.Spw = value
	case FieldChannel:
		r.Channel = value
	case FieldFrequency:
		r.Frequency = value
	case FieldCorrelation:
		r.Correlation = value
	}
}

// WithPatterns replaces the patterns used to parse selection lines
func WithPatterns(patterns Patterns) func(*Parser) {
	return func(p *Parser) {
		p.patterns = patterns
	}
}

// WithParserLogger sets the logger that receives the fields missing on a line
func WithParserLogger(logger *slog.Logger) func(*Parser) {
	return func(p *Parser) {
		p.logger = logger
	}
}

// Parser turns selection lines into records
type Parser struct {
	patterns Patterns
	logger   *slog.Logger
}

// NewParser creates a parser using the default patterns
func NewParser(options ...func(*Parser)) *Parser {
	p := Parser{
		patterns: DefaultPatterns(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&p)
	}

	return &p
}

// ParseLine extracts the fields of a selection line. It reports false when
// not a single field was found, i.e. the line is not a selection line.
func (p *Parser) ParseLine(line string) (Record, bool) {
	var rec Record
	var found int

	for _, field := range Fields {
		re, ok := p.patterns[field]
		if !ok || re == nil {
			continue
		}

		match := re.FindStringSubmatch(line)
		if match == nil {
			p.logger.Debug("field not found", slog.String("field", string(field)))
			continue
		}

		value := namedGroup(re, match, string(field))
		if value == "" {
			continue
		}

		rec.set(field, value)
		if field == FieldField {
			rec.FieldID = namedGroup(re, match, groupFieldID)
		}
		found++
	}

	return rec, found > 0
}
