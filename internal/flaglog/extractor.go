package flaglog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

const (
	// DefaultTop is the number of most common values reported per category
	DefaultTop = 5

	maxLineSize      = 1 << 20
	ctxCheckInterval = 4096
)

// WithTop sets how many of the most common values are ranked per category
func WithTop(n int) func(*Extractor) {
	return func(e *Extractor) {
		e.top = n
	}
}

// WithParser sets the parser used for selection lines
func WithParser(p *Parser) func(*Extractor) {
	return func(e *Extractor) {
		e.parser = p
	}
}

// WithFullScanFallback makes the extractor parse the whole log when no
// selection marker is found, instead of failing with ErrNoSelection
func WithFullScanFallback() func(*Extractor) {
	return func(e *Extractor) {
		e.fullScanFallback = true
	}
}

// WithFilter makes the extractor keep only the records keep returns true for
func WithFilter(keep func(Record) bool) func(*Extractor) {
	return func(e *Extractor) {
		e.keep = keep
	}
}

// WithLogger sets the logger for the extractor
func WithLogger(logger *slog.Logger) func(*Extractor) {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// Extractor finds the last plotms selection in a log and tallies it
type Extractor struct {
	parser           *Parser
	top              int
	fullScanFallback bool
	keep             func(Record) bool
	logger           *slog.Logger
}

// NewExtractor creates a new Extractor
func NewExtractor(options ...func(*Extractor)) *Extractor {
	e := Extractor{
		top:    DefaultTop,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&e)
	}

	if e.parser == nil {
		e.parser = NewParser(WithParserLogger(e.logger))
	}

	return &e
}

// Extract reads a whole log and reports on its most recent selection
func (e *Extractor) Extract(ctx context.Context, r io.Reader) (*Report, error) {
	lines, err := ReadLines(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	return e.ExtractLines(lines)
}

// ExtractLines reports on the most recent selection within lines
func (e *Extractor) ExtractLines(lines []string) (*Report, error) {
	sec, err := FindSelection(lines)
	if err != nil {
		if !errors.Is(err, ErrNoSelection) || !e.fullScanFallback {
			return nil, err
		}

		e.logger.Warn("no selection marker found, scanning the whole log", slog.Int("lines", len(lines)))
		sec = fullScan(lines)
	}

	e.logger.Debug("selection located",
		slog.Group("section",
			slog.Int("start", sec.Start),
			slog.Int("end", sec.End),
			slog.Int("found", sec.Found),
			slog.Int("reported", sec.Reported),
			slog.Bool("truncated", sec.Truncated),
		))

	report := newReport(sec, e.top)
	var filtered int
	for _, line := range lines[sec.Start:sec.End] {
		rec, ok := e.parser.ParseLine(line)
		if !ok {
			continue
		}
		if e.keep != nil && !e.keep(rec) {
			filtered++
			continue
		}
		report.add(rec)
	}

	if skipped := sec.Len() - len(report.Records) - filtered; skipped > 0 || filtered > 0 {
		e.logger.Debug("lines skipped within selection",
			slog.Int("skipped", skipped),
			slog.Int("filtered", filtered))
	}

	return report, nil
}

// ReadLines splits r into lines. Lines longer than maxLineSize are cut to
// that size, they still count as one line. It gives up once ctx is done.
func ReadLines(ctx context.Context, r io.Reader) ([]string, error) {
	var lines []string
	var line []byte

	br := bufio.NewReaderSize(r, 64*1024)
	for {
		chunk, isPrefix, err := br.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if room := maxLineSize - len(line); room > 0 {
			line = append(line, chunk[:min(len(chunk), room)]...)
		}
		if isPrefix {
			continue
		}

		lines = append(lines, string(line))
		line = line[:0]

		if len(lines)%ctxCheckInterval == 0 {
			if err = ctx.Err(); err != nil {
				return nil, err
			}
		}
	}

	return lines, nil
}
