package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/casakit/internal/flaglog"
	"github.com/roman-kulish/casakit/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if config.History {
		if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
			return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
		}

		store := storage.NewSqliteStore(config.DBPath)
		defer store.Close()

		if config.RunID != 0 {
			return printRun(ctx, store, config)
		}
		return printHistory(ctx, store, config)
	}

	report, logPath, err := extract(ctx, config, logger)
	if err != nil {
		return err
	}

	if err = printReport(report, config); err != nil {
		return err
	}

	if config.DBPath == "" {
		return nil
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	journal := NewJournal(store, logger)
	return journal.Save(ctx, logPath, report)
}

func extract(ctx context.Context, config *Config, logger *slog.Logger) (*flaglog.Report, string, error) {
	logPath, err := resolveLogPath(config.LogPath)
	if err != nil {
		return nil, "", err
	}

	logger.Debug("reading CASA log", slog.String("path", logPath))

	r, err := openLog(logPath)
	if err != nil {
		return nil, "", err
	}
	defer r.Close()

	options := []func(*flaglog.Extractor){
		flaglog.WithTop(config.Top),
		flaglog.WithLogger(logger),
	}
	if config.FullScan {
		options = append(options, flaglog.WithFullScanFallback())
	}
	if keep := config.Filter(); keep != nil {
		options = append(options, flaglog.WithFilter(keep))
	}

	report, err := flaglog.NewExtractor(options...).Extract(ctx, r)
	if errors.Is(err, flaglog.ErrNoSelection) {
		return nil, "", fmt.Errorf("%s: %w (use -full-scan to parse the whole log)", logPath, err)
	}
	if err != nil {
		return nil, "", err
	}

	sec := report.Section
	logger.Info("selection",
		slog.Group("points",
			slog.String("found", humanize.Comma(int64(sec.Found))),
			slog.String("unflagged", humanize.Comma(int64(sec.Unflagged))),
			slog.String("parsed", humanize.Comma(int64(len(report.Records))))),
		slog.Bool("truncated", sec.Truncated),
		slog.Bool("fullScan", sec.FullScan))

	antennas := report.Counter(flaglog.CategoryAntennas)
	if config.Refant != "" {
		if n := antennas.Get(config.Refant); n > 0 {
			logger.Warn("reference antenna is part of the selection",
				slog.String("refant", config.Refant),
				slog.Int("points", n),
				slog.Int("antennaHits", antennas.Total()))
		}
	}

	return report, logPath, nil
}

func printReport(report *flaglog.Report, config *Config) error {
	if _, err := report.WriteRankings(config.Out); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if _, err := fmt.Fprintln(config.Out, report.FlagCommand(config.Vis)); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if !config.PerLine {
		return nil
	}

	if _, err := fmt.Fprintln(config.Out, "\nper antenna:"); err != nil {
		return err
	}
	for _, cmd := range report.GroupedAntennaCommands(config.Vis, config.Refant, config.GroupSize) {
		if _, err := fmt.Fprintln(config.Out, cmd); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(config.Out, "\nper point:"); err != nil {
		return err
	}
	for _, cmd := range report.RecordCommands(config.Vis) {
		if _, err := fmt.Fprintln(config.Out, cmd); err != nil {
			return err
		}
	}

	return nil
}

func printRun(ctx context.Context, store storage.Store, config *Config) error {
	run, err := store.Run(ctx, config.RunID)
	if err != nil {
		return err
	}

	records, err := store.Records(ctx, run.ID)
	if err != nil {
		return err
	}

	w := config.Out
	if _, err = fmt.Fprintf(w, "run %d %s\nlog: %s\ncreated: %s\nfound=%s unflagged=%s reported=%s truncated=%t fullScan=%t\n\n",
		run.ID,
		run.UUID,
		run.LogPath,
		run.CreatedAt.Local().Format(time.DateTime),
		humanize.Comma(int64(run.Found)),
		humanize.Comma(int64(run.Unflagged)),
		humanize.Comma(int64(run.Reported)),
		run.Truncated,
		run.FullScan); err != nil {
		return err
	}

	for _, rec := range records {
		if _, err = fmt.Fprintln(w, rec.FlagCommand(config.Vis)); err != nil {
			return err
		}
	}
	return nil
}

func printHistory(ctx context.Context, store storage.Store, config *Config) error {
	runs, err := store.Runs(ctx)
	if err != nil {
		return err
	}

	w := config.Out
	for _, run := range runs {
		if _, err = fmt.Fprintf(w, "%d\t%s\t%s\tfound=%s reported=%s records=%s\t%s\n",
			run.ID,
			run.CreatedAt.Local().Format(time.DateTime),
			humanize.Time(run.CreatedAt),
			humanize.Comma(int64(run.Found)),
			humanize.Comma(int64(run.Reported)),
			humanize.Comma(int64(run.Records)),
			run.LogPath); err != nil {
			return err
		}
	}

	totals, err := store.AntennaTotals(ctx, config.Top)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, "\nantennas:\n"+flaglog.FormatCounts(totals)+"\n")
	return err
}
