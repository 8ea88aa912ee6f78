package app

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/casakit/internal/casa"
	"github.com/roman-kulish/casakit/internal/flaglog"
	"github.com/roman-kulish/casakit/internal/storage"
)

const casaLog = `2019-03-21 05:20:10	INFO	PlotMS::locate+	Plotting
2019-03-21 05:20:11	INFO	PlotMS::locate+	Scan=14 Field=J1427-4206 [0] Time=2019/03/21/05:12:33.0 BL=DA42@A076 & DA41@A075 [0&1] Spw=0 Chan=10 Freq=230.1 Corr=XX X=0.1 Y=3.4
2019-03-21 05:20:11	INFO	PlotMS::locate+	Scan=14 Field=J1427-4206 [0] Time=2019/03/21/05:12:33.0 BL=DA41@A075 & DV03@A010 [0&2] Spw=0 Chan=11 Freq=230.1 Corr=YY X=0.1 Y=3.4
2019-03-21 05:20:11	INFO	PlotMS::locate+	Found 2 points (2 unflagged)
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parse(t *testing.T, args ...string) (*Config, error) {
	t.Helper()

	fs := flag.NewFlagSet("flagstat", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return NewConfigFromArgs(fs, args)
}

func TestNewConfigFromArgs(t *testing.T) {
	c, err := parse(t, "-log", "casa.log", "-n", "3", "-vis", "uid.ms", "-per-line")
	require.NoError(t, err)
	require.Equal(t, "casa.log", c.LogPath)
	require.Equal(t, 3, c.Top)
	require.Equal(t, "uid.ms", c.Vis)
	require.True(t, c.PerLine)
	require.False(t, c.FullScan)

	_, err = parse(t)
	require.Error(t, err)

	_, err = parse(t, "-history")
	require.Error(t, err)

	_, err = parse(t, "-log", "casa.log", "-n", "0")
	require.Error(t, err)

	c, err = parse(t, "-history", "-db", "journal.sqlite")
	require.NoError(t, err)
	require.True(t, c.History)

	c, err = parse(t, "-log", "casa.log", "-spw", "1~3", "-scan", "10~14", "-refant", "DA41", "-group", "3")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, c.Spws)
	require.Equal(t, &casa.Range{Start: 10, End: 14}, c.Scans)
	require.Equal(t, "DA41", c.Refant)
	require.Equal(t, 3, c.GroupSize)

	_, err = parse(t, "-log", "casa.log", "-spw", "3~1")
	require.ErrorIs(t, err, casa.ErrInvalidRange)

	_, err = parse(t, "-log", "casa.log", "-group", "0")
	require.Error(t, err)

	_, err = parse(t, "-log", "casa.log", "-run", "2")
	require.Error(t, err)

	c, err = parse(t, "-history", "-db", "journal.sqlite", "-run", "2")
	require.NoError(t, err)
	require.Equal(t, int64(2), c.RunID)
}

func TestConfig_Filter(t *testing.T) {
	c := NewConfig()
	require.Nil(t, c.Filter())

	c.Spws = []string{"0", "2"}
	c.Scans = &casa.Range{Start: 10, End: 14}
	keep := c.Filter()

	require.True(t, keep(flaglog.Record{Spw: "2", Scan: "14"}))
	require.False(t, keep(flaglog.Record{Spw: "1", Scan: "14"}))
	require.False(t, keep(flaglog.Record{Spw: "0", Scan: "15"}))
	require.False(t, keep(flaglog.Record{Spw: "0"}))
}

func TestResolveLogPath(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"casa-20190321-041000.log", "casa-20190321-052000.log", "ipython.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	path, err := resolveLogPath(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "casa-20190321-052000.log"), path)

	path, err = resolveLogPath(filepath.Join(dir, "ipython.log"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "ipython.log"), path)

	_, err = resolveLogPath(t.TempDir())
	require.Error(t, err)

	_, err = resolveLogPath(filepath.Join(dir, "missing.log"))
	require.Error(t, err)
}

func TestOpenLog_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casa-20190321-052000.log.gz")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(casaLog))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	r, err := openLog(path)
	require.NoError(t, err)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, casaLog, string(data))
}

func TestOpenLog_Zstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casa-20190321-052000.log.zst")

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write([]byte(casaLog))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	r, err := openLog(path)
	require.NoError(t, err)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, casaLog, string(data))
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	logPath := filepath.Join(dir, "casa-20190321-052000.log")
	dbPath := filepath.Join(dir, "journal.sqlite")
	require.NoError(t, os.WriteFile(logPath, []byte(casaLog), 0o644))

	var out bytes.Buffer
	c := NewConfig()
	c.LogPath = dir
	c.Vis = "uid.ms"
	c.DBPath = dbPath
	c.PerLine = true
	c.Out = &out

	require.NoError(t, Run(ctx, c, discardLogger()))

	report := out.String()
	require.Contains(t, report, "antennas:\nDA41[2] DA42[1] DV03[1]\n")
	require.Contains(t, report, "flagdata(vis='uid.ms', mode='manual', antenna='DA41&DA42;DA41&DV03', flagbackup=False)")
	require.Contains(t, report, "per point:")
	require.Contains(t, report, "correlation='YY'")

	store := storage.NewSqliteStore(dbPath)
	t.Cleanup(func() { _ = store.Close() })

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, logPath, runs[0].LogPath)
	require.Equal(t, 2, runs[0].Records)

	out.Reset()
	c = NewConfig()
	c.History = true
	c.DBPath = dbPath
	c.Out = &out

	require.NoError(t, Run(ctx, c, discardLogger()))
	require.Contains(t, out.String(), "antennas:\nDA41[2] DA42[1] DV03[1]\n")
	require.True(t, strings.HasPrefix(out.String(), "1\t"))

	out.Reset()
	c.RunID = runs[0].ID
	c.Vis = "uid.ms"
	require.NoError(t, Run(ctx, c, discardLogger()))
	require.Contains(t, out.String(), "log: "+logPath+"\n")
	require.Contains(t, out.String(), "found=2 unflagged=2 reported=2")
	require.Contains(t, out.String(),
		"flagdata(vis='uid.ms', mode='manual', antenna='DA41&DV03', correlation='YY', spw='0', scan='14', timerange='2019/03/21/05:12:33.0')")

	c.RunID = 99
	require.Error(t, Run(ctx, c, discardLogger()))
}

func TestRun_FilterAndGroups(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "casa.log")
	require.NoError(t, os.WriteFile(logPath, []byte(casaLog), 0o644))

	var out bytes.Buffer
	c, err := parse(t, "-log", logPath, "-vis", "uid.ms", "-per-line", "-refant", "DA41", "-group", "2")
	require.NoError(t, err)
	c.Out = &out

	require.NoError(t, Run(context.Background(), c, discardLogger()))
	require.Contains(t, out.String(), "per antenna:\nflagdata(vis='uid.ms', mode='manual', antenna='DA41&DA42;DA41&DV03', flagbackup=False)\n")

	out.Reset()
	c, err = parse(t, "-log", logPath, "-spw", "1")
	require.NoError(t, err)
	c.Out = &out

	require.NoError(t, Run(context.Background(), c, discardLogger()))
	require.Contains(t, out.String(), "antennas:\n\n")
}

func TestRun_NoSelection(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "casa.log")
	require.NoError(t, os.WriteFile(logPath, []byte("2019-03-21 05:20:10\tINFO\tplotms\tPlotting\n"), 0o644))

	c := NewConfig()
	c.LogPath = logPath
	c.Out = io.Discard

	require.Error(t, Run(context.Background(), c, discardLogger()))

	c.FullScan = true
	require.NoError(t, Run(context.Background(), c, discardLogger()))
}
