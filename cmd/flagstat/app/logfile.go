package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const casaLogPattern = "casa-*.log*"

// resolveLogPath returns path itself, or the most recent CASA log when path
// is a directory. CASA names its logs casa-YYYYMMDD-HHMMSS.log so the most
// recent one sorts last.
func resolveLogPath(path string) (string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("log '%s': %w", path, err)
	}
	if !stat.IsDir() {
		return path, nil
	}

	matches, err := filepath.Glob(filepath.Join(path, casaLogPattern))
	if err != nil {
		return "", fmt.Errorf("listing CASA logs: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no CASA logs in '%s'", path)
	}

	slices.Sort(matches)
	return matches[len(matches)-1], nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var err error
	for i := len(m) - 1; i >= 0; i-- {
		if cErr := m[i].Close(); cErr != nil && err == nil {
			err = cErr
		}
	}
	return err
}

type readCloser struct {
	io.Reader
	io.Closer
}

// openLog opens a plain, gzip or zstd compressed log
func openLog(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("opening compressed log: %w", err)
		}
		return readCloser{Reader: zr, Closer: multiCloser{f, zr}}, nil

	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("opening compressed log: %w", err)
		}
		return readCloser{Reader: zr, Closer: multiCloser{f, zr.IOReadCloser()}}, nil
	}

	return f, nil
}
