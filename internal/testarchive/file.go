package testarchive

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression names accepted by WriteFile.
const (
	CompressNone = "none"
	CompressGzip = "gzip"
	CompressZstd = "zstd"
)

// WriteFile generates an archive at path, optionally compressed.
func WriteFile(path string, cfg Config, compression string) (stats Stats, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, archiveFilePermission)
	if err != nil {
		return Stats{}, fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close archive: %w", cerr)
		}
	}()

	var w io.WriteCloser
	switch compression {
	case "", CompressNone:
		return Generate(f, cfg)
	case CompressGzip:
		w = gzip.NewWriter(f)
	case CompressZstd:
		if w, err = zstd.NewWriter(f); err != nil {
			return Stats{}, fmt.Errorf("zstd writer: %w", err)
		}
	default:
		return Stats{}, fmt.Errorf("%w: unknown compression %q", ErrInvalidConfig, compression)
	}

	stats, err = Generate(w, cfg)
	if cerr := w.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("finish %s stream: %w", compression, cerr)
	}
	return stats, err
}
