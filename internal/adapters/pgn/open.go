package pgn

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Compression identifies how an archive file is encoded.
type Compression string

// Supported archive encodings.
const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Open opens the archive at path. Gzip and zstd archives, as published by
// the large online game databases, are detected by their magic bytes and
// decompressed while reading.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenArchive, err)
	}

	r, closer, compression, err := decompress(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenArchive, path, err)
	}

	reader := NewReader(r, opts...)
	reader.closer = multiCloser{closer, f}
	reader.compression = compression
	return reader, nil
}

// decompress sniffs the stream and wraps it in the matching decoder. The
// returned closer releases the decoder only; the caller still owns src.
func decompress(src io.Reader) (io.Reader, io.Closer, Compression, error) {
	br := bufio.NewReader(src)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, "", err
	}

	switch {
	case bytes.HasPrefix(head, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, "", err
		}
		return dec, closerFunc(func() error { dec.Close(); return nil }), CompressionZstd, nil
	case bytes.HasPrefix(head, gzipMagic):
		dec, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, "", err
		}
		return dec, dec, CompressionGzip, nil
	default:
		return br, nopCloser{}, CompressionNone, nil
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// multiCloser closes every closer and returns the first error.
type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
