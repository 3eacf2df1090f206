// Package pgn reads game records from a PGN archive one at a time.
//
// The reader only tokenizes: it hands raw header bytes and the terminal
// result to a Visitor and leaves decoding and validation to the caller.
// Movetext is skimmed for the result token; moves are never parsed.
package pgn

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/okian/gambit/internal/domain/model"
)

const (
	defaultBufferSize = 64 * 1024
	maxTokenSize      = 256
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Visitor receives the parts of one record in archive order: BeginGame,
// zero or more Header calls, then exactly one Outcome.
type Visitor interface {
	BeginGame()
	// Header receives one tag pair. Slices are only valid during the call.
	Header(key, value []byte)
	// Outcome receives the terminal result, or nil for "*" or a record that
	// ends without one.
	Outcome(r *model.Result)
}

// Reader splits an archive into records.
type Reader struct {
	br          *bufio.Reader
	closer      io.Closer
	compression Compression
	games       int
	closed      bool
	bomChecked  bool

	key   []byte
	value []byte
	token []byte
}

// Option applies a configuration option to the Reader.
type Option func(*readerOptions)

type readerOptions struct {
	bufferSize int
}

// WithBufferSize sets the read buffer size.
func WithBufferSize(size int) Option {
	return func(o *readerOptions) {
		if size > 0 {
			o.bufferSize = size
		}
	}
}

// NewReader reads records from r. The caller keeps ownership of r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	o := readerOptions{bufferSize: defaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Reader{br: bufio.NewReaderSize(r, o.bufferSize), compression: CompressionNone}
}

// Compression reports how the archive was encoded on disk.
func (r *Reader) Compression() Compression { return r.compression }

// Games returns the number of records read so far.
func (r *Reader) Games() int { return r.games }

// Close releases the underlying archive when the Reader was created by Open.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// ReadGame reads the next record into v. It returns false with a nil error
// at the end of the archive. Errors are I/O failures of the underlying
// stream, including a tag pair cut off by the end of input.
func (r *Reader) ReadGame(v Visitor) (bool, error) {
	if r.closed {
		return false, ErrReaderClosed
	}
	if err := r.skipSeparators(); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}

	r.games++
	v.BeginGame()
	if err := r.readHeaders(v); err != nil {
		return false, fmt.Errorf("record %d: %w", r.games, err)
	}
	result, err := r.readMovetext()
	if err != nil {
		return false, fmt.Errorf("record %d: %w", r.games, err)
	}
	v.Outcome(result)
	return true, nil
}

// skipSeparators consumes whitespace, a byte order mark and escape lines
// until the first byte of the next record. It returns io.EOF when none is left.
func (r *Reader) skipSeparators() error {
	if !r.bomChecked {
		r.bomChecked = true
		if head, err := r.br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			_, _ = r.br.Discard(len(utf8BOM))
		}
	}
	lineStart := true
	for {
		c, err := r.br.ReadByte()
		if err != nil {
			return err
		}
		switch {
		case c == '\n':
			lineStart = true
		case isSpace(c):
			lineStart = false
		case c == '%' && lineStart:
			if err := r.skipLine(); err != nil {
				return err
			}
		default:
			return r.br.UnreadByte()
		}
	}
}

// readHeaders consumes consecutive tag pairs.
func (r *Reader) readHeaders(v Visitor) error {
	for {
		c, err := r.peekNonSpace()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if c != '[' {
			return nil
		}
		if err := r.readTag(); err != nil {
			return err
		}
		v.Header(r.key, r.value)
	}
}

// readTag parses one [Key "Value"] pair into r.key and r.value.
func (r *Reader) readTag() error {
	r.key = r.key[:0]
	r.value = r.value[:0]

	if _, err := r.br.ReadByte(); err != nil { // '['
		return err
	}
	if _, err := r.peekNonSpace(); err != nil {
		return truncated(err)
	}

	var c byte
	var err error
	for {
		if c, err = r.br.ReadByte(); err != nil {
			return truncated(err)
		}
		if c == '"' || c == ']' || isSpace(c) {
			break
		}
		r.key = append(r.key, c)
	}
	if isSpace(c) {
		if _, err = r.peekNonSpace(); err != nil {
			return truncated(err)
		}
		c, _ = r.br.ReadByte()
	}

	if c == '"' {
		if err := r.readValue(); err != nil {
			return err
		}
		c = 0
	}

	// Discard up to and including ']', tolerating junk after the value.
	for c != ']' && c != '\n' {
		if c, err = r.br.ReadByte(); err != nil {
			return truncated(err)
		}
	}
	return nil
}

// readValue reads a quoted tag value after its opening quote, resolving the
// \" and \\ escapes.
func (r *Reader) readValue() error {
	for {
		c, err := r.br.ReadByte()
		if err != nil {
			return truncated(err)
		}
		switch c {
		case '"':
			return nil
		case '\\':
			next, err := r.br.ReadByte()
			if err != nil {
				return truncated(err)
			}
			if next != '"' && next != '\\' {
				r.value = append(r.value, c)
			}
			c = next
		}
		r.value = append(r.value, c)
	}
}

// readMovetext skims movetext until the terminal result token. It returns a
// nil result for "*" and for a record that ends without a terminator, either
// at the end of input or at a '[' opening the next record's headers.
func (r *Reader) readMovetext() (*model.Result, error) {
	depth := 0
	lineStart := true
	for {
		c, err := r.br.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		switch {
		case c == '\n':
			lineStart = true
			continue
		case isSpace(c):
			continue
		case c == '{':
			if err := r.skipPast('}'); err != nil {
				return nil, eofOK(err)
			}
		case c == ';':
			if err := r.skipLine(); err != nil {
				return nil, eofOK(err)
			}
			lineStart = true
			continue
		case c == '%' && lineStart:
			if err := r.skipLine(); err != nil {
				return nil, eofOK(err)
			}
			continue
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == '[' && lineStart && depth == 0:
			return nil, r.br.UnreadByte()
		case isDelimiter(c):
			// Stray bracket or brace; nothing to read.
		default:
			if err := r.br.UnreadByte(); err != nil {
				return nil, err
			}
			tok, err := r.readToken()
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}
			if depth == 0 {
				if string(tok) == "*" {
					return nil, nil
				}
				if res, ok := model.ParseResult(string(tok)); ok {
					return &res, nil
				}
			}
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
		}
		lineStart = false
	}
}

// readToken reads a run of symbol bytes into r.token.
func (r *Reader) readToken() ([]byte, error) {
	r.token = r.token[:0]
	for {
		c, err := r.br.ReadByte()
		if err != nil {
			return r.token, err
		}
		if isSpace(c) || isDelimiter(c) {
			return r.token, r.br.UnreadByte()
		}
		if len(r.token) < maxTokenSize {
			r.token = append(r.token, c)
		}
	}
}

// peekNonSpace skips whitespace and returns the next byte without consuming it.
func (r *Reader) peekNonSpace() (byte, error) {
	for {
		c, err := r.br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !isSpace(c) {
			return c, r.br.UnreadByte()
		}
	}
}

func (r *Reader) skipLine() error {
	return r.skipPast('\n')
}

func (r *Reader) skipPast(delim byte) error {
	for {
		chunk, err := r.br.ReadSlice(delim)
		if err == nil {
			return nil
		}
		if errors.Is(err, bufio.ErrBufferFull) && len(chunk) > 0 {
			continue
		}
		return err
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDelimiter(c byte) bool {
	switch c {
	case '{', '}', '(', ')', ';', '[', ']':
		return true
	}
	return false
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrTruncatedTag, io.ErrUnexpectedEOF)
	}
	return err
}

func eofOK(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
