// Package stream decodes newline-delimited escaped literals from a
// reader. It splits the input into records, resolves each record
// through pkg/escape and hands the results to a callback. A record is
// everything up to (and excluding) the next newline byte; a trailing
// record without a final newline is flushed at EOF.
package stream

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/BLAZED-sh/unescape/pkg/escape"
	"github.com/rs/zerolog"
)

// LineDecoder reads escaped literals from an io.Reader into a growable
// buffer and resolves them record by record. It keeps track of the
// start of the next record with a cursor and compacts the buffer after
// each delivered record.
type LineDecoder struct {
	reader  io.Reader
	context context.Context
	maxRead int
	dialect escape.Dialect
	logger  zerolog.Logger

	buffer []byte
	cursor int // Points to beginning of next record
	length int // Number of bytes used in buffer

	// Decoding policy
	maxLineLength int

	// Bytes already compacted away, used to report stream offsets
	consumed int
}

// NewLineDecoder creates a decoder over reader that resolves each
// record under the given dialect. bufferSize is the initial buffer
// capacity; maxRead caps the size of a single read.
func NewLineDecoder(
	ctx context.Context,
	reader io.Reader,
	dialect escape.Dialect,
	bufferSize int,
	maxRead int,
) *LineDecoder {
	// Stdout belongs to the decoded output; logs go to stderr.
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Str("component", "stream").
		Logger()

	return &LineDecoder{
		reader:  reader,
		context: ctx,
		maxRead: maxRead,
		dialect: dialect,
		logger:  logger,

		buffer: make([]byte, 0, bufferSize),

		maxLineLength: 9999,
	}
}

// SetMaxLineLength overrides the maximum record length policy.
func (d *LineDecoder) SetMaxLineLength(n int) {
	d.maxLineLength = n
}

// Read pulls up to maxRead more bytes into the buffer, growing it if
// needed.
func (d *LineDecoder) Read() (int, error) {
	if cap(d.buffer)-d.length < d.maxRead {
		newCap := cap(d.buffer) * 2
		if newCap < d.length+d.maxRead {
			newCap = d.length + d.maxRead
		}
		newBuffer := make([]byte, d.length, newCap)
		copy(newBuffer, d.buffer[:d.length])
		d.buffer = newBuffer
	}

	// Consume whatever was read before looking at the error: a reader
	// may return data together with io.EOF.
	n, err := d.reader.Read(d.buffer[d.length : d.length+d.maxRead : cap(d.buffer)])
	d.length += n
	d.buffer = d.buffer[:d.length]
	if err != nil {
		return n, err
	}

	return n, nil
}

// NextLine locates the next complete record in the buffer. It returns
// the record's start and end offsets (end exclusive, not counting the
// newline), or end == -1 when the buffer holds no complete record yet.
func (d *LineDecoder) NextLine() (start, end int, err error) {
	start = d.cursor
	for i := start; i < d.length; i++ {
		if i-start > d.maxLineLength {
			return 0, 0, fmt.Errorf("record exceeds maximum length of %d", d.maxLineLength)
		}
		if d.buffer[i] == '\n' {
			return start, i, nil
		}
	}
	if d.length-start > d.maxLineLength {
		return 0, 0, fmt.Errorf("record exceeds maximum length of %d", d.maxLineLength)
	}
	return start, -1, nil
}

// DecodeAll reads until EOF or cancellation, calling cb with the
// resolved bytes of every record. The first failure (read error,
// policy violation or escape error) is passed to errCb and stops the
// decode; no partial record output is ever delivered.
func (d *LineDecoder) DecodeAll(cb func([]byte), errCb func(error)) {
	for {
		select {
		case <-d.context.Done():
			return
		default:
			n, err := d.Read()

			if err == io.EOF {
				if complete := d.processBuffer(cb, errCb); !complete {
					d.flush(cb, errCb)
				}
				return
			}

			// Exit on real errors
			if err != nil && err != io.ErrUnexpectedEOF {
				errCb(err)
				return
			}

			if n == 0 && err == io.ErrUnexpectedEOF {
				continue // Try reading again if we need more data
			}

			// Process available records and continue if we need more data
			if complete := d.processBuffer(cb, errCb); complete {
				return
			}
		}
	}
}

// processBuffer resolves complete records in the buffer and calls the
// callback for each. It reports true when decoding should stop.
func (d *LineDecoder) processBuffer(cb func([]byte), errCb func(err error)) (complete bool) {
	for d.length > d.cursor {
		start, end, err := d.NextLine()
		if err != nil {
			errCb(err)
			return true
		}
		if end == -1 {
			return false // Need more data
		}

		if !d.resolveRecord(d.buffer[start:end], start, cb, errCb) {
			return true
		}
		d.cursor = end + 1

		// Compact buffer after each record
		if d.cursor > 0 {
			copy(d.buffer, d.buffer[d.cursor:d.length])
			d.consumed += d.cursor
			d.length -= d.cursor
			d.buffer = d.buffer[:d.length]
			d.cursor = 0
		}
	}
	return false
}

// flush resolves a trailing record that was not newline-terminated.
func (d *LineDecoder) flush(cb func([]byte), errCb func(error)) {
	if d.length <= d.cursor {
		return
	}
	d.resolveRecord(d.buffer[d.cursor:d.length], d.cursor, cb, errCb)
	d.consumed += d.length - d.cursor
	d.cursor = 0
	d.length = 0
	d.buffer = d.buffer[:0]
}

func (d *LineDecoder) resolveRecord(record []byte, start int, cb func([]byte), errCb func(error)) bool {
	resolved, err := escape.Resolve(string(record), d.dialect)
	if err != nil {
		errCb(fmt.Errorf("record at stream offset %d: %w", d.consumed+start, err))
		return false
	}

	d.logger.Trace().
		Int("in_size", len(record)).
		Int("out_size", len(resolved)).
		Int("offset", d.consumed+start).
		Msg("Record resolved")

	cb([]byte(resolved))
	return true
}

// BufferLength returns the number of buffered bytes not yet consumed.
func (d *LineDecoder) BufferLength() int {
	return d.length
}

// Cursor returns the offset of the next record within the buffer.
func (d *LineDecoder) Cursor() int {
	return d.cursor
}

// Buffer returns the backing buffer for debugging.
func (d *LineDecoder) Buffer() []byte {
	return d.buffer
}

// BufferContent returns a preview of the unconsumed buffer content for
// debug dumps.
func (d *LineDecoder) BufferContent() string {
	const previewLimit = 256
	content := d.buffer[d.cursor:d.length]
	if len(content) > previewLimit {
		content = content[:previewLimit]
	}
	return string(content)
}
