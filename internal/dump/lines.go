package dump

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/desertthunder/tripx/internal/shared"
)

// maxLineSize bounds a single dump line; flights are the longest records by far.
// Longer lines are skipped up to their newline and counted, never fatal.
const maxLineSize = 1 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LineSource yields the trimmed, non-blank lines of a dump in order.
//
// It is forward-only and not restartable: build a new LineSource per run.
type LineSource struct {
	reader  *bufio.Reader
	buf     []byte
	line    string
	lineNo  int
	tooLong int
	started bool
	done    bool
	err     error
}

// NewLineSource wraps r in a buffered reader.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{reader: bufio.NewReaderSize(r, 64*1024)}
}

// Next advances to the next non-blank line, returning false at end of stream or on a read error.
func (s *LineSource) Next() bool {
	for !s.done {
		raw, tooLong, err := s.readLine()
		if err != nil && err != io.EOF {
			s.err = fmt.Errorf("%w: line %d: %w", shared.ErrReadSource, s.lineNo+1, err)
			s.done = true
			break
		}
		if err == io.EOF {
			s.done = true
			if len(raw) == 0 && !tooLong {
				break
			}
		}

		s.lineNo++
		if !s.started {
			raw = bytes.TrimPrefix(raw, utf8BOM)
			s.started = true
		}
		if tooLong {
			s.tooLong++
			continue
		}

		line := strings.TrimSpace(string(raw))
		if line == "" {
			continue
		}
		s.line = line
		return true
	}

	s.line = ""
	return false
}

// readLine reads up to and including the next newline. Lines over maxLineSize
// are consumed but not buffered.
func (s *LineSource) readLine() ([]byte, bool, error) {
	s.buf = s.buf[:0]
	tooLong := false
	for {
		chunk, err := s.reader.ReadSlice('\n')
		if !tooLong {
			s.buf = append(s.buf, chunk...)
			if len(bytes.TrimSuffix(s.buf, []byte{'\n'})) > maxLineSize {
				tooLong = true
				s.buf = s.buf[:0]
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return s.buf, tooLong, err
	}
}

// Line returns the current line.
func (s *LineSource) Line() string { return s.line }

// LineNo returns the 1-based physical line number of the current line, blank lines included.
func (s *LineSource) LineNo() int { return s.lineNo }

// TooLong returns the number of lines skipped for exceeding the maximum line size.
func (s *LineSource) TooLong() int { return s.tooLong }

// Err returns the read error that ended iteration, if any.
func (s *LineSource) Err() error { return s.err }

// All returns the remaining lines as an iterator. Check [LineSource.Err] after ranging.
func (s *LineSource) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for s.Next() {
			if !yield(s.line) {
				return
			}
		}
	}
}
