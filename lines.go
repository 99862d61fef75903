package wagman

import (
	"bytes"
	"strings"
	"time"
)

// maxLineLength bounds the bytes buffered while waiting for a delimiter.
const maxLineLength = 64 * 1024

// lineReader splits the byte stream of a Port into trimmed text lines,
// keeping whatever follows a delimiter for the next call.
type lineReader struct {
	port        Port
	delim       []byte
	readTimeout time.Duration
	buf         []byte
	pending     []byte
}

func newLineReader(port Port, delim string, readTimeout time.Duration) *lineReader {
	return &lineReader{
		port:        port,
		delim:       []byte(delim),
		readTimeout: readTimeout,
		buf:         make([]byte, 4096),
	}
}

// readLine returns the next line with surrounding whitespace removed.
// A zero deadline means no overall limit; an expired read timeout or
// deadline returns ErrTimeout.
func (r *lineReader) readLine(deadline time.Time) (string, error) {
	for {
		if idx := bytes.Index(r.pending, r.delim); idx >= 0 {
			line := string(r.pending[:idx])
			r.pending = r.pending[idx+len(r.delim):]
			return normalize(line), nil
		}

		timeout := r.readTimeout
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return "", ErrTimeout
			}
			if timeout == 0 || remaining < timeout {
				timeout = remaining
			}
		}
		if err := r.port.SetReadTimeout(timeout); err != nil {
			return "", &TransportError{Op: "set read timeout", Err: err}
		}

		n, err := r.port.Read(r.buf)
		if err != nil {
			return "", &TransportError{Op: "read", Err: err}
		}
		if n == 0 {
			return "", ErrTimeout
		}
		r.pending = append(r.pending, r.buf[:n]...)
		if len(r.pending) > maxLineLength {
			r.pending = nil
			return "", ErrLineTooLong
		}
	}
}

func normalize(line string) string {
	return strings.TrimSpace(strings.ToValidUTF8(line, "�"))
}
