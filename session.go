package wagman

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"
)

// Session is one command/response exchange over an open Port.
// It owns the port and closes it when the exchange ends.
type Session struct {
	port   Port
	cfg    Config
	lines  *lineReader
	log    *slog.Logger
	used   bool
	closed bool
}

// NewSession wraps an already open port.
func NewSession(port Port, cfg Config) *Session {
	cfg = cfg.withDefaults()
	return &Session{
		port:  port,
		cfg:   cfg,
		lines: newLineReader(port, cfg.Delimiter, cfg.ReadTimeout),
		log:   cfg.Logger.With("device", cfg.Device),
	}
}

// Dial opens cfg.Device and returns a session on it.
func Dial(cfg Config) (*Session, error) {
	port, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return NewSession(port, cfg), nil
}

// Send writes the command tokens joined by single spaces and a newline, then
// yields the response body in the order received. The header and footer lines
// are never yielded.
//
// The sequence is single-use. The port is closed when it ends, whether on
// the footer, an error, or the caller breaking out of the loop.
func (s *Session) Send(command ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if s.used {
			yield("", ErrSessionUsed)
			return
		}
		s.used = true
		defer s.Close()

		for line, err := range s.exchange(command) {
			if !yield(line, err) || err != nil {
				return
			}
		}
	}
}

func (s *Session) exchange(command []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var deadline time.Time
		if s.cfg.Timeout > 0 {
			deadline = time.Now().Add(s.cfg.Timeout)
		}

		text := strings.Join(command, " ")
		if _, err := s.port.Write([]byte(text + "\n")); err != nil {
			yield("", s.transportErr("write", err))
			return
		}
		s.log.Debug("sent command", "command", text)

		header, err := s.lines.readLine(deadline)
		if err != nil {
			yield("", s.wrap(err))
			return
		}
		if !strings.HasPrefix(header, HeaderPrefix) {
			yield("", &ProtocolError{Line: header})
			return
		}
		s.log.Debug("received header", "header", header)

		count := 0
		for {
			line, err := s.lines.readLine(deadline)
			if err != nil {
				yield("", s.wrap(err))
				return
			}
			if strings.HasPrefix(line, FooterPrefix) {
				s.log.Debug("received footer", "footer", line, "lines", count)
				return
			}
			if s.cfg.MaxLines > 0 && count >= s.cfg.MaxLines {
				yield("", fmt.Errorf("%w: no footer after %d lines", ErrTimeout, count))
				return
			}
			count++
			if !yield(line, nil) {
				return
			}
		}
	}
}

// ReadLine reads a single line from the device without sending anything.
// Only Config.ReadTimeout applies.
func (s *Session) ReadLine() (string, error) {
	line, err := s.lines.readLine(time.Time{})
	if err != nil {
		return "", s.wrap(err)
	}
	return line, nil
}

// Close releases the port. Safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.port.Close(); err != nil {
		return s.transportErr("close", err)
	}
	return nil
}

func (s *Session) wrap(err error) error {
	var te *TransportError
	if errors.As(err, &te) && te.Device == "" {
		te.Device = s.cfg.Device
	}
	return err
}

func (s *Session) transportErr(op string, err error) error {
	return &TransportError{Op: op, Device: s.cfg.Device, Err: err}
}

// Command opens cfg.Device, sends the command and yields the response body.
// The device is open only while the sequence is being consumed.
func Command(cfg Config, command ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		s, err := Dial(cfg)
		if err != nil {
			yield("", err)
			return
		}
		for line, err := range s.Send(command...) {
			if !yield(line, err) || err != nil {
				return
			}
		}
	}
}

// CommandLines runs Command and collects the whole body. It returns either
// every line between header and footer or an error, never part of a body.
func CommandLines(cfg Config, command ...string) ([]string, error) {
	return collect(Command(cfg, command...))
}

func collect(seq iter.Seq2[string, error]) ([]string, error) {
	lines := []string{}
	for line, err := range seq {
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Monitor yields every line the device emits until a transport error occurs
// or the caller stops. Read timeouts are skipped since an idle device is
// normal. The session is closed when the sequence ends.
func (s *Session) Monitor() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if s.used {
			yield("", ErrSessionUsed)
			return
		}
		s.used = true
		defer s.Close()

		for {
			line, err := s.lines.readLine(time.Time{})
			if errors.Is(err, ErrTimeout) {
				continue
			}
			if err != nil {
				yield("", s.wrap(err))
				return
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}
