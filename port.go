package wagman

import (
	"io"
	"log/slog"
	"time"
)

const (
	// HeaderPrefix starts the line a device sends to acknowledge a command.
	HeaderPrefix = "<<<-"
	// FooterPrefix starts the line that ends a response body.
	FooterPrefix = "->>>"

	// DefaultBaudRate is the console speed of every wagman revision.
	DefaultBaudRate = 115200
	// DefaultTimeout bounds an exchange when Config.Timeout is zero.
	DefaultTimeout = 10 * time.Second
)

// Port is a serial connection as seen by a Session.
//
// Read follows go.bug.st/serial semantics: when the read timeout expires
// before any byte arrives it returns (0, nil). A zero timeout blocks until
// data is available.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// Config holds the parameters of one command/response exchange.
type Config struct {
	Device    string
	BaudRate  int
	Delimiter string // default "\n"

	// ReadTimeout bounds a single read on the device. Zero blocks.
	ReadTimeout time.Duration
	// Timeout bounds the whole exchange, from writing the command to the
	// footer. Zero means DefaultTimeout, negative disables it.
	Timeout time.Duration
	// MaxLines caps the number of body lines. Zero means no cap.
	MaxLines int

	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.Delimiter == "" {
		c.Delimiter = "\n"
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Open opens cfg.Device as a raw 8N1 serial port at cfg.BaudRate.
func Open(cfg Config) (Port, error) {
	cfg = cfg.withDefaults()
	p, err := openPort(cfg.Device, cfg.BaudRate)
	if err != nil {
		return nil, &TransportError{Op: "open", Device: cfg.Device, Err: err}
	}
	return p, nil
}
