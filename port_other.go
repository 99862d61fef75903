//go:build !linux

package wagman

import (
	"time"

	"go.bug.st/serial"
)

type bugstPort struct {
	serial.Port
}

func openPort(device string, baud int) (*bugstPort, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, err
	}
	return &bugstPort{Port: p}, nil
}

// SetReadTimeout maps a zero timeout to serial.NoTimeout.
func (p *bugstPort) SetReadTimeout(t time.Duration) error {
	if t <= 0 {
		t = serial.NoTimeout
	}
	return p.Port.SetReadTimeout(t)
}
