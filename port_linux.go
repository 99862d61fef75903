//go:build linux

package wagman

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// ttyPort is a raw, unbuffered Linux serial port.
type ttyPort struct {
	fd        int
	timeout   time.Duration
	closeOnce sync.Once
}

func openPort(device string, baud int) (*ttyPort, error) {
	rate, err := baudToUnix(baud)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}

	if err := configure(fd, rate); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &ttyPort{fd: fd}, nil
}

func configure(fd int, rate uint32) error {
	// Only one session per device.
	if err := unix.IoctlSetInt(fd, unix.TIOCEXCL, 0); err != nil {
		return fmt.Errorf("set exclusive: %w", err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.CBAUD
	termios.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL | rate

	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("set termios: %w", err)
	}

	// Blocking from here on; poll enforces the read timeout.
	if err := unix.SetNonblock(fd, false); err != nil {
		return fmt.Errorf("set blocking: %w", err)
	}
	return nil
}

func (p *ttyPort) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	return nil
}

func (p *ttyPort) Read(b []byte) (int, error) {
	ms := -1
	if p.timeout > 0 {
		ms = int(p.timeout.Milliseconds())
		if ms == 0 {
			ms = 1
		}
	}

	pfd := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(pfd, ms)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, nil
		}
		break
	}

	if pfd[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
		return 0, fmt.Errorf("poll revents %#x", pfd[0].Revents)
	}

	n, err := unix.Read(p.fd, b)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errors.New("device hung up")
	}
	return n, nil
}

func (p *ttyPort) Write(b []byte) (int, error) {
	written := 0
	for written < len(b) {
		n, err := unix.Write(p.fd, b[written:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// Close releases the device. Safe to call multiple times.
func (p *ttyPort) Close() error {
	var err error
	p.closeOnce.Do(func() {
		var nxclErr error
		if e := unix.IoctlSetInt(p.fd, unix.TIOCNXCL, 0); e != nil {
			nxclErr = fmt.Errorf("clear exclusive: %w", e)
		}
		err = errors.Join(nxclErr, unix.Close(p.fd))
	})
	return err
}

func baudToUnix(baud int) (uint32, error) {
	switch baud {
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	default:
		return 0, fmt.Errorf("unsupported baud rate %d", baud)
	}
}
