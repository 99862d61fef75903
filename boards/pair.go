package boards

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LineReader is satisfied by *wagman.Session.
type LineReader interface {
	ReadLine() (string, error)
}

// ReadMAC returns the MAC address a freshly connected board prints. The
// first line may have been cut off when the port opened, so it is skipped.
func ReadMAC(r LineReader) (string, error) {
	if _, err := r.ReadLine(); err != nil {
		return "", fmt.Errorf("skip partial line: %w", err)
	}
	mac, err := r.ReadLine()
	if err != nil {
		return "", fmt.Errorf("read mac: %w", err)
	}
	if mac == "" {
		return "", errors.New("read mac: empty line")
	}
	return mac, nil
}

// Prompt asks the operator for the ID of the board reporting mac.
func Prompt(in io.Reader, out io.Writer, mac string) (string, error) {
	if _, err := fmt.Fprintf(out, "%s ID: ", mac); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read id: %w", err)
	}
	id := strings.TrimSpace(line)
	if id == "" {
		return "", errors.New("read id: empty")
	}
	return id, nil
}
