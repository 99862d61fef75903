// Package boards keeps the production record that pairs each board's
// identifier with the MAC address it reports over serial.
package boards

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Board is one row of boards.csv.
type Board struct {
	ID  string
	MAC string
}

// FormatMAC drops the first two colon-separated groups of mac and renders
// the rest as upper-case hex bytes with no separator:
// "AA:BB:CC:DD:EE:FF" becomes "CCDDEEFF".
func FormatMAC(mac string) (string, error) {
	groups := strings.Split(strings.TrimSpace(mac), ":")
	if len(groups) < 3 {
		return "", fmt.Errorf("mac %q: need at least 3 groups, got %d", mac, len(groups))
	}

	var sb strings.Builder
	for _, g := range groups[2:] {
		v, err := strconv.ParseUint(g, 16, 8)
		if err != nil {
			return "", fmt.Errorf("mac %q: group %q: %w", mac, g, err)
		}
		fmt.Fprintf(&sb, "%02X", v)
	}
	return sb.String(), nil
}

// Read parses id,mac records. Lines are trimmed first, so blank lines and
// lines starting with '#' after indentation are skipped. Stray quotes inside
// a field are kept as-is.
func Read(r io.Reader) ([]Board, error) {
	var trimmed strings.Builder
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		trimmed.WriteString(line)
		trimmed.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read boards: %w", err)
	}

	cr := csv.NewReader(strings.NewReader(trimmed.String()))
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var out []Board
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read boards: %w", err)
		}
		out = append(out, Board{
			ID:  strings.TrimSpace(rec[0]),
			MAC: strings.TrimSpace(rec[1]),
		})
	}
}

// Write writes boards as id,mac records.
func Write(w io.Writer, boards []Board) error {
	cw := csv.NewWriter(w)
	for _, b := range boards {
		if err := cw.Write([]string{b.ID, b.MAC}); err != nil {
			return fmt.Errorf("write boards: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Convert reads id,mac records from r and writes id,FORMATTED to w.
func Convert(r io.Reader, w io.Writer) error {
	in, err := Read(r)
	if err != nil {
		return err
	}

	out := make([]Board, 0, len(in))
	for _, b := range in {
		mac, err := FormatMAC(b.MAC)
		if err != nil {
			return fmt.Errorf("board %s: %w", b.ID, err)
		}
		out = append(out, Board{ID: b.ID, MAC: mac})
	}
	return Write(w, out)
}

// Append adds one record to the CSV file at path, creating it if needed.
func Append(path string, b Board) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := Write(f, []Board{b}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
