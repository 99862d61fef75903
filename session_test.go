package wagman

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakePort replays chunks, one per Read. Once they run out it reports a read
// timeout, or readErr if set.
type fakePort struct {
	chunks   [][]byte
	readErr  error
	writeErr error
	written  []byte
	timeouts []time.Duration
	closed   int
}

func newFakePort(chunks ...string) *fakePort {
	p := &fakePort{}
	for _, c := range chunks {
		p.chunks = append(p.chunks, []byte(c))
	}
	return p
}

func (p *fakePort) Read(b []byte) (int, error) {
	if len(p.chunks) == 0 {
		if p.readErr != nil {
			return 0, p.readErr
		}
		return 0, nil
	}
	n := copy(b, p.chunks[0])
	p.chunks[0] = p.chunks[0][n:]
	if len(p.chunks[0]) == 0 {
		p.chunks = p.chunks[1:]
	}
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.timeouts = append(p.timeouts, t)
	return nil
}

func (p *fakePort) Close() error {
	p.closed++
	return nil
}

func sendAll(t *testing.T, port *fakePort, cfg Config, command ...string) ([]string, error) {
	t.Helper()
	return collect(NewSession(port, cfg).Send(command...))
}

func TestSession_CommandBytes(t *testing.T) {
	tests := []struct {
		tokens []string
		want   string
	}{
		{[]string{"id"}, "id\n"},
		{[]string{"start", "1"}, "start 1\n"},
		{[]string{"enable", "0", "", "x"}, "enable 0  x\n"},
		{nil, "\n"},
	}
	for _, tt := range tests {
		port := newFakePort("<<<-OK\n->>>END\n")
		_, err := sendAll(t, port, Config{}, tt.tokens...)
		require.NoError(t, err)
		require.Equal(t, tt.want, string(port.written))
	}
}

func TestSession_Body(t *testing.T) {
	port := newFakePort("<<<-OK\n", "a\n", "b\n", "->>>END\n")
	lines, err := sendAll(t, port, Config{}, "ping")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, lines)
	require.Equal(t, 1, port.closed)
}

func TestSession_EmptyBody(t *testing.T) {
	port := newFakePort("<<<-OK\n->>>END\n")
	lines, err := sendAll(t, port, Config{}, "ping")
	require.NoError(t, err)
	require.Empty(t, lines)
	require.Equal(t, 1, port.closed)
}

func TestSession_HeaderNotFound(t *testing.T) {
	port := newFakePort("garbage\n", "a\n", "->>>END\n")
	s := NewSession(port, Config{})

	var got []string
	var gotErr error
	for line, err := range s.Send("ping") {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, line)
	}

	var pe *ProtocolError
	require.ErrorAs(t, gotErr, &pe)
	require.Equal(t, "garbage", pe.Line)
	require.Empty(t, got)
	require.Equal(t, 1, port.closed)
}

func TestSession_FooterLookalikeHeaderIsNotFooter(t *testing.T) {
	port := newFakePort("<<<-OK\n<<<-again\n->>>\n")
	lines, err := sendAll(t, port, Config{}, "ping")
	require.NoError(t, err)
	require.Equal(t, []string{"<<<-again"}, lines)
}

func TestSession_TrimAndSplitReads(t *testing.T) {
	port := newFakePort("<<<-O", "K\r\n  hello \r\n wor", "ld\n->>>E", "ND\r\ntrailing")
	lines, err := sendAll(t, port, Config{}, "ping")
	require.NoError(t, err)
	require.Equal(t, []string{"hello", "world"}, lines)
}

func TestSession_TimeoutWithoutFooter(t *testing.T) {
	port := newFakePort("<<<-OK\n", "a\n")
	lines, err := sendAll(t, port, Config{Timeout: 50 * time.Millisecond}, "ping")
	require.ErrorIs(t, err, ErrTimeout)
	require.Nil(t, lines)
	require.Equal(t, 1, port.closed)
}

func TestSession_TimeoutBoundsReadTimeout(t *testing.T) {
	port := newFakePort("<<<-OK\n->>>\n")
	_, err := sendAll(t, port, Config{ReadTimeout: time.Hour, Timeout: time.Second}, "ping")
	require.NoError(t, err)
	require.NotEmpty(t, port.timeouts)
	for _, to := range port.timeouts {
		require.LessOrEqual(t, to, time.Second)
		require.Greater(t, to, time.Duration(0))
	}
}

func TestSession_NegativeTimeoutBlocks(t *testing.T) {
	port := newFakePort("<<<-OK\n->>>\n")
	_, err := sendAll(t, port, Config{Timeout: -1}, "ping")
	require.NoError(t, err)
	for _, to := range port.timeouts {
		require.Zero(t, to)
	}
}

func TestSession_MaxLines(t *testing.T) {
	port := newFakePort("<<<-OK\na\nb\nc\n->>>\n")
	_, err := sendAll(t, port, Config{MaxLines: 2}, "ping")
	require.ErrorIs(t, err, ErrTimeout)

	port = newFakePort("<<<-OK\na\nb\n->>>\n")
	lines, err := sendAll(t, port, Config{MaxLines: 2}, "ping")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, lines)
}

func TestSession_ReadError(t *testing.T) {
	port := newFakePort("<<<-OK\na\n")
	port.readErr = io.ErrUnexpectedEOF
	lines, err := sendAll(t, port, Config{Device: "/dev/test"}, "ping")
	require.Nil(t, lines)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, "read", te.Op)
	require.Equal(t, "/dev/test", te.Device)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Equal(t, 1, port.closed)
}

func TestSession_WriteError(t *testing.T) {
	port := newFakePort("<<<-OK\n->>>\n")
	port.writeErr = errors.New("broken pipe")
	_, err := sendAll(t, port, Config{Device: "/dev/test"}, "ping")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, "write", te.Op)
	require.Equal(t, 1, port.closed)
}

func TestSession_BreakClosesPort(t *testing.T) {
	port := newFakePort("<<<-OK\na\nb\nc\n->>>\n")
	s := NewSession(port, Config{})
	for line, err := range s.Send("ping") {
		require.NoError(t, err)
		require.Equal(t, "a", line)
		break
	}
	require.Equal(t, 1, port.closed)
	require.NoError(t, s.Close())
	require.Equal(t, 1, port.closed)
}

func TestSession_SingleUse(t *testing.T) {
	port := newFakePort("<<<-OK\n->>>\n")
	s := NewSession(port, Config{})
	_, err := collect(s.Send("ping"))
	require.NoError(t, err)

	_, err = collect(s.Send("ping"))
	require.ErrorIs(t, err, ErrSessionUsed)
	require.Equal(t, "ping\n", string(port.written))
}

func TestSession_Monitor(t *testing.T) {
	port := newFakePort("boot\n", "", "ready\r\n")
	port.readErr = io.EOF

	var got []string
	var gotErr error
	for line, err := range NewSession(port, Config{}).Monitor() {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, line)
	}
	require.Equal(t, []string{"boot", "ready"}, got)
	require.ErrorIs(t, gotErr, io.EOF)
	require.Equal(t, 1, port.closed)
}

func TestSession_ReadLine(t *testing.T) {
	port := newFakePort("00:1e:c0:\n00:1E:C0:AA:BB:CC\n")
	s := NewSession(port, Config{})

	line, err := s.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "00:1e:c0:", line)

	line, err = s.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "00:1E:C0:AA:BB:CC", line)

	_, err = s.ReadLine()
	require.ErrorIs(t, err, ErrTimeout)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "hello", normalize("  hello \r\n"))
	require.Equal(t, "", normalize("\r"))
}

func TestSession_LineTooLong(t *testing.T) {
	port := newFakePort("boot\n", strings.Repeat("x", maxLineLength), "y")
	s := NewSession(port, Config{})
	var got []string
	var gotErr error
	for line, err := range s.Monitor() {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, line)
	}
	require.Equal(t, []string{"boot"}, got)
	require.ErrorIs(t, gotErr, ErrLineTooLong)
	require.Equal(t, 1, port.closed)
}
