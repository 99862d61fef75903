// Package wagman talks to the Waggle "wagman" system monitor board over its
// line-oriented serial console.
//
// A command is a list of tokens sent as one line. The board answers with a
// header line starting with "<<<-", the response body, and a footer line
// starting with "->>>". Only the body reaches the caller.
//
// Each exchange opens the device, sends one command and closes the device
// again. The device is opened in exclusive mode, so while a session is
// active a second open by an unprivileged process fails with EBUSY. Root
// bypasses the lock.
//
// Features:
//   - Raw syscall-based serial I/O on Linux, go.bug.st/serial elsewhere
//   - Lazy response body as an iter.Seq2
//   - Overall timeout and line cap instead of blocking forever on a missing footer
//   - PTY-based tests for reliability
//
// Example usage:
//
//	cfg := wagman.Config{
//	    Device:   "/dev/waggle_sysmon",
//	    BaudRate: 115200,
//	    Timeout:  5 * time.Second,
//	}
//	for line, err := range wagman.Command(cfg, "id") {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(line)
//	}
//
// A missing or malformed header yields a *ProtocolError. Device failures are
// wrapped in a *TransportError. A response that never ends yields ErrTimeout.
package wagman
