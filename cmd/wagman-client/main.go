// Command wagman-client sends one command to the wagman and prints the
// response body, one line per line.
package main

import (
	"cmp"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	wagman "github.com/waggle-sensor/wagman-serial"
	"github.com/waggle-sensor/wagman-serial/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run writes body lines to stdout and logs to stderr. It returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("wagman-client", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := wagman.Config{}
	fs.StringVar(&cfg.Device, "device", cmp.Or(os.Getenv("WAGMAN_DEVICE"), "/dev/waggle_sysmon"), "serial device")
	fs.IntVar(&cfg.BaudRate, "baud", wagman.DefaultBaudRate, "baud rate")
	fs.DurationVar(&cfg.Timeout, "timeout", wagman.DefaultTimeout, "overall response timeout (negative waits forever)")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", 0, "timeout for a single read (0 blocks)")
	fs.IntVar(&cfg.MaxLines, "max-lines", 0, "maximum body lines before giving up (0 is unlimited)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: wagman-client [flags] command [args...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	log := logging.New(stderr)
	cfg.Logger = log

	// Collect first so a failure never leaves part of a body on stdout.
	lines, err := wagman.CommandLines(cfg, fs.Args()...)
	if err != nil {
		log.Error("command failed", "command", strings.Join(fs.Args(), " "), "err", err)
		return 1
	}
	for _, line := range lines {
		fmt.Fprintln(stdout, line)
	}
	return 0
}
