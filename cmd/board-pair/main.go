// Command board-pair reads the MAC address a newly flashed board prints,
// asks the operator for the board's ID and appends the pair to a CSV file.
package main

import (
	"cmp"
	"flag"
	"os"
	"time"

	wagman "github.com/waggle-sensor/wagman-serial"
	"github.com/waggle-sensor/wagman-serial/boards"
	"github.com/waggle-sensor/wagman-serial/internal/logging"
)

func main() {
	cfg := wagman.Config{}
	flag.StringVar(&cfg.Device, "device", cmp.Or(os.Getenv("WAGMAN_DEVICE"), "/dev/ttyACM0"), "serial device")
	flag.IntVar(&cfg.BaudRate, "baud", wagman.DefaultBaudRate, "baud rate")
	flag.DurationVar(&cfg.ReadTimeout, "read-timeout", 10*time.Second, "time to wait for the board to print its MAC")
	out := flag.String("out", "boards.csv", "CSV file to append to")
	flag.Parse()

	log := logging.New(os.Stderr)
	cfg.Logger = log

	s, err := wagman.Dial(cfg)
	if err != nil {
		log.Error("open failed", "err", err)
		os.Exit(1)
	}
	mac, err := boards.ReadMAC(s)
	s.Close()
	if err != nil {
		log.Error("no mac from board", "device", cfg.Device, "err", err)
		os.Exit(1)
	}

	id, err := boards.Prompt(os.Stdin, os.Stdout, mac)
	if err != nil {
		log.Error("no board id", "err", err)
		os.Exit(1)
	}

	if err := boards.Append(*out, boards.Board{ID: id, MAC: mac}); err != nil {
		log.Error("append failed", "file", *out, "err", err)
		os.Exit(1)
	}
	log.Info("paired", "id", id, "mac", mac, "file", *out)
}
