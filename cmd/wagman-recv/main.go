// Command wagman-recv prints every line the wagman writes to its console.
package main

import (
	"cmp"
	"flag"
	"fmt"
	"os"
	"time"

	wagman "github.com/waggle-sensor/wagman-serial"
	"github.com/waggle-sensor/wagman-serial/internal/logging"
)

func main() {
	cfg := wagman.Config{}
	flag.StringVar(&cfg.Device, "device", cmp.Or(os.Getenv("WAGMAN_DEVICE"), "/dev/waggle_sysmon"), "serial device")
	flag.IntVar(&cfg.BaudRate, "baud", wagman.DefaultBaudRate, "baud rate")
	flag.DurationVar(&cfg.ReadTimeout, "read-timeout", 500*time.Millisecond, "poll interval while the device is idle")
	flag.Parse()

	log := logging.New(os.Stderr)
	cfg.Logger = log

	s, err := wagman.Dial(cfg)
	if err != nil {
		log.Error("open failed", "err", err)
		os.Exit(1)
	}
	log.Info("monitoring", "device", cfg.Device)

	for line, err := range s.Monitor() {
		if err != nil {
			log.Error("read failed", "err", err)
			os.Exit(1)
		}
		fmt.Println(line)
	}
}
