// Command board-mac prints boards.csv with every MAC reduced to its
// unseparated upper-case hex form.
package main

import (
	"flag"
	"os"

	"github.com/waggle-sensor/wagman-serial/boards"
	"github.com/waggle-sensor/wagman-serial/internal/logging"
)

func main() {
	flag.Parse()
	path := "boards.csv"
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	log := logging.New(os.Stderr)

	f, err := os.Open(path)
	if err != nil {
		log.Error("open failed", "err", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := boards.Convert(f, os.Stdout); err != nil {
		log.Error("convert failed", "file", path, "err", err)
		os.Exit(1)
	}
}
