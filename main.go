package main

import (
	"os"

	"github.com/medibox-iot/medibox/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
