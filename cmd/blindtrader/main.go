package main

import (
	"os"

	"github.com/rustyeddy/blindtrader/cmd/blindtrader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
