package main

import (
	"os"

	"github.com/visheshsingal/hitech/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
