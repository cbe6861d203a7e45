package main

import (
	"os"

	"github.com/pcouderc/worksched/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
