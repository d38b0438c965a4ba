package main

import (
	"os"

	"github.com/conneroisu/ngvet/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
