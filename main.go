package main

import (
	"os"

	"github.com/conneroisu/transmerge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
