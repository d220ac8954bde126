package main

import (
	"os"

	"github.com/avelhorn/linkplan/cmd/linkplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
