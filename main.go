package main

import (
	"os"

	"github.com/abhisek/sherpa/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
