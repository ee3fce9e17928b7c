package main

import (
	"os"

	"github.com/zirakhr/zirak/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
