package main

import (
	"os"

	"github.com/samjwu/rocFFT/cmd/rtcgen/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
