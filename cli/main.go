package main

import (
	"os"

	"github.com/skydock-systems/skydock-stack/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
