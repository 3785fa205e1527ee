package main

import (
	"os"

	"pixelgardenlabs.io/pgl-mirror/cmd/pgl-mirror/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
