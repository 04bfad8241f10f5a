package main

import (
	"os"

	"github.com/ironsheep/mosaic-tools-mcp/internal/cli"
)

// Version is set by ldflags during build
var Version = "dev"

func main() {
	if err := cli.Execute(Version); err != nil {
		os.Exit(1)
	}
}
