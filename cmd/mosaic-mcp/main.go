package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/mosaic-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("mosaic-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("mosaic-tools-mcp - MCP server for building photomosaics")
			fmt.Println()
			fmt.Println("Usage: mosaic-tools-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  MOSAIC_LOG_LEVEL=debug    Log level (panic, fatal, error, warn, info, debug, trace)")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	if env := os.Getenv("MOSAIC_LOG_LEVEL"); env != "" {
		level, err := log.ParseLevel(env)
		if err != nil {
			log.WithError(err).Warn("Ignoring MOSAIC_LOG_LEVEL")
		} else {
			log.SetLevel(level)
		}
	}

	log.WithFields(log.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("Mosaic MCP server starting")

	srv := server.New(Version)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
