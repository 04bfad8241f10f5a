// Package server implements the MCP (Model Context Protocol) server for the
// photomosaic tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the mosaic builder
// through the MCP protocol, so an MCP client can load a tile collection, try
// thresholds against sample images and build mosaics without the CLI.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Tile Database:
//   - mosaic_load_tiles: Scan a tile directory and make it the active database
//
// Similarity Metrics:
//   - mosaic_mean_color: Histogram-weighted mean color of an image
//   - mosaic_compare: Pixel-wise difference between two images, with an optional threshold verdict
//
// Mosaic Operations:
//   - mosaic_create: Build a mosaic from the active database
//   - mosaic_export: Write the last mosaic to a file
//
// # State
//
// Source images are cached by path for the lifetime of the process. Tile
// databases are cached by absolute directory; the most recently loaded one
// is the active database used by mosaic_create and mosaic_export.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(version)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
