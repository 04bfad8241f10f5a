package server

import "github.com/ironsheep/mosaic-tools-mcp/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func filterNames() []string {
	names := make([]string, len(imaging.Filters))
	for i, f := range imaging.Filters {
		names[i] = string(f)
	}
	return names
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Tile Database
		{
			Name:        "mosaic_load_tiles",
			Description: "Scan a directory of tile images, compute each tile's mean color and make it the active tile database for mosaic_create. Directories are cached; loading the same directory again reuses the scan unless reload is set.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tiles_dir": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the directory holding tile images (not searched recursively)",
					},
					"filter": map[string]interface{}{
						"type":        "string",
						"enum":        filterNames(),
						"description": "Resampling filter used to fit tiles to regions. Default nearest",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Quadrant subtrees built concurrently (1 = sequential, -1 = all CPUs). Default 1",
					},
					"max_depth": map[string]interface{}{
						"type":        "integer",
						"description": "Subdivision depth limit. Default 0 derives it from the image size",
					},
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Rescan the directory even if it was loaded before",
						"default":     false,
					},
				},
				"required": []string{"tiles_dir"},
			},
		},

		// Similarity Metrics
		{
			Name:        "mosaic_mean_color",
			Description: "Compute the histogram-weighted mean RGB color of an image, the value tiles are matched on.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "mosaic_compare",
			Description: "Compute the mean per-pixel RGB distance between two images, resizing the second to the first's size. With a threshold, also reports whether the second image would be accepted as an exact match for the first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the reference image",
					},
					"candidate_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image compared against the reference",
					},
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Optional acceptance threshold (>= 0). A distance equal to the threshold is accepted",
					},
					"filter": map[string]interface{}{
						"type":        "string",
						"enum":        filterNames(),
						"description": "Resampling filter for the candidate. Default nearest",
					},
					"include_difference": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the per-pixel difference image as base64 PNG",
						"default":     false,
					},
				},
				"required": []string{"path", "candidate_path"},
			},
		},

		// Mosaic Operations
		{
			Name:        "mosaic_create",
			Description: "Build a photomosaic of an image from the active tile database. Regions smaller than min_size get the tile with the closest mean color; with a threshold, larger regions that some tile reproduces closely enough get that tile; all other regions are split into quadrants.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the source image",
					},
					"min_size": map[string]interface{}{
						"type":        "integer",
						"description": "Regions narrower or shorter than this many pixels are never subdivided",
					},
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Optional exact-match threshold (>= 0). Omit for the basic mean-color mosaic",
					},
					"tiles_dir": map[string]interface{}{
						"type":        "string",
						"description": "Optional tile directory; loaded as by mosaic_load_tiles before building",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to export the result to; format from the extension",
					},
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the mosaic as base64 PNG",
						"default":     false,
					},
				},
				"required": []string{"path", "min_size"},
			},
		},
		{
			Name:        "mosaic_export",
			Description: "Write the most recent mosaic to a file. The format is chosen from the extension (.png, .jpg, .jpeg, .gif, .bmp, .tif, .tiff). Does nothing if no mosaic has been created yet.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the file to write",
					},
				},
				"required": []string{"output_path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
