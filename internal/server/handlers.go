package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/mosaic-tools-mcp/internal/imaging"
	"github.com/ironsheep/mosaic-tools-mcp/internal/mosaic"
	"github.com/ironsheep/mosaic-tools-mcp/internal/tiledb"
)

// errNoTiles is returned by tools that need a tile database before one was loaded.
var errNoTiles = errors.New("no tile database loaded: call mosaic_load_tiles or pass tiles_dir")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "mosaic_create").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		log.WithFields(log.Fields{"tool": params.Name}).WithError(err).Warn("Tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging/tiledb/mosaic function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Tile Database
	case "mosaic_load_tiles":
		return s.handleLoadTiles(args)

	// Similarity Metrics
	case "mosaic_mean_color":
		return s.handleMeanColor(args)
	case "mosaic_compare":
		return s.handleCompare(args)

	// Mosaic Operations
	case "mosaic_create":
		return s.handleCreate(args)
	case "mosaic_export":
		return s.handleExport(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Tile Database Handlers ===

type loadTilesArgs struct {
	TilesDir string `json:"tiles_dir"`
	Filter   string `json:"filter"`
	Workers  int    `json:"workers"`
	MaxDepth int    `json:"max_depth"`
	Reload   bool   `json:"reload"`
}

// TileSummary describes one tile of the active database.
type TileSummary struct {
	ID     tiledb.TileID       `json:"id"`
	Path   string              `json:"path"`
	Hash   tiledb.ContentHash  `json:"hash"`
	Mean   imaging.ColorTriple `json:"mean"`
	Hex    string              `json:"hex"`
	Width  int                 `json:"width"`
	Height int                 `json:"height"`
}

// LoadTilesResult is returned by mosaic_load_tiles.
type LoadTilesResult struct {
	TilesDir   string            `json:"tiles_dir"`
	TileCount  int               `json:"tile_count"`
	Cached     bool              `json:"cached"`
	Filter     imaging.Filter    `json:"filter"`
	Workers    int               `json:"workers"`
	Duplicates [][]tiledb.TileID `json:"duplicates,omitempty"`
	Tiles      []TileSummary     `json:"tiles"`
}

func (s *Server) handleLoadTiles(args json.RawMessage) (interface{}, error) {
	var a loadTilesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.TilesDir == "" {
		return nil, fmt.Errorf("%w: tiles_dir is required", imaging.ErrInvalidInput)
	}
	filter, err := imaging.ParseFilter(a.Filter)
	if err != nil {
		return nil, err
	}

	b, cached, err := s.loadBuilder(a.TilesDir, mosaic.Config{
		Filter:   filter,
		Workers:  a.Workers,
		MaxDepth: a.MaxDepth,
	}, a.Reload)
	if err != nil {
		return nil, err
	}

	db := b.Database()
	result := &LoadTilesResult{
		TilesDir:   a.TilesDir,
		TileCount:  db.Len(),
		Cached:     cached,
		Filter:     b.Config().Filter,
		Workers:    b.Config().Workers,
		Duplicates: db.Duplicates(),
		Tiles:      make([]TileSummary, 0, db.Len()),
	}
	for _, t := range db.Tiles() {
		result.Tiles = append(result.Tiles, TileSummary{
			ID:     t.ID,
			Path:   t.Path,
			Hash:   t.Hash,
			Mean:   t.Mean,
			Hex:    t.Mean.Hex(),
			Width:  t.Width,
			Height: t.Height,
		})
	}
	return result, nil
}

// loadBuilder returns a builder over dir's tiles and makes it the active one.
// A directory already scanned is reused unless reload is set; the builder is
// recreated whenever cfg differs from the cached one.
func (s *Server) loadBuilder(dir string, cfg mosaic.Config, reload bool) (*mosaic.Builder, bool, error) {
	key, err := filepath.Abs(dir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, cached := s.builders[key]
	if cached && !reload {
		if existing.Config() == cfg.WithDefaults() {
			s.active = existing
			return existing, true, nil
		}
		b, err := mosaic.New(existing.Database(), cfg)
		if err != nil {
			return nil, false, err
		}
		s.builders[key] = b
		s.active = b
		return b, true, nil
	}

	b, err := mosaic.NewFromDir(key, cfg)
	if err != nil {
		return nil, false, err
	}
	s.builders[key] = b
	s.active = b
	return b, false, nil
}

func (s *Server) activeBuilder() (*mosaic.Builder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil, errNoTiles
	}
	return s.active, nil
}

// === Similarity Metric Handlers ===

type meanColorArgs struct {
	Path string `json:"path"`
}

// MeanColorResult is returned by mosaic_mean_color.
type MeanColorResult struct {
	Path string `json:"path"`
	imaging.ImageInfo
	Mean imaging.ColorTriple `json:"mean"`
	Hex  string              `json:"hex"`
}

func (s *Server) handleMeanColor(args json.RawMessage) (interface{}, error) {
	var a meanColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	mean, err := imaging.MeanColor(img)
	if err != nil {
		return nil, err
	}
	return &MeanColorResult{
		Path:      a.Path,
		ImageInfo: *info,
		Mean:      mean,
		Hex:       mean.Hex(),
	}, nil
}

type compareArgs struct {
	Path              string   `json:"path"`
	CandidatePath     string   `json:"candidate_path"`
	Threshold         *float64 `json:"threshold"`
	Filter            string   `json:"filter"`
	IncludeDifference bool     `json:"include_difference"`
}

// CompareResult is returned by mosaic_compare.
type CompareResult struct {
	Distance         float64  `json:"distance"`
	Threshold        *float64 `json:"threshold,omitempty"`
	Match            *bool    `json:"match,omitempty"`
	MeanDistance     float64  `json:"mean_color_distance"`
	DifferenceBase64 string   `json:"difference_base64,omitempty"`
}

func (s *Server) handleCompare(args json.RawMessage) (interface{}, error) {
	var a compareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	filter, err := imaging.ParseFilter(a.Filter)
	if err != nil {
		return nil, err
	}

	ref, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	cand, err := s.cache.Load(a.CandidatePath)
	if err != nil {
		return nil, err
	}

	result := &CompareResult{Threshold: a.Threshold}
	if a.Threshold != nil {
		dist, ok, err := imaging.PixelDifference(ref, cand, *a.Threshold, filter)
		if err != nil {
			return nil, err
		}
		result.Distance = dist
		result.Match = &ok
	} else {
		result.Distance, err = imaging.MeanPixelDistance(ref, cand, filter)
		if err != nil {
			return nil, err
		}
	}

	refMean, err := imaging.MeanColor(ref)
	if err != nil {
		return nil, err
	}
	candMean, err := imaging.MeanColor(cand)
	if err != nil {
		return nil, err
	}
	result.MeanDistance = imaging.ColorDistance(refMean, candMean)

	if a.IncludeDifference {
		diff, err := imaging.DifferenceImage(ref, cand, filter)
		if err != nil {
			return nil, err
		}
		if result.DifferenceBase64, err = imaging.EncodePNGBase64(diff); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// === Mosaic Operation Handlers ===

type createArgs struct {
	Path       string   `json:"path"`
	MinSize    int      `json:"min_size"`
	Threshold  *float64 `json:"threshold"`
	TilesDir   string   `json:"tiles_dir"`
	OutputPath string   `json:"output_path"`
	Preview    bool     `json:"preview"`
}

// CreateResult is returned by mosaic_create.
type CreateResult struct {
	Width         int          `json:"width"`
	Height        int          `json:"height"`
	TileCount     int          `json:"tile_count"`
	Stats         mosaic.Stats `json:"stats"`
	OutputPath    string       `json:"output_path,omitempty"`
	PreviewBase64 string       `json:"preview_base64,omitempty"`
}

func (s *Server) handleCreate(args json.RawMessage) (interface{}, error) {
	var a createArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var b *mosaic.Builder
	var err error
	if a.TilesDir != "" {
		b, _, err = s.loadBuilder(a.TilesDir, s.activeConfig(), false)
	} else {
		b, err = s.activeBuilder()
	}
	if err != nil {
		return nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	out, err := b.Create(img, a.MinSize, a.Threshold)
	if err != nil {
		return nil, err
	}

	result := &CreateResult{
		Width:     out.Bounds().Dx(),
		Height:    out.Bounds().Dy(),
		TileCount: b.Database().Len(),
		Stats:     b.Stats(),
	}
	if a.OutputPath != "" {
		if err := b.Export(a.OutputPath); err != nil {
			return nil, err
		}
		result.OutputPath = a.OutputPath
	}
	if a.Preview {
		if result.PreviewBase64, err = imaging.EncodePNGBase64(out); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// activeConfig returns the configuration of the active builder, or the
// defaults when none is loaded.
func (s *Server) activeConfig() mosaic.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return mosaic.Config{}
	}
	return s.active.Config()
}

type exportArgs struct {
	OutputPath string `json:"output_path"`
}

// ExportResult is returned by mosaic_export.
type ExportResult struct {
	OutputPath string `json:"output_path"`
	Exported   bool   `json:"exported"`
}

func (s *Server) handleExport(args json.RawMessage) (interface{}, error) {
	var a exportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		return nil, fmt.Errorf("%w: output_path is required", imaging.ErrInvalidInput)
	}

	b, err := s.activeBuilder()
	if err != nil {
		return nil, err
	}
	if err := b.Export(a.OutputPath); err != nil {
		return nil, err
	}
	return &ExportResult{
		OutputPath: a.OutputPath,
		Exported:   b.Result() != nil,
	}, nil
}
