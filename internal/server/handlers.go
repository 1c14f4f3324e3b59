package server

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/image-pad-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_pad").
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
// A panicking tool is reported as -32603 and the server keeps running.
func (s *Server) handleToolsCall(req *MCPRequest) (resp *MCPResponse) {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tool panicked", zap.String("tool", params.Name), zap.Any("panic", r))
			resp = s.errorResponse(req.ID, -32603, "Internal error", fmt.Sprint(r))
		}
	}()

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Info("tool failed", zap.String("tool", params.Name), zap.Error(err))
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_cache_evict":
		return s.handleImageCacheEvict(args)

	// Region Operations
	case "image_crop":
		return s.handleImageCrop(args)

	// Padding
	case "image_pad":
		return s.handleImagePad(args)
	case "image_pad_plan":
		return s.handleImagePadPlan(args)

	// Color Operations
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "image_sample_colors_multi":
		return s.handleImageSampleColorsMulti(args)

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

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type evictResult struct {
	Path   string `json:"path"`
	Cached int    `json:"cached"`
}

func (s *Server) handleImageCacheEvict(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	s.padder.Forget(a.Path)
	s.cache.Evict(a.Path)
	return &evictResult{Path: a.Path, Cached: s.cache.Len()}, nil
}

// === Region Operation Handlers ===

type imageCropArgs struct {
	Path  string  `json:"path"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	e, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	defer e.Release()
	return imaging.Crop(e.Pixels(), a.X1, a.Y1, a.X2, a.Y2, a.Scale, s.pool)
}

// === Padding Handlers ===

type imagePadArgs struct {
	Path string `json:"path"`

	// Pad applies to every side not given explicitly.
	Pad    *int `json:"pad"`
	Left   *int `json:"left"`
	Top    *int `json:"top"`
	Right  *int `json:"right"`
	Bottom *int `json:"bottom"`

	Scale   float64 `json:"scale"`
	Workers int     `json:"workers"`
}

func (a imagePadArgs) options(defaultWorkers int) imaging.PadOptions {
	side := func(v *int) int {
		switch {
		case v != nil:
			return *v
		case a.Pad != nil:
			return *a.Pad
		}
		return 0
	}
	opts := imaging.PadOptions{
		Left:    side(a.Left),
		Top:     side(a.Top),
		Right:   side(a.Right),
		Bottom:  side(a.Bottom),
		Scale:   a.Scale,
		Workers: a.Workers,
	}
	if opts.Scale == 0 {
		opts.Scale = 1.0
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	return opts
}

func (s *Server) handleImagePad(args json.RawMessage) (interface{}, error) {
	var a imagePadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	e, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	defer e.Release()
	return s.padder.Pad(e, a.options(s.workers))
}

func (s *Server) handleImagePadPlan(args json.RawMessage) (interface{}, error) {
	var a imagePadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	dims, err := imaging.GetDimensions(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.PlanPad(dims.Width, dims.Height, a.options(s.workers))
}

// === Color Operation Handlers ===

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	e, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	defer e.Release()
	return imaging.SampleColor(e.Pixels(), a.X, a.Y)
}

type imageSampleColorsMultiArgs struct {
	Path   string `json:"path"`
	Points []struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Label string `json:"label,omitempty"`
	} `json:"points"`
}

func (s *Server) handleImageSampleColorsMulti(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorsMultiArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	e, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	defer e.Release()

	points := make([]imaging.LabeledPoint, len(a.Points))
	for i, p := range a.Points {
		points[i] = imaging.LabeledPoint{X: p.X, Y: p.Y, Label: p.Label}
	}
	return imaging.SampleColorsMulti(e.Pixels(), points)
}
