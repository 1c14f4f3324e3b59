package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

// padProperties are shared by image_pad and image_pad_plan.
func padProperties() map[string]interface{} {
	side := func(desc string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "integer",
			"minimum":     0,
			"description": desc,
		}
	}
	return map[string]interface{}{
		"path":   pathProperty,
		"pad":    side("Pixels added on every side not given explicitly. Default 0"),
		"left":   side("Pixels added before the first column"),
		"top":    side("Pixels added above the first row"),
		"right":  side("Pixels added after the last column"),
		"bottom": side("Pixels added below the last row"),
		"workers": map[string]interface{}{
			"type":        "integer",
			"minimum":     1,
			"description": "Number of pieces the fill is split into. Default: one per server worker",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	padSchema := padProperties()
	padSchema["scale"] = map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor applied to the padded image (e.g., 2.0 to double size). Default 1.0",
		"default":     1.0,
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_cache_evict",
			Description: "Drop a cached image and its pad results so the next call reads the file again.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Region Operations
		{
			Name: "image_crop",
			Description: "Crop a rectangular region and return it as base64-encoded PNG. The rectangle may extend past the " +
				"image; pixels outside are filled from the nearest edge pixel, as image_pad would.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based, may be negative)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based, may be negative)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},

		// Padding
		{
			Name: "image_pad",
			Description: "Grow an image by a number of pixels on each side, filling the new border with the nearest edge pixel " +
				"(zero-flux Neumann boundary: corners take the corner pixel, edges repeat the edge row or column). " +
				"Returns the padded image as base64-encoded PNG with the colours of its four corners.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": padSchema,
				"required":   []string{"path"},
			},
		},
		{
			Name: "image_pad_plan",
			Description: "Describe how image_pad would split the padded image among workers, and how each worker's piece " +
				"breaks into interior parts (copied) and border parts (filled from the edge), without producing pixels.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": padProperties(),
				"required":   []string{"path"},
			},
		},

		// Color Operations
		{
			Name: "image_sample_color",
			Description: "Get the exact color value at a pixel coordinate. Coordinates outside the image return the colour " +
				"image_pad would place there (the nearest edge pixel) and report which source pixel was used.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left; may be negative or past the right edge)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top; may be negative or past the bottom edge)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "image_sample_colors_multi",
			Description: "Get color values at multiple pixel coordinates in a single call. Out-of-bounds points behave as in image_sample_color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string", "description": "Optional label for this point"},
							},
							"required": []string{"x", "y"},
						},
						"description": "Array of points to sample",
					},
				},
				"required": []string{"path", "points"},
			},
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
