// Package server implements the MCP (Model Context Protocol) server for image padding.
//
// This package provides a JSON-RPC 2.0 server that exposes the zero-flux
// Neumann pad filter through the MCP protocol, so clients can grow an image by
// any number of pixels per side and inspect the colours the border would take.
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
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_cache_evict: Forget a cached image
//
// Region Operations:
//   - image_crop: Crop any rectangle, including parts beyond the image edge
//
// Padding:
//   - image_pad: Pad with edge replication, returned as base64 PNG
//   - image_pad_plan: Show the per-worker split and interior/border parts
//
// Color Operations:
//   - image_sample_color: Get color at any pixel, inside or outside the image
//   - image_sample_colors_multi: Sample multiple points
//
// # Image Caching
//
// Decoded images are cached by path and reloaded when the file changes on
// disk. Each path also keeps its pad filter, so repeating a pad with the same
// options returns the previous result without filling again.
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
//	srv := server.New(server.Options{Workers: 4})
//	defer srv.Close()
//	if err := srv.Run(); err != nil {
//	    zap.L().Fatal("server error", zap.Error(err))
//	}
package server
