package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ironsheep/image-pad-mcp/internal/workerpool"
)

// newTestServer returns a server on a small private pool, closed when the
// test ends.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	pool := workerpool.New(2)
	s := New(Options{Pool: pool})
	t.Cleanup(func() {
		s.Close()
		pool.Close()
	})
	return s
}

func TestNew(t *testing.T) {
	s := New(Options{})
	defer func() {
		s.Close()
		if !s.pool.Closed() {
			t.Error("Close should stop the server's own pool")
		}
	}()

	if s.cache == nil || s.padder == nil {
		t.Fatal("New() did not initialize cache and padder")
	}
	if !s.ownPool {
		t.Error("server without a pool should own the one it creates")
	}
	if s.workers != s.pool.NumWorkers() {
		t.Errorf("workers: got %d, want %d", s.workers, s.pool.NumWorkers())
	}
}

func TestNew_WithPool(t *testing.T) {
	pool := workerpool.New(3)
	defer pool.Close()

	s := New(Options{Pool: pool, Workers: 5})
	s.Close()

	if s.ownPool {
		t.Error("server should not own a pool it was given")
	}
	if s.workers != 5 {
		t.Errorf("workers: got %d, want 5", s.workers)
	}
	if pool.Closed() {
		t.Error("server closed a pool it does not own")
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}

			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}

	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo should be a map")
	}
	if serverInfo["name"] != Name {
		t.Errorf("serverInfo.name: got %v, want %s", serverInfo["name"], Name)
	}
	if serverInfo["version"] != Version {
		t.Errorf("serverInfo.version: got %v, want %s", serverInfo["version"], Version)
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if resp.ID != "ping-1" {
		t.Errorf("ID: got %v, want ping-1", resp.ID)
	}
}

func TestHandleRequest_NotificationsInitialized(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"})

	// Notifications don't get responses
	if resp != nil {
		t.Error("notifications/initialized should return nil response")
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "nonexistent/method"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error == nil {
		t.Fatal("Expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Error code: got %d, want -32601", resp.Error.Code)
	}
}

// decodeResponses parses one JSON response per line.
func decodeResponses(t *testing.T, out *bytes.Buffer) []MCPResponse {
	t.Helper()
	var resps []MCPResponse
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		var r MCPResponse
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("invalid response line %q: %v", sc.Text(), err)
		}
		resps = append(resps, r)
	}
	return resps
}

func TestServe_Session(t *testing.T) {
	s := newTestServer(t)
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	}, "\n")

	var out bytes.Buffer
	if err := s.Serve(strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	resps := decodeResponses(t, &out)
	if len(resps) != 3 {
		t.Fatalf("responses: got %d, want 3", len(resps))
	}
	for i, want := range []float64{1, 2, 3} {
		if resps[i].ID != want {
			t.Errorf("response %d ID: got %v, want %v", i, resps[i].ID, want)
		}
		if resps[i].Error != nil {
			t.Errorf("response %d error: %+v", i, resps[i].Error)
		}
	}
}

func TestServe_ParseError(t *testing.T) {
	s := newTestServer(t)
	in := "{not json}\n" + `{"jsonrpc":"2.0","id":7,"method":"ping"}` + "\n"

	var out bytes.Buffer
	if err := s.Serve(strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	resps := decodeResponses(t, &out)
	if len(resps) != 2 {
		t.Fatalf("responses: got %d, want 2", len(resps))
	}
	if resps[0].Error == nil || resps[0].Error.Code != -32700 {
		t.Errorf("first response should be a parse error, got %+v", resps[0])
	}
	if resps[1].ID != float64(7) || resps[1].Error != nil {
		t.Errorf("server should keep serving after a parse error, got %+v", resps[1])
	}
}
