package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const methodNotFoundCode = -32601

// RPCHandler serves a single JSON-RPC method. Returning a non-nil RPCError
// sends an error response instead of the result.
type RPCHandler func(params []json.RawMessage) (interface{}, *RPCError)

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RPCServer provides a local JSON-RPC 2.0 endpoint that can be used to test
// RPC clients with no external dependencies. Methods without a handler
// respond with "method not found".
type RPCServer struct {
	sync.Mutex
	handlers map[string]RPCHandler
	calls    map[string]int
	server   *httptest.Server
}

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

// NewRPCServer starts a server that is closed when the test completes.
func NewRPCServer(t *testing.T) *RPCServer {
	s := &RPCServer{
		handlers: make(map[string]RPCHandler),
		calls:    make(map[string]int),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the endpoint clients should connect to.
func (s *RPCServer) URL() string {
	return s.server.URL
}

// Handle registers, or replaces, the handler for method.
func (s *RPCServer) Handle(method string, handler RPCHandler) {
	s.Lock()
	s.handlers[method] = handler
	s.Unlock()
}

// Calls returns the number of requests received for method.
func (s *RPCServer) Calls(method string) int {
	s.Lock()
	defer s.Unlock()
	return s.calls[method]
}

// TotalCalls returns the number of requests received for all methods.
func (s *RPCServer) TotalCalls() int {
	s.Lock()
	defer s.Unlock()

	var total int
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *RPCServer) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.Lock()
	s.calls[req.Method]++
	handler, ok := s.handlers[req.Method]
	s.Unlock()

	resp := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
	}

	if !ok {
		resp["error"] = &RPCError{Code: methodNotFoundCode, Message: "Method not found"}
	} else if result, rpcErr := handler(req.Params); rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
