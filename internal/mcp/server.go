// Package mcp exposes the macro engine to agent clients over the Model
// Context Protocol: JSON-RPC 2.0 on stdio, plus an optional SSE
// transport.
package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/macrostudio/macrod/internal/engine"
)

// JSONRPCRequest is a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse is a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Server drives one engine instance on behalf of MCP clients.
type Server struct {
	eng     *engine.Engine
	workDir string
}

// NewServer wraps eng. Relative macro paths in tool calls resolve
// against workDir.
func NewServer(eng *engine.Engine, workDir string) *Server {
	return &Server{eng: eng, workDir: workDir}
}

// Serve runs the stdio transport until stdin closes.
func (s *Server) Serve() error {
	return s.serveLoop(os.Stdin, os.Stdout)
}

func (s *Server) serveLoop(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			writeResponse(w, &JSONRPCResponse{
				JSONRPC: "2.0",
				Error:   &RPCError{Code: -32700, Message: "Parse error"},
			})
			continue
		}

		resp := s.dispatch(req)
		resp.JSONRPC = "2.0"
		resp.ID = req.ID
		writeResponse(w, resp)
	}
	return scanner.Err()
}

func writeResponse(w io.Writer, resp *JSONRPCResponse) {
	data, _ := json.Marshal(resp)
	fmt.Fprintf(w, "%s\n", data)
}
