package mcp

import (
	"encoding/json"
	"path/filepath"

	mderrors "github.com/macrostudio/macrod/internal/errors"
	"github.com/macrostudio/macrod/internal/macro"
)

const (
	protocolVersion = "2024-11-05"
	serverVersion   = "0.1.0"
)

type toolDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"inputSchema"`
}

var emptySchema = map[string]any{"type": "object", "properties": map[string]any{}}

var builtinTools = []toolDef{
	{Name: "macro.validate", Description: "Validate a macro JSON file", InputSchema: map[string]any{
		"type": "object", "properties": map[string]any{"file": map[string]any{"type": "string"}}, "required": []string{"file"}}},
	{Name: "macro.start", Description: "Load, validate, and start a macro", InputSchema: map[string]any{
		"type": "object", "properties": map[string]any{"file": map[string]any{"type": "string"}}, "required": []string{"file"}}},
	{Name: "macro.stop", Description: "Ask the running macro to stop", InputSchema: emptySchema},
	{Name: "macro.pause", Description: "Pause the running macro at the next action boundary", InputSchema: emptySchema},
	{Name: "macro.resume", Description: "Resume a paused macro", InputSchema: emptySchema},
	{Name: "macro.status", Description: "Report engine state", InputSchema: emptySchema},
	{Name: "macro.logs", Description: "Read run log lines recorded after a cursor", InputSchema: map[string]any{
		"type": "object", "properties": map[string]any{"since": map[string]any{"type": "number"}}}},
}

func (s *Server) dispatch(req JSONRPCRequest) *JSONRPCResponse {
	switch req.Method {
	case "initialize":
		return &JSONRPCResponse{Result: map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": "macrod", "version": serverVersion},
		}}
	case "tools/list":
		return &JSONRPCResponse{Result: map[string]any{"tools": builtinTools}}
	case "tools/call":
		return s.handleToolCall(req.Params)
	case "notifications/initialized":
		return &JSONRPCResponse{Result: map[string]any{}}
	case "ping":
		return &JSONRPCResponse{Result: map[string]any{}}
	default:
		return &JSONRPCResponse{Error: &RPCError{Code: -32601, Message: "Method not found"}}
	}
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (s *Server) handleToolCall(params json.RawMessage) *JSONRPCResponse {
	var tc toolCallParams
	if err := json.Unmarshal(params, &tc); err != nil {
		return &JSONRPCResponse{Error: &RPCError{Code: -32602, Message: "Invalid params"}}
	}

	var args struct {
		File  string `json:"file"`
		Since uint64 `json:"since"`
	}
	json.Unmarshal(tc.Arguments, &args)

	switch tc.Name {
	case "macro.validate":
		return s.toolValidate(args.File)
	case "macro.start":
		return s.toolStart(args.File)
	case "macro.stop":
		s.eng.Stop()
		return s.toolStatus()
	case "macro.pause":
		s.eng.Pause()
		return s.toolStatus()
	case "macro.resume":
		s.eng.Resume()
		return s.toolStatus()
	case "macro.status":
		return s.toolStatus()
	case "macro.logs":
		return s.toolLogs(args.Since)
	default:
		return &JSONRPCResponse{Error: &RPCError{Code: -32602, Message: "Unknown tool: " + tc.Name}}
	}
}

func (s *Server) toolValidate(file string) *JSONRPCResponse {
	_, err := macro.Load(s.resolvePath(file))
	if err == nil {
		return &JSONRPCResponse{Result: toolContent("Macro is valid.")}
	}
	if mderrors.IsType(err, mderrors.Validation) {
		return &JSONRPCResponse{Result: toolContent("Validation failed: " + err.Error())}
	}
	return &JSONRPCResponse{Result: toolContent(err.Error())}
}

func (s *Server) toolStart(file string) *JSONRPCResponse {
	doc, err := macro.Load(s.resolvePath(file))
	if err != nil {
		return &JSONRPCResponse{Result: toolContent(err.Error())}
	}
	if err := s.eng.Start(doc); err != nil {
		return &JSONRPCResponse{Result: toolContent(err.Error())}
	}
	data, _ := json.MarshalIndent(map[string]string{"run_id": s.eng.RunID()}, "", "  ")
	return &JSONRPCResponse{Result: toolContent(string(data))}
}

type statusReport struct {
	Running bool   `json:"running"`
	Paused  bool   `json:"paused"`
	RunID   string `json:"run_id,omitempty"`
}

func (s *Server) toolStatus() *JSONRPCResponse {
	rep := statusReport{
		Running: s.eng.IsRunning(),
		Paused:  s.eng.IsPaused(),
		RunID:   s.eng.RunID(),
	}
	data, _ := json.MarshalIndent(rep, "", "  ")
	return &JSONRPCResponse{Result: toolContent(string(data))}
}

type logsReport struct {
	Latest uint64   `json:"latest"`
	Lines  []string `json:"lines"`
}

func (s *Server) toolLogs(since uint64) *JSONRPCResponse {
	latest, lines := s.eng.ReadLogs(since)
	if lines == nil {
		lines = []string{}
	}
	data, _ := json.MarshalIndent(logsReport{Latest: latest, Lines: lines}, "", "  ")
	return &JSONRPCResponse{Result: toolContent(string(data))}
}

func toolContent(text string) map[string]any {
	return map[string]any{"content": []map[string]any{{"type": "text", "text": text}}}
}

func (s *Server) resolvePath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(s.workDir, file)
}
