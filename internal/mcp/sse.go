package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/macrostudio/macrod/internal/logging"
)

// sseClient is one connected event-stream consumer.
type sseClient struct {
	id     string
	events chan []byte
	done   chan struct{}
}

// SSEServer adapts a Server to the MCP SSE transport.
type SSEServer struct {
	server  *Server
	mu      sync.Mutex
	clients map[string]*sseClient
	nextID  int
}

// ServeSSE serves srv over HTTP on 127.0.0.1:port.
func ServeSSE(port int, srv *Server) error {
	s := &SSEServer{
		server:  srv,
		clients: make(map[string]*sseClient),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/sse", s.handleSSE)
	mux.HandleFunc("/message", s.handleMessage)
	mux.HandleFunc("/health", s.handleHealth)

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	logging.Info("sse server listening", "addr", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *SSEServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	s.mu.Lock()
	count := len(s.clients)
	s.mu.Unlock()
	json.NewEncoder(w).Encode(map[string]any{
		"status":           "ok",
		"connectedClients": count,
	})
}

func (s *SSEServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	s.mu.Lock()
	s.nextID++
	clientID := fmt.Sprintf("client-%d", s.nextID)
	client := &sseClient{
		id:     clientID,
		events: make(chan []byte, 64),
		done:   make(chan struct{}),
	}
	s.clients[clientID] = client
	s.mu.Unlock()

	logging.Info("sse client connected", "id", clientID)

	// The message URL carries the client ID so responses route back to
	// this stream.
	messageURL := fmt.Sprintf("http://%s/message?sessionId=%s", r.Host, clientID)
	fmt.Fprintf(w, "event: endpoint\ndata: %s\n\n", messageURL)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
			close(client.done)
			logging.Info("sse client disconnected", "id", clientID)
			return
		case data := <-client.events:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *SSEServer) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(&JSONRPCResponse{
			JSONRPC: "2.0",
			Error:   &RPCError{Code: -32700, Message: "Parse error"},
		})
		return
	}

	resp := s.server.dispatch(req)
	resp.JSONRPC = "2.0"
	resp.ID = req.ID

	respData, _ := json.Marshal(resp)

	if sessionID != "" {
		s.mu.Lock()
		client, ok := s.clients[sessionID]
		s.mu.Unlock()
		if ok {
			select {
			case client.events <- respData:
			default:
				logging.Warn("sse client buffer full, dropping message", "id", sessionID)
			}
		}
	}

	// Returned directly too, so plain request-response clients work
	// without holding an event stream open.
	w.Header().Set("Content-Type", "application/json")
	w.Write(respData)
}
