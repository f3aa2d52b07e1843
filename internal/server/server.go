// Package server exposes a workspace over HTTP: a WebSocket JSON-RPC
// endpoint for editing, the live preview and the export document.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jakoblorz/go-codebuilder/internal/models"
	"github.com/jakoblorz/go-codebuilder/internal/preview"
	"github.com/jakoblorz/go-codebuilder/internal/workspace"
)

// ChangedMethod is the notification sent after every workspace mutation
const ChangedMethod = "workspaceChanged"

// JSON-RPC error codes
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeWorkspaceError = -32000
)

// TemplateLister lists the templates offered to clients
type TemplateLister interface {
	List() []*models.Template
}

// Server serves one workspace store to any number of WebSocket clients.
type Server struct {
	store     *workspace.Store
	templates TemplateLister
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients []*wsClient

	methods     map[string]method
	unsubscribe func()
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

type rpcRequest struct {
	ID     any             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     any       `json:"id"`
	Result any       `json:"result,omitempty"`
	Error  *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Kind    models.ErrorKind `json:"kind,omitempty"`
}

type notification struct {
	Method string `json:"method"`
	Params any    `json:"params"`
}

// New creates a Server for store. Every published snapshot is broadcast to
// the connected clients until Close is called.
func New(store *workspace.Store, templates TemplateLister) *Server {
	s := &Server{
		store:     store,
		templates: templates,
		// the zero CheckOrigin rejects browser origins other than the
		// server's own host
		upgrader: websocket.Upgrader{},
	}
	s.methods = s.routes()
	s.unsubscribe = store.Subscribe(func(snap workspace.Snapshot) {
		s.Broadcast(ChangedMethod, changed{Version: snap.Version, State: snap.State()})
	})
	return s
}

type changed struct {
	Version uint64          `json:"version"`
	State   workspace.State `json:"state"`
}

// Close stops broadcasting and disconnects every client
func (s *Server) Close() {
	s.unsubscribe()

	s.mu.Lock()
	clients := s.clients
	s.clients = nil
	s.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
}

// Handler routes /ws, /preview and /export
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /preview", s.handlePreview)
	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/preview", http.StatusFound)
	})
	return mux
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	page, kind := preview.Render(s.store.Snapshot().Table)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Preview-Kind", string(kind))
	_, _ = w.Write([]byte(page))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.ExportProject()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="project.json"`)
	_, _ = w.Write(data)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", "err", err)
		return
	}
	client := &wsClient{conn: conn}
	s.mu.Lock()
	s.clients = append(s.clients, client)
	s.mu.Unlock()
	slog.DebugContext(r.Context(), "client connected", "remote", r.RemoteAddr)

	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		for i, c := range s.clients {
			if c == client {
				s.clients = append(s.clients[:i], s.clients[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		slog.DebugContext(r.Context(), "client disconnected", "remote", r.RemoteAddr)
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var resp rpcResponse
		var req rpcRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			resp = rpcResponse{Error: &rpcError{Code: CodeParseError, Message: err.Error()}}
		} else {
			resp = s.handleRPC(req)
		}

		data, err := json.Marshal(resp)
		if err != nil {
			slog.WarnContext(r.Context(), "failed to encode response", "method", req.Method, "err", err)
			continue
		}
		if err := client.write(data); err != nil {
			return
		}
	}
}

func (s *Server) handleRPC(req rpcRequest) rpcResponse {
	m, ok := s.methods[req.Method]
	if !ok {
		return rpcResponse{
			ID:    req.ID,
			Error: &rpcError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown method: %s", req.Method)},
		}
	}

	result, err := m(req.Params)
	if err != nil {
		return rpcResponse{ID: req.ID, Error: toRPCError(err)}
	}
	return rpcResponse{ID: req.ID, Result: result}
}

// paramsError marks a request whose params could not be decoded
type paramsError struct {
	err error
}

func (e *paramsError) Error() string { return e.err.Error() }

func toRPCError(err error) *rpcError {
	var pe *paramsError
	if errors.As(err, &pe) {
		return &rpcError{Code: CodeInvalidParams, Message: pe.Error()}
	}
	out := &rpcError{Code: CodeWorkspaceError, Message: err.Error()}
	var we *models.Error
	if errors.As(err, &we) {
		out.Kind = we.Kind
	}
	return out
}

// Broadcast sends a notification to every connected client
func (s *Server) Broadcast(method string, params any) {
	msg, err := json.Marshal(notification{Method: method, Params: params})
	if err != nil {
		slog.Warn("failed to encode notification", "method", method, "err", err)
		return
	}

	s.mu.Lock()
	clients := append([]*wsClient(nil), s.clients...)
	s.mu.Unlock()

	for _, c := range clients {
		_ = c.write(msg)
	}
}
