// Package dashboard serves the workspace over HTTP: a JSON API for spec
// documents and progress, plus a websocket stream of checklist changes.
package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/specmark/specmark/internal/application"
	"github.com/specmark/specmark/pkg/domain/checkbox"
	"github.com/specmark/specmark/pkg/domain/document"
)

// Server is the dashboard HTTP server.
type Server struct {
	addr     string
	tracking *application.TrackerService
	server   *http.Server
	upgrader websocket.Upgrader
}

// NewServer creates a new dashboard server.
func NewServer(addr string, tracking *application.TrackerService) *Server {
	return &Server{
		addr:     addr,
		tracking: tracking,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is a local development surface.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start starts the dashboard server. It blocks until the listener fails or
// Shutdown is called.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/specs", s.handleSpecs)
	mux.HandleFunc("GET /api/specs/{id}", s.handleSpec)
	mux.HandleFunc("GET /api/specs/{id}/items", s.handleItems)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/items/toggle", s.handleToggle)
	mux.HandleFunc("GET /ws", s.handleWS)

	s.server = &http.Server{
		Addr:        s.addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: /ws connections are long-lived.
	}

	log.Printf("Dashboard server starting on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleSpecs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.tracking.LoadAll()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

func (s *Server) handleSpec(w http.ResponseWriter, r *http.Request) {
	specID, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := s.tracking.Document(specID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, doc)
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	specID, ok := pathID(w, r)
	if !ok {
		return
	}
	items, err := s.tracking.Checkboxes(specID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, items)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.tracking.WorkspaceStats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

type toggleRequest struct {
	ID      string `json:"id"`
	Checked *bool  `json:"checked,omitempty"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	id, err := document.ParseItemID(req.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var change *checkbox.Change
	if req.Checked != nil {
		change, err = s.tracking.SetChecked(id, *req.Checked, checkbox.SourceBoard)
	} else {
		change, err = s.tracking.Toggle(id, checkbox.SourceBoard)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not") {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, change)
}

// handleWS upgrades the connection and streams every checklist change the
// tracker broadcasts until the client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	changes, cancel := s.tracking.Tracker().Subscribe()
	defer cancel()

	// Drain client frames so pings and close messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			if err := conn.WriteJSON(change); err != nil {
				return
			}
		}
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	specID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid spec id", http.StatusBadRequest)
		return 0, false
	}
	return specID, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
