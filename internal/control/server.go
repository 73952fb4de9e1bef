// Package control exposes the operational HTTP surface. Every endpoint is
// thin plumbing onto a core operation and carries no logic of its own.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"newsrelay/internal/domain"
)

// ErrAlreadyRunning signals that the control address is taken, which
// usually means another instance owns it.
var ErrAlreadyRunning = errors.New("control address already in use")

// Core is the slice of the application the operational surface needs.
type Core interface {
	RunNow(ctx context.Context) domain.CycleStats
	LastCycle() (domain.CycleStats, bool)
	ResetSeen()
}

// TryListen binds the control address.
func TryListen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	return ln, nil
}

// Server routes control requests onto the core.
type Server struct {
	core Core
}

// NewServer wires the core operations.
func NewServer(core Core) *Server { return &Server{core: core} }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/run":
		s.handleRun(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/status":
		s.handleStatus(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/reset":
		s.handleReset(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	stats := s.core.RunNow(r.Context())
	writeJSON(w, map[string]any{"ok": true, "cycle": stats})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	stats, ok := s.core.LastCycle()
	if !ok {
		writeJSON(w, map[string]any{"ok": false})
		return
	}
	writeJSON(w, map[string]any{"ok": true, "cycle": stats})
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.core.ResetSeen()
	writeJSON(w, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
