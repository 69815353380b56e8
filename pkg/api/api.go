// Package api exposes a tiny JSON‑over‑HTTP API for the bip353 daemon.
// It listens on a Unix domain socket (path comes from config) and delegates
// all resolution logic to internal/engine and pkg/bip353. No third‑party
// HTTP framework is used—just net/http + encoding/json—keeping the binary
// small.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lc/bip353/internal/buildinfo"
	"github.com/lc/bip353/internal/engine"
	"github.com/lc/bip353/internal/socket"
	"github.com/lc/bip353/pkg/bip353"
)

// ResolveRequest represents a request to resolve a human-readable address.
type ResolveRequest struct {
	Address string `json:"address"`
}

// ResolveResponse is the wire form of a payment instruction. URI carries
// the TXT record's bitcoin: URI byte-for-byte.
type ResolveResponse struct {
	URI        string            `json:"uri"`
	Type       string            `json:"type"`
	Reusable   bool              `json:"reusable"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// ParseRequest represents a request to split an address into user and domain.
type ParseRequest struct {
	Address string `json:"address"`
}

// ParseResponse holds the two segments of a parsed address.
type ParseResponse struct {
	User   string `json:"user"`
	Domain string `json:"domain"`
}

// StatusResponse represents the daemon status response.
type StatusResponse struct {
	Resolutions int64         `json:"resolutions"`
	Failures    int64         `json:"failures"`
	Uptime      time.Duration `json:"uptime"`
	Version     string        `json:"version"`
	Commit      string        `json:"commit"`
}

// ErrorResponse is the body of every non-2xx reply. Kind carries the
// resolution error kind so callers can discriminate without string
// matching.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// -------- server -----------------------------------------------------

// Server handles HTTP API requests over a Unix domain socket.
type Server struct {
	eng   *engine.Engine
	start time.Time
	mux   *http.ServeMux
	srv   *http.Server
}

// New creates a new API server with the given engine.
// It sets up the HTTP routes and returns a server ready to listen.
func New(eng *engine.Engine) *Server {
	s := &Server{
		eng:   eng,
		start: time.Now(),
		mux:   http.NewServeMux(),
	}

	s.mux.HandleFunc("/v1/resolve", s.handleResolve)
	s.mux.HandleFunc("/v1/parse", s.handleParse)
	s.mux.HandleFunc("/v1/status", s.handleStatus)

	s.srv = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe starts the Unix‑socket HTTP server.
func (s *Server) ListenAndServe(path string) error {
	ln, err := socket.Listen(path)
	if err != nil {
		return err
	}
	return s.srv.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }

// handleResolve resolves an address to a payment instruction.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Address == "" {
		http.Error(w, "address required", http.StatusBadRequest)
		return
	}

	instruction, err := s.eng.Resolve(r.Context(), req.Address)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ResolveResponse{
		URI:        instruction.URI,
		Type:       string(instruction.Type),
		Reusable:   instruction.Reusable,
		Parameters: instruction.Parameters,
	}
	writeJSON(w, resp)
}

// handleParse splits an address into user and domain without resolving it.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, domain, err := bip353.ParseAddress(req.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, ParseResponse{User: user, Domain: domain})
}

// handleStatus returns the daemon status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	stats := s.eng.Stats()
	resp := StatusResponse{
		Resolutions: stats.Resolutions,
		Failures:    stats.Failures,
		Uptime:      time.Since(s.start),
		Version:     buildinfo.Version,
		Commit:      buildinfo.Commit,
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("Error encoding response: %v", err), http.StatusInternalServerError)
	}
}

// writeError maps a resolution error onto an HTTP status. Bad input is the
// caller's fault; bad DNS data or an unreachable resolver is upstream's.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch bip353.ErrorKind(err) {
	case bip353.KindInvalidAddress:
		status = http.StatusBadRequest
	case bip353.KindInvalidRecord, bip353.KindDNS, bip353.KindDNSSEC:
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: err.Error(),
		Kind:  kindToken(bip353.ErrorKind(err)),
	})
}

func kindToken(k bip353.Kind) string {
	switch k {
	case bip353.KindDNS:
		return "dns"
	case bip353.KindInvalidAddress:
		return "invalid-address"
	case bip353.KindInvalidRecord:
		return "invalid-record"
	case bip353.KindDNSSEC:
		return "dnssec"
	default:
		return ""
	}
}
