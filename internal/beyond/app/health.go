package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/beyondtyping/beyond/common/version"
	"github.com/beyondtyping/beyond/internal/beyond/clarify"
	"github.com/beyondtyping/beyond/internal/beyond/store"
	"github.com/beyondtyping/beyond/internal/beyond/voiceloop"
)

// Status is the runtime part of GET /status.
type Status struct {
	Transport           string             `json:"transport"`
	ClassifierAvailable bool               `json:"classifier_available"`
	Intents             []string           `json:"classifier_intents,omitempty"`
	Loop                voiceloop.Snapshot `json:"loop"`
	ClarificationState  string             `json:"clarification_state"`
	Pending             *clarify.Pending   `json:"pending_clarification,omitempty"`
}

// statusSource is what the health server needs from the running app.
type statusSource interface {
	Status() Status
}

// cycleSource lists journaled cycles. It is nil when no database is
// configured.
type cycleSource interface {
	RecentCycles(ctx context.Context, limit int) ([]store.Cycle, error)
	CycleStats(ctx context.Context, since time.Time) ([]store.IntentCount, error)
}

// HealthServer exposes /health, /status, /cycles and any additionally
// registered endpoints such as /metrics.
type HealthServer struct {
	addr      string
	status    statusSource
	cycles    cycleSource
	startedAt time.Time
	server    *http.Server
	mux       *http.ServeMux
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

type statusResponse struct {
	Status     string    `json:"status"`
	Version    string    `json:"version"`
	Commit     string    `json:"commit"`
	BuildTime  string    `json:"build_time"`
	StartedAt  time.Time `json:"started_at"`
	UptimeSecs float64   `json:"uptime_seconds"`
	Runtime    Status    `json:"runtime"`
	// IntentStats covers cycles journaled since StartedAt.
	IntentStats []intentStatsResponse `json:"intent_stats,omitempty"`
}

type intentStatsResponse struct {
	Intent string `json:"intent"`
	Total  int    `json:"total"`
	Failed int    `json:"failed"`
}

type cycleResponse struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Utterance  string    `json:"utterance"`
	Kind       string    `json:"kind"`
	Source     string    `json:"source,omitempty"`
	Intent     string    `json:"intent,omitempty"`
	Handler    string    `json:"handler,omitempty"`
	Success    bool      `json:"success"`
	Clarified  bool      `json:"clarified"`
	Response   string    `json:"response,omitempty"`
}

// NewHealthServer creates the HTTP server without starting it. cycles may
// be nil.
func NewHealthServer(addr string, status statusSource, cycles cycleSource) *HealthServer {
	mux := http.NewServeMux()
	hs := &HealthServer{
		addr:      addr,
		status:    status,
		cycles:    cycles,
		startedAt: time.Now(),
		mux:       mux,
	}
	mux.HandleFunc("GET /health", hs.handleHealth)
	mux.HandleFunc("GET /status", hs.handleStatus)
	mux.HandleFunc("GET /cycles", hs.handleCycles)
	return hs
}

// ServeHTTP implements http.Handler.
func (h *HealthServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Handle registers an extra route. Call it before Start.
func (h *HealthServer) Handle(pattern string, handler http.Handler) {
	h.mux.Handle(pattern, handler)
}

// Start listens in the background and shuts down when ctx is cancelled. It
// returns once the port is open.
func (h *HealthServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("health server: listen %s: %w", h.addr, err)
	}

	h.server = &http.Server{
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("health server listening", "addr", ln.Addr().String())
		if err := h.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("health server stopped", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		h.Stop()
	}()
	return nil
}

// Stop shuts down the HTTP server.
func (h *HealthServer) Stop() {
	if h.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.server.Shutdown(ctx); err != nil {
		slog.Warn("health server shutdown error", "err", err)
	}
}

func (h *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.Version,
		Commit:  version.GitCommit,
	})
}

func (h *HealthServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:     "ok",
		Version:    version.Version,
		Commit:     version.GitCommit,
		BuildTime:  version.BuildTime,
		StartedAt:  h.startedAt,
		UptimeSecs: time.Since(h.startedAt).Seconds(),
	}
	if h.status != nil {
		resp.Runtime = h.status.Status()
	}
	if h.cycles != nil {
		stats, err := h.cycles.CycleStats(r.Context(), h.startedAt)
		if err != nil {
			slog.Warn("failed to load intent stats", "err", err)
		}
		for _, ic := range stats {
			resp.IntentStats = append(resp.IntentStats, intentStatsResponse{
				Intent: ic.Intent,
				Total:  ic.Total,
				Failed: ic.Failed,
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HealthServer) handleCycles(w http.ResponseWriter, r *http.Request) {
	if h.cycles == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "cycle journal disabled"})
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	cycles, err := h.cycles.RecentCycles(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list cycles", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list cycles"})
		return
	}
	out := make([]cycleResponse, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, cycleResponse{
			ID:         c.ID,
			StartedAt:  c.StartedAt,
			DurationMS: c.Duration.Milliseconds(),
			Utterance:  c.Utterance,
			Kind:       c.Kind,
			Source:     c.Source,
			Intent:     c.Intent,
			Handler:    c.Handler,
			Success:    c.Success,
			Clarified:  c.Clarified,
			Response:   c.Response,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("health: failed to encode JSON response", "err", err)
	}
}
