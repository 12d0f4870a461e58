package api

// server.go — read path del scanner.
//
// Los GET degradan a datos vacíos cuando el store falla: los consumers del
// dashboard nunca reciben un hard failure de estas rutas, solo "lo mejor
// disponible". El único punto de mutación es PATCH status (resolución manual).

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alejandrodnm/edgescan/internal/domain"
	"github.com/alejandrodnm/edgescan/internal/ports"
)

const (
	requestTimeout    = 5 * time.Second
	metricsWindowDays = 30
	shutdownTimeout   = 3 * time.Second
)

// Server expone alertas y métricas del scanner sobre HTTP.
type Server struct {
	store ports.AlertStore
	mux   *chi.Mux
}

// New crea un Server con las rutas registradas.
func New(store ports.AlertStore) *Server {
	s := &Server{store: store, mux: chi.NewRouter()}
	s.routes()
	return s
}

// Handler devuelve el router, útil para tests con httptest.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run arranca el servidor y bloquea hasta que el contexto se cancele,
// después hace graceful shutdown.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	slog.Info("api server listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) routes() {
	s.mux.Get("/health", s.handleHealth)
	s.mux.Get("/api/alerts", s.handleListAlerts)
	s.mux.Get("/api/metrics", s.handleMetrics)
	s.mux.Post("/api/backtest", s.handleBacktest)
	s.mux.Patch("/api/alerts/{id}/status", s.handleUpdateStatus)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleListAlerts devuelve las alertas activas más recientes.
// Query params: limit (default 10, máx 100).
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	limit := parseIntParam(r, "limit", 0)

	alerts, err := s.store.ListAlerts(ctx, limit)
	if err != nil {
		// Degradar a lista vacía — nunca un hard failure hacia el dashboard
		slog.Warn("list alerts failed, returning empty", "err", err)
		alerts = nil
	}
	if alerts == nil {
		alerts = []domain.EdgeAlert{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// handleMetrics devuelve los agregados de los últimos 30 días.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	metrics, err := s.store.GetMetrics(ctx, metricsWindowDays*24*time.Hour)
	if err != nil {
		slog.Warn("metrics query failed, returning zeroed", "err", err)
		metrics = domain.Metrics{WindowDays: metricsWindowDays}
	}

	respondJSON(w, http.StatusOK, metrics)
}

// handleBacktest calcula el hit-rate sobre la ventana pedida.
// Body: {"days": N} — N <= 0 usa el default del store.
func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req struct {
		Days int `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := s.store.BacktestReport(ctx, req.Days)
	if err != nil {
		slog.Warn("backtest query failed, returning zeroed", "err", err)
		report = domain.BacktestReport{WindowDays: req.Days}
	}

	respondJSON(w, http.StatusOK, report)
}

// handleUpdateStatus es el punto de entrada de la resolución manual/externa.
// Body: {"status": "active"|"converted"|"missed"}.
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")

	var req struct {
		Status domain.AlertStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if err := s.store.UpdateAlertStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, ports.ErrAlertNotFound) {
			respondError(w, http.StatusNotFound, "alert not found")
			return
		}
		slog.Error("status update failed", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "status update failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("response encode failed", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func parseIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
