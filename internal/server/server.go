// Package server exposes the board commands over HTTP.
//
// The engine is single-threaded; every request takes the server's mutex
// for the duration of its engine call, so commands from concurrent clients
// are applied one at a time in arrival order.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dyluth/kanban/internal/export"
	"github.com/dyluth/kanban/internal/resolver"
	"github.com/dyluth/kanban/pkg/board"
)

// Server serves one board.
type Server struct {
	mu        sync.Mutex
	eng       *board.Engine
	boardName string
	logger    *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server for eng.
func New(eng *board.Engine, boardName string, opts ...Option) *Server {
	s := &Server{
		eng:       eng,
		boardName: boardName,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/board", s.handleBoard)
		r.Get("/counts", s.handleCounts)
		r.Get("/export", s.handleExport)

		r.Route("/columns/{column}", func(r chi.Router) {
			r.Get("/", s.handleGetColumn)
			r.Post("/cards", s.handleAddCard)
			r.Post("/recolor", s.handleRecolorColumn)
			r.Post("/sort", s.handleToggleSort)
		})

		r.Route("/cards/{card}", func(r chi.Router) {
			r.Get("/", s.handleGetCard)
			r.Delete("/", s.handleCommitDelete)
			r.Put("/title", s.handleRename)
			r.Post("/move", s.handleMove)
			r.Post("/recolor", s.handleRecolorCard)
			r.Post("/removal", s.handleBeginDelete)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("serving board", "board", s.boardName, "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start).Round(time.Microsecond))
	})
}

// BoardResponse is the body of GET /api/board.
type BoardResponse struct {
	Board   string         `json:"board"`
	Columns []board.Column `json:"columns"`
	Counts  map[string]int `json:"counts"`
}

// CardResponse locates a card.
type CardResponse struct {
	Card     board.Card `json:"card"`
	ColumnID string     `json:"column_id"`
	Pending  bool       `json:"pending_delete,omitempty"`
}

// HealthResponse is the JSON response structure for health checks.
type HealthResponse struct {
	Status string `json:"status"`
	Board  string `json:"board"`
	Cards  int    `json:"cards"`
}

type titleRequest struct {
	Title *string `json:"title"`
}

type moveRequest struct {
	Direction board.Direction `json:"direction"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	total := 0
	for _, n := range s.eng.Counts() {
		total += n
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Board: s.boardName, Cards: total})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := BoardResponse{Board: s.boardName, Columns: s.eng.Columns(), Counts: s.eng.Counts()}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	counts := s.eng.Counts()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatJSON
	}

	var buf bytes.Buffer
	s.mu.Lock()
	err := export.NewExporter(s.eng, s.boardName).Export(&buf, format)
	s.mu.Unlock()
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	switch format {
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
	case export.FormatPDF:
		w.Header().Set("Content-Type", "application/pdf")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.boardName+"."+format))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleGetColumn(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	col, err := s.eng.Column(chi.URLParam(r, "column"))
	s.mu.Unlock()
	if err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, col)
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	card, err := s.eng.AddCard(chi.URLParam(r, "column"))
	s.mu.Unlock()
	if err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleRecolorColumn(w http.ResponseWriter, r *http.Request) {
	columnID := chi.URLParam(r, "column")

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.eng.RecolorColumn(columnID); err != nil {
		writeEngineErr(w, err)
		return
	}
	col, _ := s.eng.Column(columnID)
	writeJSON(w, http.StatusOK, col)
}

func (s *Server) handleToggleSort(w http.ResponseWriter, r *http.Request) {
	columnID := chi.URLParam(r, "column")

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.eng.ToggleSort(columnID); err != nil {
		writeEngineErr(w, err)
		return
	}
	col, _ := s.eng.Column(columnID)
	writeJSON(w, http.StatusOK, col)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.resolveCard(w, r)
	if !ok {
		return
	}
	card, columnID, _ := s.eng.Card(id)
	writeJSON(w, http.StatusOK, CardResponse{Card: card, ColumnID: columnID, Pending: s.eng.IsPendingDelete(id)})
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Title == nil {
		writeErr(w, http.StatusBadRequest, errors.New("title is required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.resolveCard(w, r)
	if !ok {
		return
	}
	if err := s.eng.RenameCard(id, *req.Title); err != nil {
		writeEngineErr(w, err)
		return
	}
	card, columnID, _ := s.eng.Card(id)
	writeJSON(w, http.StatusOK, CardResponse{Card: card, ColumnID: columnID})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := req.Direction.Validate(); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.resolveCard(w, r)
	if !ok {
		return
	}
	result, err := s.eng.MoveCard(id, req.Direction)
	if err != nil {
		writeEngineErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRecolorCard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.resolveCard(w, r)
	if !ok {
		return
	}
	s.eng.RecolorCard(id)
	card, columnID, _ := s.eng.Card(id)
	writeJSON(w, http.StatusOK, CardResponse{Card: card, ColumnID: columnID})
}

func (s *Server) handleBeginDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.resolveCard(w, r)
	if !ok {
		return
	}
	s.eng.BeginDelete(id)
	card, columnID, _ := s.eng.Card(id)
	writeJSON(w, http.StatusAccepted, CardResponse{Card: card, ColumnID: columnID, Pending: true})
}

func (s *Server) handleCommitDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.resolveCard(w, r)
	if !ok {
		return
	}
	s.eng.CommitDelete(id)
	w.WriteHeader(http.StatusNoContent)
}

// resolveCard expands the {card} parameter to a full id, writing the error
// response itself when it cannot. Must be called with s.mu held.
func (s *Server) resolveCard(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := resolver.ResolveCardID(s.eng, chi.URLParam(r, "card"))
	switch {
	case err == nil:
		return id, true
	case resolver.IsNotFoundError(err):
		writeErr(w, http.StatusNotFound, fmt.Errorf("%w: %s", board.ErrCardNotFound, chi.URLParam(r, "card")))
	case resolver.IsAmbiguousError(err):
		writeErr(w, http.StatusConflict, err)
	default:
		writeErr(w, http.StatusBadRequest, err)
	}
	return "", false
}

// writeEngineErr maps engine sentinels to status codes.
func writeEngineErr(w http.ResponseWriter, err error) {
	switch {
	case board.IsInvalidColumn(err), board.IsCardNotFound(err):
		writeErr(w, http.StatusNotFound, err)
	case errors.Is(err, board.ErrInvalidDirection):
		writeErr(w, http.StatusBadRequest, err)
	default:
		writeErr(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
