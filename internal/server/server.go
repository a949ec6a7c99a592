// Package server exposes the laptop assistant over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/thywilljoshua/laptop-specs/internal/ai"
	"github.com/thywilljoshua/laptop-specs/internal/catalog"
)

// Searcher is the subset of the catalog the search endpoint needs.
type Searcher interface {
	Search(ctx context.Context, query, kind string, size int) ([]catalog.Document, error)
}

type Options struct {
	Assistant        ai.Assistant
	Catalog          Searcher
	SpecsPath        string
	MarketplacePaths []string
	HistoryLimit     int
	ChatTimeout      time.Duration
	Static           fs.FS
	Logger           *slog.Logger
}

type Server struct {
	opts Options
	log  *slog.Logger

	mu      sync.Mutex
	history []ai.Message
}

func New(opts Options) *Server {
	if opts.Assistant == nil {
		opts.Assistant = ai.Noop{}
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}
	if opts.ChatTimeout <= 0 {
		opts.ChatTimeout = 60 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{opts: opts, log: log}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/", s.handleRoot)
	r.Post("/chat", s.handleChat)
	r.Post("/clear", s.handleClear)
	if s.opts.Catalog != nil {
		r.Get("/search", s.handleSearch)
	}
	if s.opts.Static != nil {
		r.Handle("/app/*", http.StripPrefix("/app/", http.FileServer(http.FS(s.opts.Static))))
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      s.opts.ChatTimeout + 15*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api server starting", slog.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type errorResponse struct {
	Error string `json:"error"`
}

const maxChatBody = 64 << 10

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "API is running"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeJSON(w, http.StatusOK, chatResponse{Answer: ai.Greeting})
		return
	}

	system := ai.SystemPrompt(s.sources())

	s.mu.Lock()
	history := append([]ai.Message(nil), s.history...)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.ChatTimeout)
	defer cancel()

	answer, err := s.opts.Assistant.Chat(ctx, system, history, question)
	if err != nil {
		s.log.Error("chat failed", slog.Any("err", err), slog.String("request_id", middleware.GetReqID(r.Context())))
		writeJSON(w, http.StatusOK, chatResponse{Answer: "Error: " + err.Error()})
		return
	}

	s.mu.Lock()
	s.history = append(s.history,
		ai.Message{Role: ai.RoleUser, Content: question},
		ai.Message{Role: ai.RoleAssistant, Content: answer},
	)
	if n := len(s.history); n > s.opts.HistoryLimit {
		s.history = append([]ai.Message(nil), s.history[n-s.opts.HistoryLimit:]...)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "Chat history cleared"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	kind := strings.TrimSpace(r.URL.Query().Get("kind"))
	size := clampInt(r.URL.Query().Get("size"), 10, 100)

	docs, err := s.opts.Catalog.Search(ctx, query, kind, size)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": docs})
}

// History returns a copy of the retained chat turns.
func (s *Server) History() []ai.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ai.Message(nil), s.history...)
}

// sources reads the data files on every question. Unreadable files are skipped.
func (s *Server) sources() []ai.Source {
	var out []ai.Source
	add := func(name, path string) {
		if path == "" {
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn("data source unavailable", slog.String("path", path), slog.Any("err", err))
			return
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			s.log.Warn("data source is not JSON", slog.String("path", path), slog.Any("err", err))
			return
		}
		out = append(out, ai.Source{Name: name, Data: buf.String()})
	}
	add("PDF Specs", s.opts.SpecsPath)
	for _, p := range s.opts.MarketplacePaths {
		add("Website Data ("+filepath.Base(p)+")", p)
	}
	return out
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
