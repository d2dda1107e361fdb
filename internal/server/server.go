// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the citation pipeline over HTTP. POST /citations
// takes a single paragraph and returns the cited text with its BibTeX
// entries; callers authenticate with a bearer token.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// ErrNoToken is returned when the server is configured without an API token.
var ErrNoToken = errors.New("server API token is not configured")

const (
	defaultMaxTextLength = 3000
	maxBodyBytes         = 1 << 20
	shutdownTimeout      = 10 * time.Second
)

// Runner runs the pipeline for one paragraph.
type Runner interface {
	Run(ctx context.Context, text string) (*types.Run, error)
}

// Server serves the citation API.
type Server struct {
	cfg    types.ServerConfig
	runner Runner
	logger *zap.Logger
	mux    *http.ServeMux
}

// New builds a Server. The API token is required.
func New(cfg types.ServerConfig, runner Runner, logger *zap.Logger) (*Server, error) {
	if cfg.APIToken == "" {
		return nil, ErrNoToken
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = defaultMaxTextLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, runner: runner, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /citations", s.handleDescribe)
	s.mux.Handle("POST /citations", s.authenticate(http.HandlerFunc(s.handleCitations)))
	s.mux.Handle("POST /citations/{$}", s.authenticate(http.HandlerFunc(s.handleCitations)))
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the root handler with request logging and metrics.
func (s *Server) Handler() http.Handler {
	return s.instrument(s.mux)
}

// ListenAndServe serves on the configured port until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         net.JoinHostPort("", strconv.Itoa(s.cfg.Port)),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"description": "Academic Citation API",
		"endpoints": map[string]string{
			"/citations": "POST - Get citations for a text paragraph",
		},
	})
}

func (s *Server) handleDescribe(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"description": "POST - Get citations for a text paragraph",
	})
}

type citationRequest struct {
	Text *string `json:"text"`
}

type citationResponse struct {
	CitedText     string   `json:"cited_text"`
	BibTeXEntries []string `json:"bibtex_entries"`
}

func (s *Server) handleCitations(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req citationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if req.Text == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "text: field required")
		return
	}
	text, problem := validateText(*req.Text, s.cfg.MaxTextLength)
	if problem != "" {
		writeDetail(w, http.StatusUnprocessableEntity, problem)
		return
	}

	run, err := s.runner.Run(r.Context(), text)
	if err != nil {
		s.logger.Error("pipeline failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := citationResponse{CitedText: run.CitedText, BibTeXEntries: run.BibTeX}
	if resp.BibTeXEntries == nil {
		resp.BibTeXEntries = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// validateText enforces a single non-empty paragraph of at most maxLen
// characters. It returns the trimmed text, or the problem shown to the
// client.
func validateText(text string, maxLen int) (string, string) {
	if strings.Contains(text, "\n") {
		return "", "Text must be a single paragraph (no line breaks)"
	}
	if utf8.RuneCountInString(text) > maxLen {
		return "", fmt.Sprintf("Text must not exceed %d characters", maxLen)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "Text cannot be empty"
	}
	return text, ""
}

// authenticate requires "Authorization: Bearer <token>" matching the
// configured token.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, cred, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(cred) == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(cred)), []byte(s.cfg.APIToken)) != 1 {
			s.logger.Warn("rejected token", zap.String("remote", r.RemoteAddr))
			writeDetail(w, http.StatusUnauthorized, "Invalid authentication token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
