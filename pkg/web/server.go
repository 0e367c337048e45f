// Package web is the HTML and JSON front end that forwards text to the
// analyzer function.
package web

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/seeliang/google-cloud-engineering/pkg/analyzer"
	"github.com/seeliang/google-cloud-engineering/pkg/middleware"
)

const textRequired = "Text is required."

// Analyzer computes stats for text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*analyzer.Stats, error)
}

// Server renders the form and proxies submissions.
type Server struct {
	analyzer    Analyzer
	functionURL string
	logger      *zap.Logger
}

// NewServer returns a Server forwarding to a; functionURL is only displayed.
func NewServer(a Analyzer, functionURL string, logger *zap.Logger) *Server {
	return &Server{analyzer: a, functionURL: functionURL, logger: logger}
}

// Routes registers the page, form and JSON endpoints.
func (s *Server) Routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logging(s.logger))

	router.Get("/", s.index)
	router.Post("/submit", s.submit)
	router.Post("/api/analyze", s.analyze)

	return router
}

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, page{})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	text := requestText(r)
	if strings.TrimSpace(text) == "" {
		s.render(w, http.StatusBadRequest, page{Text: text, Error: textRequired})
		return
	}

	stats, err := s.analyzer.Analyze(r.Context(), text)
	if err != nil {
		s.logger.Warn("forwarding to analyzer", zap.String("url", s.functionURL), zap.Error(err))
		s.render(w, http.StatusBadGateway, page{Text: text, Error: errorMessage(err)})
		return
	}
	s.render(w, http.StatusOK, page{Text: text, Stats: stats})
}

type analyzeResponse struct {
	Text  string          `json:"text"`
	Stats *analyzer.Stats `json:"stats"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	text := requestText(r)
	if strings.TrimSpace(text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: textRequired})
		return
	}

	stats, err := s.analyzer.Analyze(r.Context(), text)
	if err != nil {
		s.logger.Warn("forwarding to analyzer", zap.String("url", s.functionURL), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Failed to reach analyzer.", Details: errorMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Text: text, Stats: stats})
}

func (s *Server) render(w http.ResponseWriter, status int, p page) {
	p.FunctionURL = s.functionURL
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := renderPage(w, p); err != nil {
		s.logger.Error("rendering page", zap.Error(err))
	}
}

// requestText reads the text field from a JSON or form-encoded body.
func requestText(r *http.Request) string {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body struct {
			Text any `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return ""
		}
		text, _ := body.Text.(string)
		return text
	}
	return r.PostFormValue("text")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
