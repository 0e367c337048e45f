package analyzer

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/seeliang/google-cloud-engineering/pkg/middleware"
)

const maxBodyBytes = 1 << 20

// Handler serves text statistics.
type Handler struct {
	logger *zap.Logger
}

// NewHandler returns a Handler logging to logger.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// Routes answers on every path. GET and POST return the stats, OPTIONS is a
// preflight and every other method is rejected.
func (h *Handler) Routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.CORS("POST, GET, OPTIONS"))
	router.Use(middleware.Logging(h.logger))

	router.Options("/*", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	router.Get("/*", h.analyze)
	router.Post("/*", h.analyze)

	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	})

	return router
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	text, err := requestText(r)
	if err != nil {
		h.logger.Warn("reading request body", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, AnalyzeTextStats(text))
}

// requestText takes the text from a JSON body field, from a plain body or
// from the text query parameter, in that order.
func requestText(r *http.Request) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return r.URL.Query().Get("text"), err
	}

	if len(raw) > 0 {
		var body map[string]any
		if json.Unmarshal(raw, &body) != nil {
			return string(raw), nil
		}
		if text, ok := body["text"].(string); ok {
			return text, nil
		}
	}

	return r.URL.Query().Get("text"), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
