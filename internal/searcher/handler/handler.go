package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/results"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/service"
	apperrors "github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/logger"
)

// Searcher is the service surface the HTTP layer exposes.
type Searcher interface {
	Search(ctx context.Context, query, lang string, limit int) (*results.Response, error)
	Answer(ctx context.Context, question, lang string, limit int) (*results.Response, error)
	Verse(lang string, sura, aya int) (corpus.Verse, error)
	Analyze(word, lang string) (*service.Analysis, error)
	Concept(query string) (*service.ConceptView, error)
	Stats() map[string]service.LanguageStats
	Languages() []tokenizer.Language
	CacheStats() (cache.Stats, bool)
	InvalidateCache(ctx context.Context) error
}

type Handler struct {
	searcher Searcher
	logger   *slog.Logger
}

func New(s Searcher) *Handler {
	return &Handler{
		searcher: s,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

// Register mounts every search route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/answer", h.Answer)
	mux.HandleFunc("GET /api/v1/verses/{sura}/{aya}", h.Verse)
	mux.HandleFunc("GET /api/v1/analyze", h.Analyze)
	mux.HandleFunc("GET /api/v1/ontology/{concept}", h.Concept)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("DELETE /api/v1/cache", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, ok := h.parseLimit(w, q.Get("limit"))
	if !ok {
		return
	}
	resp, err := h.searcher.Search(r.Context(), query, q.Get("lang"), limit)
	if err != nil {
		h.fail(w, r, "search failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	question := q.Get("q")
	if question == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, ok := h.parseLimit(w, q.Get("limit"))
	if !ok {
		return
	}
	resp, err := h.searcher.Answer(r.Context(), question, q.Get("lang"), limit)
	if err != nil {
		h.fail(w, r, "answer failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Verse(w http.ResponseWriter, r *http.Request) {
	sura, err1 := strconv.Atoi(r.PathValue("sura"))
	aya, err2 := strconv.Atoi(r.PathValue("aya"))
	if err1 != nil || err2 != nil || sura < 1 || aya < 1 {
		h.writeError(w, http.StatusBadRequest, "sura and aya must be positive integers")
		return
	}
	v, err := h.searcher.Verse(r.URL.Query().Get("lang"), sura, aya)
	if err != nil {
		h.fail(w, r, "verse lookup failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	if word == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'word' is required")
		return
	}
	a, err := h.searcher.Analyze(word, r.URL.Query().Get("lang"))
	if err != nil {
		h.fail(w, r, "analyze failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, a)
}

func (h *Handler) Concept(w http.ResponseWriter, r *http.Request) {
	view, err := h.searcher.Concept(r.PathValue("concept"))
	if err != nil {
		h.fail(w, r, "concept lookup failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"languages": h.searcher.Languages(),
		"resources": h.searcher.Stats(),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats, ok := h.searcher.CacheStats()
	if !ok {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.searcher.CacheStats(); !ok {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.searcher.InvalidateCache(r.Context()); err != nil {
		h.fail(w, r, "cache invalidation failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// parseLimit accepts an empty value (service default) or a positive
// integer; the service clamps it to the configured maximum.
func (h *Handler) parseLimit(w http.ResponseWriter, raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	return n, true
}

// fail maps err to its status. Client errors carry their message; server
// errors are logged and reported generically.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error(msg, "error", err)
		h.writeError(w, status, msg)
		return
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
