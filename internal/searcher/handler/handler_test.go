package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/ontology"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/results"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/service"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/stopwords"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/testutil"
)

func newMux(t *testing.T, withCache bool) *http.ServeMux {
	t.Helper()
	onto := ontology.NewGraph([]ontology.Concept{{ID: "Allah", LabelAr: "الله", LabelEn: "allah"}}, nil)
	engines := []*engine.Engine{
		engine.Build(testutil.MustCorpus(testutil.Fatiha), stopwords.New("عليهم"), tokenizer.Arabic, engine.Options{Ontology: onto}),
		engine.Build(testutil.MustCorpus(testutil.FatihaEnglish), stopwords.Default("en"), tokenizer.English, engine.Options{}),
	}
	opts := service.Options{MaxResults: 5}
	if withCache {
		store, err := cache.NewMemoryStore(1 << 20)
		require.NoError(t, err)
		t.Cleanup(store.Close)
		opts.Cache = cache.New(store, time.Minute, nil)
	}
	svc, err := service.New(engines, opts)
	require.NoError(t, err)

	mux := http.NewServeMux()
	New(svc).Register(mux)
	return mux
}

func do(t *testing.T, mux http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestSearch(t *testing.T) {
	mux := newMux(t, false)

	rec := do(t, mux, http.MethodGet, "/api/v1/search?q=%D8%A7%D9%84%D8%B1%D8%AD%D9%85%D9%86&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode[results.Response](t, rec)
	assert.Equal(t, "ar", resp.Language)
	assert.Equal(t, 2, resp.TotalHits)
	assert.Len(t, resp.Results, 1)
}

func TestSearchValidation(t *testing.T) {
	mux := newMux(t, false)
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing q", "/api/v1/search", http.StatusBadRequest},
		{"bad limit", "/api/v1/search?q=mercy&limit=abc", http.StatusBadRequest},
		{"zero limit", "/api/v1/search?q=mercy&limit=0", http.StatusBadRequest},
		{"unsupported language", "/api/v1/search?q=mercy&lang=fr", http.StatusBadRequest},
		{"zero hits", "/api/v1/search?q=zebra&lang=en", http.StatusOK},
		{"limit above max", "/api/v1/search?q=merciful&limit=500", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodGet, tt.target)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestAnswer(t *testing.T) {
	mux := newMux(t, false)

	rec := do(t, mux, http.MethodGet, "/api/v1/answer?q=Who+is+the+Lord+of+the+worlds%3F&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[results.Response](t, rec)
	assert.Equal(t, "en", resp.Language)
	assert.Equal(t, "person", resp.QuestionType)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "1:2", resp.Results[0].Reference)
}

func TestVerse(t *testing.T) {
	mux := newMux(t, false)

	rec := do(t, mux, http.MethodGet, "/api/v1/verses/1/4")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "مالك يوم الدين")

	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/api/v1/verses/2/1").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodGet, "/api/v1/verses/x/1").Code)
}

func TestAnalyzeAndConcept(t *testing.T) {
	mux := newMux(t, false)

	rec := do(t, mux, http.MethodGet, "/api/v1/analyze?word=merciful")
	require.Equal(t, http.StatusOK, rec.Code)
	a := decode[service.Analysis](t, rec)
	assert.Equal(t, "en", a.Language)
	assert.Equal(t, 4, a.Count)

	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodGet, "/api/v1/analyze").Code)

	rec = do(t, mux, http.MethodGet, "/api/v1/ontology/allah")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Allah", decode[service.ConceptView](t, rec).Concept.ID)
	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/api/v1/ontology/none").Code)
}

func TestStats(t *testing.T) {
	rec := do(t, newMux(t, false), http.MethodGet, "/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]json.RawMessage](t, rec)
	assert.JSONEq(t, `["ar","en"]`, string(body["languages"]))
}

func TestCacheEndpoints(t *testing.T) {
	disabled := newMux(t, false)
	assert.Contains(t, do(t, disabled, http.MethodGet, "/api/v1/cache/stats").Body.String(), "disabled")
	assert.Equal(t, http.StatusServiceUnavailable, do(t, disabled, http.MethodDelete, "/api/v1/cache").Code)

	mux := newMux(t, true)
	do(t, mux, http.MethodGet, "/api/v1/search?q=merciful")
	do(t, mux, http.MethodGet, "/api/v1/search?q=merciful")
	stats := decode[cache.Stats](t, do(t, mux, http.MethodGet, "/api/v1/cache/stats"))
	assert.Equal(t, "memory", stats.Backend)
	assert.Equal(t, int64(1), stats.Hits)

	assert.Equal(t, http.StatusOK, do(t, mux, http.MethodDelete, "/api/v1/cache").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, mux, http.MethodPost, "/api/v1/cache").Code)
}
