package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/ontology"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/stopwords"
	fixtures "github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/testutil"
	apperrors "github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/metrics"
)

type recorder struct {
	mu     sync.Mutex
	events []analytics.SearchEvent
}

func (r *recorder) Track(e analytics.SearchEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func engines(onto *ontology.Graph) []*engine.Engine {
	ar := engine.Build(fixtures.MustCorpus(fixtures.Fatiha), stopwords.New("عليهم"), tokenizer.Arabic, engine.Options{Ontology: onto})
	en := engine.Build(fixtures.MustCorpus(fixtures.FatihaEnglish), stopwords.Default("en"), tokenizer.English, engine.Options{})
	return []*engine.Engine{en, ar}
}

func newService(t *testing.T, opts Options) *Service {
	t.Helper()
	s, err := New(engines(nil), opts)
	require.NoError(t, err)
	return s
}

func TestNewRequiresEngine(t *testing.T) {
	_, err := New(nil, Options{})
	assert.ErrorIs(t, err, apperrors.ErrResourceMissing)
}

func TestLanguages(t *testing.T) {
	s := newService(t, Options{})
	assert.Equal(t, []tokenizer.Language{tokenizer.Arabic, tokenizer.English}, s.Languages())
}

func TestSearchArabic(t *testing.T) {
	rec := &recorder{}
	m := metrics.New()
	s := newService(t, Options{Tracker: rec, Metrics: m})

	resp, err := s.Search(context.Background(), "الرَّحْمَٰنِ الرَّحِيمِ", "auto", 1)
	require.NoError(t, err)
	assert.Equal(t, "ar", resp.Language)
	assert.Equal(t, []string{"الرحمن", "الرحيم"}, resp.Terms)
	assert.Equal(t, 2, resp.TotalHits)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "1:3", resp.Results[0].Reference)
	assert.Equal(t, "الرحمن الرحيم", resp.Results[0].Text)
	assert.False(t, resp.Cached)

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, analytics.KindSearch, ev.Kind)
	assert.Equal(t, 2, ev.TotalHits)
	assert.Equal(t, 1, ev.Returned)
	assert.GreaterOrEqual(t, ev.ExpandedTerms, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("search", "ar", "hit")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.CorpusVerses.WithLabelValues("ar")))
	assert.Positive(t, testutil.ToFloat64(m.ExpansionTermsTotal.WithLabelValues("exact")))
}

func TestSearchEnglish(t *testing.T) {
	s := newService(t, Options{})

	resp, err := s.Search(context.Background(), "Merciful", "", 10)
	require.NoError(t, err)
	assert.Equal(t, "en", resp.Language)
	assert.Equal(t, 2, resp.TotalHits)
}

func TestSearchZeroHits(t *testing.T) {
	s := newService(t, Options{})

	resp, err := s.Search(context.Background(), "zebra", "en", 10)
	require.NoError(t, err)
	assert.Zero(t, resp.TotalHits)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
}

func TestSearchRejectsBadInput(t *testing.T) {
	s := newService(t, Options{})
	ctx := context.Background()

	_, err := s.Search(ctx, "   ", "ar", 10)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = s.Search(ctx, "الرحمن", "fr", 10)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedLanguage)
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatusCode(err))

	arOnly, err := New(engines(nil)[1:], Options{})
	require.NoError(t, err)
	_, err = arOnly.Search(ctx, "mercy", "auto", 10)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedLanguage)
}

func TestLimitIsClamped(t *testing.T) {
	s := newService(t, Options{DefaultLimit: 1, MaxResults: 2})
	ctx := context.Background()

	resp, err := s.Search(ctx, "الرحمن الرحيم الصراط", "ar", 0)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)

	resp, err = s.Search(ctx, "الرحمن الرحيم الصراط", "ar", 50)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, 3, resp.TotalHits)
}

func TestSearchUsesCache(t *testing.T) {
	store, err := cache.NewMemoryStore(1 << 20)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	c := cache.New(store, time.Minute, nil)
	rec := &recorder{}
	s := newService(t, Options{Cache: c, Tracker: rec})
	ctx := context.Background()

	first, err := s.Search(ctx, "الرحمن", "ar", 5)
	require.NoError(t, err)
	second, err := s.Search(ctx, "الرَّحْمَٰنِ", "ar", 5)
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, "الرَّحْمَٰنِ", second.Query)
	assert.Equal(t, first.Results, second.Results)
	assert.True(t, rec.events[1].CacheHit)

	stats, ok := s.CacheStats()
	require.True(t, ok)
	assert.Equal(t, int64(1), stats.Hits)

	require.NoError(t, s.InvalidateCache(ctx))
	third, err := s.Search(ctx, "الرحمن", "ar", 5)
	require.NoError(t, err)
	assert.False(t, third.Cached)
}

func TestAnswer(t *testing.T) {
	rec := &recorder{}
	s := newService(t, Options{Tracker: rec})

	resp, err := s.Answer(context.Background(), "من الرحمن؟", "auto", 0)
	require.NoError(t, err)
	assert.Equal(t, "person", resp.QuestionType)
	assert.Equal(t, []string{"الرحمن"}, resp.Terms)
	require.NotEmpty(t, resp.Results)
	assert.LessOrEqual(t, len(resp.Results), 3)
	assert.Equal(t, 3, resp.Results[0].Aya)
	assert.Equal(t, analytics.KindAnswer, rec.events[0].Kind)
	assert.Equal(t, "person", rec.events[0].QuestionType)

	// TotalHits counts every scored verse, as Search does.
	search, err := s.Search(context.Background(), "الرحمن", "ar", 1)
	require.NoError(t, err)
	resp, err = s.Answer(context.Background(), "من الرحمن؟", "ar", 1)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, search.TotalHits, resp.TotalHits)
	assert.Greater(t, resp.TotalHits, 1)

	resp, err = s.Answer(context.Background(), "من", "ar", 3)
	require.NoError(t, err)
	assert.Zero(t, resp.TotalHits)
	assert.Empty(t, resp.Results)
}

func TestVerse(t *testing.T) {
	s := newService(t, Options{})

	v, err := s.Verse("", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "الحمد لله رب العالمين", v.Text)

	v, err = s.Verse("en", 1, 6)
	require.NoError(t, err)
	assert.Equal(t, "Guide us to the straight path -", v.Text)

	_, err = s.Verse("ar", 9, 200)
	assert.ErrorIs(t, err, apperrors.ErrVerseNotFound)
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatusCode(err))
}

func TestAnalyze(t *testing.T) {
	onto := ontology.NewGraph([]ontology.Concept{{ID: "Allah", LabelAr: "الله", LabelEn: "allah"}}, nil)
	s, err := New(engines(onto), Options{})
	require.NoError(t, err)

	a, err := s.Analyze("الرَّحْمَٰنِ", "")
	require.NoError(t, err)
	assert.Equal(t, "الرحمن", a.Normalized)
	assert.Equal(t, "ar", a.Language)
	assert.Equal(t, 2, a.Count)
	assert.Equal(t, 2, a.VerseCount)
	assert.Equal(t, 2, a.IndexDocs)
	assert.NotEmpty(t, a.Expansion)
	assert.Nil(t, a.Concept)

	a, err = s.Analyze("الله", "ar")
	require.NoError(t, err)
	require.NotNil(t, a.Concept)
	assert.Equal(t, "Allah", a.Concept.ID)

	_, err = s.Analyze("two words", "en")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestConcept(t *testing.T) {
	onto := ontology.NewGraph(
		[]ontology.Concept{{ID: "Allah", LabelAr: "الله", LabelEn: "allah"}, {ID: "Worlds", LabelAr: "عالمين", LabelEn: "worlds"}},
		[]ontology.Relation{{Subject: "Allah", Verb: "رب", Object: "#Worlds"}},
	)
	s, err := New(engines(onto), Options{})
	require.NoError(t, err)

	view, err := s.Concept("allah")
	require.NoError(t, err)
	assert.Equal(t, "Allah", view.Concept.ID)
	require.Len(t, view.Outgoing, 1)
	assert.Equal(t, "Worlds", view.Outgoing[0].Object)
	assert.Empty(t, view.Incoming)

	_, err = s.Concept("nothing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = newService(t, Options{}).Concept("allah")
	assert.ErrorIs(t, err, apperrors.ErrResourceMissing)
}

func TestStats(t *testing.T) {
	s := newService(t, Options{})

	stats := s.Stats()
	require.Contains(t, stats, "ar")
	require.Contains(t, stats, "en")
	assert.Equal(t, 7, stats["ar"].Corpus.TotalVerses)
	assert.Equal(t, 1, stats["ar"].Corpus.TotalSuras)
	assert.Positive(t, stats["ar"].IndexTerms)
	assert.Zero(t, stats["ar"].Concepts)
}
