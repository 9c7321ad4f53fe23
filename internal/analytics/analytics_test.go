package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/kafka"
)

func TestAggregatorStats(t *testing.T) {
	agg := NewAggregator(2)
	agg.Record(SearchEvent{Kind: KindSearch, Query: "الرحمن", Language: "ar", TotalHits: 2, LatencyMs: 1})
	agg.Record(SearchEvent{Kind: KindSearch, Query: "الرحمن ", Language: "ar", TotalHits: 2, LatencyMs: 3, CacheHit: true})
	agg.Record(SearchEvent{Kind: KindSearch, Query: "zzz", Language: "en", TotalHits: 0, LatencyMs: 2})
	agg.Record(SearchEvent{Kind: KindAnswer, Query: "من الرحمن", Language: "ar", QuestionType: "person", TotalHits: 1, LatencyMs: 4})

	s := agg.Stats()
	assert.Equal(t, int64(3), s.TotalSearches)
	assert.Equal(t, int64(1), s.TotalAnswers)
	assert.Equal(t, int64(1), s.CacheHits)
	assert.Equal(t, int64(3), s.CacheMisses)
	assert.Equal(t, int64(1), s.ZeroResultCount)
	assert.Equal(t, []QueryCount{{"الرحمن", 2}, {"zzz", 1}}, s.TopQueries)
	assert.Equal(t, []QueryCount{{"zzz", 1}}, s.ZeroResultQueries)
	assert.Equal(t, map[string]int64{"ar": 3, "en": 1}, s.ByLanguage)
	assert.Equal(t, map[string]int64{"person": 1}, s.ByQuestionType)
	assert.InDelta(t, 2.5, s.AvgLatencyMs, 1e-9)
	assert.Equal(t, 3.0, s.P50LatencyMs)
	assert.Equal(t, 4.0, s.P99LatencyMs)
}

func TestAggregatorLatencyWindowIsBounded(t *testing.T) {
	agg := NewAggregator(10)
	for i := 0; i < maxLatencySamples+10; i++ {
		agg.Record(SearchEvent{Query: "q", LatencyMs: float64(i)})
	}
	assert.Len(t, agg.latencies, maxLatencySamples)
	assert.Equal(t, int64(maxLatencySamples+10), agg.Stats().TotalSearches)
}

func TestHandleEvent(t *testing.T) {
	agg := NewAggregator(10)
	h := HandleEvent(agg)

	data, err := json.Marshal(SearchEvent{Kind: KindSearch, Query: "mercy", Language: "en", TotalHits: 3})
	require.NoError(t, err)
	require.NoError(t, h(context.Background(), nil, data))
	require.NoError(t, h(context.Background(), nil, []byte("garbage")))

	assert.Equal(t, int64(1), agg.Stats().TotalSearches)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (f *fakePublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, events...)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func TestCollectorRecordsAndPublishes(t *testing.T) {
	agg := NewAggregator(10)
	pub := &fakePublisher{}
	c := NewCollector(agg, pub, CollectorOptions{BufferSize: 16, BatchSize: 2, FlushInterval: time.Hour})
	c.Start(context.Background())

	for _, q := range []string{"a", "b", "c"} {
		c.Track(SearchEvent{Kind: KindSearch, Query: q, Language: "en", TotalHits: 1})
	}
	c.Close()

	assert.Equal(t, int64(3), agg.Stats().TotalSearches)
	assert.Equal(t, 3, pub.count())
	assert.Equal(t, "en", pub.events[0].Key)
	assert.Zero(t, c.Dropped())

	c.Track(SearchEvent{Query: "after close"})
	assert.Equal(t, int64(3), agg.Stats().TotalSearches)
}

func TestCollectorDropsWhenFull(t *testing.T) {
	dropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "dropped"})
	c := NewCollector(nil, nil, CollectorOptions{BufferSize: 1, Dropped: dropped})

	c.Track(SearchEvent{Query: "kept"})
	c.Track(SearchEvent{Query: "lost"})
	assert.Equal(t, int64(1), c.Dropped())
	assert.Equal(t, 1.0, testutil.ToFloat64(dropped))
	c.Close()
}

func TestCollectorBoundsFailedBatches(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	c := NewCollector(nil, pub, CollectorOptions{BufferSize: 64, BatchSize: 1, FlushInterval: time.Hour})
	c.Start(context.Background())
	for i := 0; i < 10; i++ {
		c.Track(SearchEvent{Query: "q"})
	}
	c.Close()

	assert.Equal(t, int64(7), c.Dropped())
}

func TestCollectorStopsOnContextCancel(t *testing.T) {
	agg := NewAggregator(10)
	ctx, cancel := context.WithCancel(context.Background())
	c := NewCollector(agg, nil, CollectorOptions{})
	c.Start(ctx)
	c.Track(SearchEvent{Query: "q"})
	cancel()
	c.Close()
	assert.Equal(t, int64(1), agg.Stats().TotalSearches)
}

func TestHandlerStats(t *testing.T) {
	agg := NewAggregator(10)
	agg.Record(SearchEvent{Kind: KindSearch, Query: "q", TotalHits: 1})
	h := NewHandler(agg, nil)

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var s Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, int64(1), s.TotalSearches)

	rec = httptest.NewRecorder()
	h.Snapshots(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/snapshots", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
