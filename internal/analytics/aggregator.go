// Package analytics records what users search for: a collector takes events
// off the request path and an aggregator keeps running totals, popular and
// zero-result queries, and latency percentiles.
package analytics

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/kafka"
)

// maxLatencySamples bounds the latency window; percentiles cover the most
// recent samples only.
const maxLatencySamples = 10000

type Stats struct {
	TotalSearches     int64            `json:"total_searches"`
	TotalAnswers      int64            `json:"total_answers"`
	CacheHits         int64            `json:"cache_hits"`
	CacheMisses       int64            `json:"cache_misses"`
	ZeroResultCount   int64            `json:"zero_result_count"`
	AvgLatencyMs      float64          `json:"avg_latency_ms"`
	P50LatencyMs      float64          `json:"p50_latency_ms"`
	P95LatencyMs      float64          `json:"p95_latency_ms"`
	P99LatencyMs      float64          `json:"p99_latency_ms"`
	TopQueries        []QueryCount     `json:"top_queries"`
	ZeroResultQueries []QueryCount     `json:"zero_result_queries"`
	ByLanguage        map[string]int64 `json:"by_language"`
	ByQuestionType    map[string]int64 `json:"by_question_type"`
	QueriesPerMinute  float64          `json:"queries_per_minute"`
	Since             time.Time        `json:"since"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     int64
	totalAnswers      int64
	cacheHits         int64
	cacheMisses       int64
	zeroResults       int64
	latencies         []float64
	next              int
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	byLanguage        map[string]int64
	byQuestionType    map[string]int64
	startTime         time.Time
	topN              int

	now    func() time.Time
	logger *slog.Logger
}

// NewAggregator keeps the topN most frequent queries in each ranking.
func NewAggregator(topN int) *Aggregator {
	if topN <= 0 {
		topN = 10
	}
	return &Aggregator{
		latencies:         make([]float64, 0, 1024),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		byLanguage:        make(map[string]int64),
		byQuestionType:    make(map[string]int64),
		startTime:         time.Now(),
		topN:              topN,
		now:               time.Now,
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// Record folds one event into the totals.
func (a *Aggregator) Record(event SearchEvent) {
	query := strings.TrimSpace(event.Query)

	a.mu.Lock()
	defer a.mu.Unlock()

	switch event.Kind {
	case KindAnswer:
		a.totalAnswers++
		a.byQuestionType[event.QuestionType]++
	default:
		a.totalSearches++
	}
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	if event.Language != "" {
		a.byLanguage[event.Language]++
	}
	a.queryCounts[query]++
	if event.TotalHits == 0 {
		a.zeroResults++
		a.zeroResultQueries[query]++
	}

	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.next] = event.LatencyMs
		a.next = (a.next + 1) % maxLatencySamples
	}
}

func (a *Aggregator) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := Stats{
		TotalSearches:     a.totalSearches,
		TotalAnswers:      a.totalAnswers,
		CacheHits:         a.cacheHits,
		CacheMisses:       a.cacheMisses,
		ZeroResultCount:   a.zeroResults,
		TopQueries:        topN(a.queryCounts, a.topN),
		ZeroResultQueries: topN(a.zeroResultQueries, a.topN),
		ByLanguage:        copyCounts(a.byLanguage),
		ByQuestionType:    copyCounts(a.byQuestionType),
		Since:             a.startTime,
	}
	if len(a.latencies) > 0 {
		sorted := make([]float64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Float64s(sorted)

		var sum float64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = sum / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	if elapsed := a.now().Sub(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(a.totalSearches+a.totalAnswers) / elapsed
	}
	return stats
}

// HandleEvent adapts the aggregator to a Kafka consumer. Undecodable
// messages are logged and committed so they are not redelivered forever.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(_ context.Context, _ []byte, value []byte) error {
		event, err := kafka.DecodeJSON[SearchEvent](value)
		if err != nil {
			agg.logger.Warn("skipping undecodable analytics event", "error", err)
			return nil
		}
		agg.Record(event)
		return nil
	}
}

// percentile uses nearest rank on an ascending slice.
func percentile(sorted []float64, pct int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count descending then query ascending.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
