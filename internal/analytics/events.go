package analytics

import "time"

type Kind string

const (
	KindSearch Kind = "search"
	KindAnswer Kind = "answer"
)

// SearchEvent describes one served search or answer request.
type SearchEvent struct {
	Kind          Kind      `json:"kind"`
	Query         string    `json:"query"`
	Language      string    `json:"language"`
	Terms         []string  `json:"terms"`
	ExpandedTerms int       `json:"expanded_terms"`
	TotalHits     int       `json:"total_hits"`
	Returned      int       `json:"returned"`
	LatencyMs     float64   `json:"latency_ms"`
	CacheHit      bool      `json:"cache_hit"`
	QuestionType  string    `json:"question_type,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id,omitempty"`
}
