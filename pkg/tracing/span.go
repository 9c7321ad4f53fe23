// Package tracing records request stages as a tree of timed spans carried in
// the context. Root spans are logged through slog when they finish.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/logger"
)

type contextKey struct{}

// Span is one timed stage of a request.
type Span struct {
	Name     string
	TraceID  string
	Start    time.Time
	Duration time.Duration
	Children []*Span
	Attrs    map[string]any

	parent *Span
	mu     sync.Mutex
}

// Tracer creates spans. A disabled tracer hands out spans that are never
// logged, so callers do not need to branch.
type Tracer struct {
	enabled bool
	logger  *slog.Logger
}

func NewTracer(enabled bool) *Tracer {
	return &Tracer{
		enabled: enabled,
		logger:  slog.Default().With("component", "tracing"),
	}
}

// Start opens a span under the span already in ctx, or a new root span
// whose trace id is the request id.
func (t *Tracer) Start(ctx context.Context, name string) (context.Context, *Span) {
	span := &Span{
		Name:  name,
		Start: time.Now(),
		Attrs: make(map[string]any),
	}
	if parent := FromContext(ctx); parent != nil {
		span.parent = parent
		span.TraceID = parent.TraceID
		parent.mu.Lock()
		parent.Children = append(parent.Children, span)
		parent.mu.Unlock()
	} else {
		span.TraceID = logger.RequestID(ctx)
	}
	return context.WithValue(ctx, contextKey{}, span), span
}

// End stops the span. Ending a root span logs the whole tree.
func (t *Tracer) End(span *Span) {
	span.mu.Lock()
	span.Duration = time.Since(span.Start)
	span.mu.Unlock()
	if span.parent == nil && t.enabled {
		span.log(t.logger, 0)
	}
}

func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.Attrs[key] = value
	s.mu.Unlock()
}

// FromContext returns the current span in ctx, or nil.
func FromContext(ctx context.Context) *Span {
	if span, ok := ctx.Value(contextKey{}).(*Span); ok {
		return span
	}
	return nil
}

func (s *Span) log(l *slog.Logger, depth int) {
	s.mu.Lock()
	attrs := []any{
		"trace_id", s.TraceID,
		"span", s.Name,
		"duration_us", s.Duration.Microseconds(),
		"depth", depth,
	}
	for k, v := range s.Attrs {
		attrs = append(attrs, k, v)
	}
	children := append([]*Span(nil), s.Children...)
	s.mu.Unlock()

	l.Info("span", attrs...)
	for _, child := range children {
		child.log(l, depth+1)
	}
}
