// Package service is the request-level front of the search core. It keeps
// one engine and answerer per loaded language and adds what a transport
// needs around them: language resolution, limit clamping, response
// caching, tracing, metrics and analytics events.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/qa"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/expansion"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/results"
	apperrors "github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/tracing"
)

// Tracker receives one event per served request. *analytics.Collector
// implements it.
type Tracker interface {
	Track(event analytics.SearchEvent)
}

// Options wires the optional collaborators. Every pointer may be nil.
type Options struct {
	Cache        *cache.Cache
	Tracker      Tracker
	Metrics      *metrics.Metrics
	Tracer       *tracing.Tracer
	DefaultLimit int
	MaxResults   int
	AnswerLimit  int
}

type Service struct {
	engines   map[tokenizer.Language]*engine.Engine
	answerers map[tokenizer.Language]*qa.Answerer
	stats     map[tokenizer.Language]corpus.Stats
	primary   tokenizer.Language
	opts      Options
	logger    *slog.Logger
}

// New registers engines by language. The Arabic engine, when present, is
// the primary one used where a request carries no language or text to
// detect one from.
func New(engines []*engine.Engine, opts Options) (*Service, error) {
	if len(engines) == 0 {
		return nil, fmt.Errorf("service needs at least one engine: %w", apperrors.ErrResourceMissing)
	}
	if opts.Tracer == nil {
		opts.Tracer = tracing.NewTracer(false)
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxResults < opts.DefaultLimit {
		opts.MaxResults = max(opts.DefaultLimit, 100)
	}
	if opts.AnswerLimit <= 0 {
		opts.AnswerLimit = 3
	}

	s := &Service{
		engines:   make(map[tokenizer.Language]*engine.Engine, len(engines)),
		answerers: make(map[tokenizer.Language]*qa.Answerer, len(engines)),
		stats:     make(map[tokenizer.Language]corpus.Stats, len(engines)),
		primary:   engines[0].Language(),
		opts:      opts,
		logger:    slog.Default().With("component", "search-service"),
	}
	for _, e := range engines {
		lang := e.Language()
		s.engines[lang] = e
		s.answerers[lang] = qa.New(e)
		s.stats[lang] = corpus.ComputeStats(e.Corpus(), normalizer(lang))
		if lang == tokenizer.Arabic {
			s.primary = lang
		}
		if opts.Metrics != nil {
			opts.Metrics.CorpusVerses.WithLabelValues(string(lang)).Set(float64(e.Corpus().Len()))
			opts.Metrics.IndexVocabularySize.WithLabelValues(string(lang)).Set(float64(e.Index().VocabularySize()))
		}
	}
	return s, nil
}

func normalizer(lang tokenizer.Language) corpus.Normalizer {
	return func(w string) string { return tokenizer.Term(w, lang) }
}

// Languages lists the loaded languages, sorted.
func (s *Service) Languages() []tokenizer.Language {
	out := make([]tokenizer.Language, 0, len(s.engines))
	for l := range s.engines {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *Service) Engine(lang tokenizer.Language) (*engine.Engine, bool) {
	e, ok := s.engines[lang]
	return e, ok
}

// resolve maps a requested language onto a loaded engine. "auto" or ""
// is decided by text: Arabic script selects Arabic, anything else English.
// Empty text under auto selects the primary engine.
func (s *Service) resolve(requested, text string) (*engine.Engine, error) {
	lang, err := tokenizer.ParseLanguage(requested)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrUnsupportedLanguage, http.StatusBadRequest, "%q", requested)
	}
	if lang == tokenizer.Auto {
		if strings.TrimSpace(text) == "" {
			lang = s.primary
		} else {
			lang = tokenizer.Detect(text)
		}
	}
	e, ok := s.engines[lang]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrUnsupportedLanguage, http.StatusBadRequest, "%s is not loaded", lang)
	}
	return e, nil
}

// clamp keeps limit within [1, MaxResults]; non-positive means fallback.
func (s *Service) clamp(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	return min(limit, s.opts.MaxResults)
}

// Search runs query against the engine for lang and returns at most limit
// results. TotalHits counts every verse that scored, not only those
// returned.
func (s *Service) Search(ctx context.Context, query, lang string, limit int) (*results.Response, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query must not be empty")
	}
	eng, err := s.resolve(lang, query)
	if err != nil {
		return nil, err
	}
	limit = s.clamp(limit, s.opts.DefaultLimit)
	start := time.Now()

	ctx, root := s.opts.Tracer.Start(ctx, "search")
	defer s.opts.Tracer.End(root)
	root.SetAttr("language", string(eng.Language()))

	_, span := s.opts.Tracer.Start(ctx, "parse")
	plan := parser.Parse(query, eng.Language())
	span.SetAttr("terms", len(plan.Terms))
	s.opts.Tracer.End(span)

	var expanded int
	compute := func() (*results.Response, error) {
		terms := s.expand(ctx, eng, plan.Terms)
		expanded = len(terms)

		_, span := s.opts.Tracer.Start(ctx, "score")
		scored := eng.SearchTerms(terms, 0)
		span.SetAttr("candidates", len(scored))
		s.opts.Tracer.End(span)

		_, span = s.opts.Tracer.Start(ctx, "format")
		resp := &results.Response{
			Query:     query,
			Language:  string(eng.Language()),
			Terms:     plan.Terms,
			TotalHits: len(scored),
			Results:   results.Format(scored, eng.Corpus(), limit),
		}
		s.opts.Tracer.End(span)
		return resp, nil
	}

	resp, hit, err := s.serve(ctx, cache.Key("search", string(eng.Language()), plan.Terms, limit), compute)
	if err != nil {
		return nil, err
	}
	resp.Query = query
	s.observe(ctx, analytics.SearchEvent{
		Kind:          analytics.KindSearch,
		Query:         query,
		Language:      resp.Language,
		Terms:         plan.Terms,
		ExpandedTerms: expanded,
		TotalHits:     resp.TotalHits,
		Returned:      len(resp.Results),
		CacheHit:      hit,
	}, start)
	return resp, nil
}

// expand returns the weighted terms for words, counting per-stage output
// for Arabic engines.
func (s *Service) expand(ctx context.Context, eng *engine.Engine, words []string) []ranker.WeightedTerm {
	_, span := s.opts.Tracer.Start(ctx, "expand")
	defer s.opts.Tracer.End(span)

	if eng.Language() != tokenizer.Arabic || len(words) == 0 {
		terms := eng.Expand(words)
		span.SetAttr("expanded", len(terms))
		return terms
	}
	acc := eng.Pipeline().Run(words)
	for _, stage := range []expansion.Stage{expansion.StageExact, expansion.StageLemma, expansion.StageRoot, expansion.StageOntology, expansion.StageFuzzy} {
		n := acc.Count(stage)
		span.SetAttr(string(stage), n)
		if s.opts.Metrics != nil && n > 0 {
			s.opts.Metrics.ExpansionTermsTotal.WithLabelValues(string(stage)).Add(float64(n))
		}
	}
	span.SetAttr("expanded", len(acc.Terms))
	return acc.Terms
}

// serve answers from the cache when one is configured.
func (s *Service) serve(ctx context.Context, key string, compute func() (*results.Response, error)) (*results.Response, bool, error) {
	if s.opts.Cache == nil {
		resp, err := compute()
		return resp, false, err
	}
	resp, hit, err := s.opts.Cache.GetOrCompute(ctx, key, compute)
	if err != nil {
		return nil, false, err
	}
	resp.Cached = hit
	return resp, hit, nil
}

// Answer classifies question, searches its content words and returns up to
// limit verses labelled with the question type.
func (s *Service) Answer(ctx context.Context, question, lang string, limit int) (*results.Response, error) {
	if strings.TrimSpace(question) == "" {
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "question must not be empty")
	}
	eng, err := s.resolve(lang, question)
	if err != nil {
		return nil, err
	}
	limit = s.clamp(limit, s.opts.AnswerLimit)
	start := time.Now()

	ctx, root := s.opts.Tracer.Start(ctx, "answer")
	defer s.opts.Tracer.End(root)

	classification := qa.Classify(question)
	root.SetAttr("question_type", classification.Type.String())

	compute := func() (*results.Response, error) {
		res := s.answerers[eng.Language()].Answer(question, limit)
		resp := &results.Response{
			Query:        question,
			Language:     string(eng.Language()),
			QuestionType: res.Type.String(),
			Terms:        res.Content,
			TotalHits:    res.TotalHits,
			Results:      make([]results.Result, 0, len(res.Answers)),
		}
		for _, a := range res.Answers {
			resp.Results = append(resp.Results, results.Result{
				Sura:       a.Sura,
				Aya:        a.Aya,
				Reference:  corpus.Key{Sura: a.Sura, Aya: a.Aya}.String(),
				Text:       a.Text,
				Score:      a.Score,
				Highlights: a.Highlights,
			})
		}
		return resp, nil
	}

	key := cache.Key("answer:"+classification.Type.String(), string(eng.Language()), classification.Content, limit)
	resp, hit, err := s.serve(ctx, key, compute)
	if err != nil {
		return nil, err
	}
	resp.Query = question
	s.observe(ctx, analytics.SearchEvent{
		Kind:         analytics.KindAnswer,
		Query:        question,
		Language:     resp.Language,
		Terms:        classification.Content,
		TotalHits:    resp.TotalHits,
		Returned:     len(resp.Results),
		CacheHit:     hit,
		QuestionType: resp.QuestionType,
	}, start)
	return resp, nil
}

func (s *Service) observe(ctx context.Context, event analytics.SearchEvent, start time.Time) {
	elapsed := time.Since(start)
	event.LatencyMs = float64(elapsed.Microseconds()) / 1000
	event.Timestamp = start.UTC()
	event.RequestID = logger.RequestID(ctx)

	if m := s.opts.Metrics; m != nil {
		resultType := "hit"
		if event.TotalHits == 0 {
			resultType = "zero_result"
		}
		cacheStatus := "miss"
		if event.CacheHit {
			cacheStatus = "hit"
		}
		m.SearchQueriesTotal.WithLabelValues(string(event.Kind), event.Language, resultType).Inc()
		m.SearchLatency.WithLabelValues(string(event.Kind), cacheStatus).Observe(elapsed.Seconds())
		m.SearchResultsCount.WithLabelValues(string(event.Kind)).Observe(float64(event.Returned))
	}
	if s.opts.Tracker != nil {
		s.opts.Tracker.Track(event)
	}
	logger.FromContext(ctx).Info("request served",
		"kind", event.Kind,
		"language", event.Language,
		"terms", len(event.Terms),
		"total_hits", event.TotalHits,
		"returned", event.Returned,
		"cache_hit", event.CacheHit,
		"latency_ms", event.LatencyMs,
	)
}

// Verse looks a verse up in the corpus for lang.
func (s *Service) Verse(lang string, sura, aya int) (corpus.Verse, error) {
	eng, err := s.resolve(lang, "")
	if err != nil {
		return corpus.Verse{}, err
	}
	v, ok := eng.Verse(sura, aya)
	if !ok {
		return corpus.Verse{}, apperrors.Newf(apperrors.ErrVerseNotFound, http.StatusNotFound, "%d:%d", sura, aya)
	}
	return v, nil
}

// InvalidateCache drops cached responses. It is a no-op without a cache.
func (s *Service) InvalidateCache(ctx context.Context) error {
	if s.opts.Cache == nil {
		return nil
	}
	return s.opts.Cache.Invalidate(ctx)
}

// CacheStats reports the cache counters; ok is false without a cache.
func (s *Service) CacheStats() (cache.Stats, bool) {
	if s.opts.Cache == nil {
		return cache.Stats{}, false
	}
	return s.opts.Cache.Stats(), true
}
