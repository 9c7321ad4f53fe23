// Package dataset loads the resources named by configuration and builds
// the per-language search engines from them.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/arabic"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/morphology"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/ontology"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/expansion"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/stopwords"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/resilience"
)

// Dataset holds everything the engines are built from. Optional resources
// that are not configured or not present on disk are nil.
type Dataset struct {
	Arabic           *corpus.Corpus
	English          *corpus.Corpus
	ArabicStopwords  *stopwords.Set
	EnglishStopwords *stopwords.Set
	Morphology       *morphology.Table
	Ontology         *ontology.Graph
}

// Load reads every configured resource concurrently. The Arabic corpus is
// required and comes from the file or, with corpusSource "postgres", from
// db. Missing optional files are logged and skipped; malformed files fail
// the load.
func Load(ctx context.Context, cfg config.DataConfig, db corpus.Querier) (*Dataset, error) {
	log := slog.Default().With("component", "dataset")
	start := time.Now()
	ds := &Dataset{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := loadArabic(ctx, cfg, db)
		if err != nil {
			return err
		}
		ds.Arabic = c
		log.Info("corpus loaded", "language", "ar", "source", cfg.CorpusSource, "verses", c.Len())
		return nil
	})
	g.Go(func() error {
		c, err := optional(cfg.Path(cfg.EnglishFile), corpus.LoadFile)
		if c != nil {
			ds.English = c
			log.Info("corpus loaded", "language", "en", "verses", c.Len())
		}
		return err
	})
	g.Go(func() error {
		ds.ArabicStopwords = loadStopwords(cfg.Path(cfg.ArabicStopwords), "ar", log)
		ds.EnglishStopwords = loadStopwords(cfg.Path(cfg.EnglishStopwords), "en", log)
		return nil
	})
	g.Go(func() error {
		tr := arabic.NewBuckwalter()
		t, err := optional(cfg.Path(cfg.MorphologyFile), func(path string) (*morphology.Table, error) {
			return morphology.LoadFile(path, tr)
		})
		if t != nil {
			ds.Morphology = t
			log.Info("morphology loaded", "rows", t.Len(), "roots", t.RootCount(), "lemmas", t.LemmaCount())
		}
		return err
	})
	g.Go(func() error {
		o, err := optional(cfg.Path(cfg.OntologyFile), ontology.LoadOWL)
		if o != nil {
			ds.Ontology = o
			log.Info("ontology loaded", "concepts", o.ConceptCount(), "relations", o.RelationCount())
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info("dataset ready", "elapsed", time.Since(start).Round(time.Millisecond))
	return ds, nil
}

func loadArabic(ctx context.Context, cfg config.DataConfig, db corpus.Querier) (*corpus.Corpus, error) {
	if cfg.CorpusSource == "postgres" {
		if db == nil {
			return nil, fmt.Errorf("corpus source postgres without a database: %w", apperrors.ErrResourceMissing)
		}
		var c *corpus.Corpus
		err := resilience.Retry(ctx, "load-corpus", resilience.RetryConfig{MaxAttempts: 3, InitialDelay: 500 * time.Millisecond}, func(ctx context.Context) error {
			var err error
			c, err = corpus.LoadPostgres(ctx, db, cfg.PostgresTable)
			return err
		})
		return c, err
	}
	path := cfg.Path(cfg.QuranFile)
	if path == "" {
		return nil, fmt.Errorf("no quran file configured: %w", apperrors.ErrResourceMissing)
	}
	c, err := corpus.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrResourceMissing, err)
	}
	return c, err
}

// optional loads path with load unless path is empty or absent.
func optional[T any](path string, load func(string) (*T, error)) (*T, error) {
	if path == "" {
		return nil, nil
	}
	v, err := load(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Default().With("component", "dataset").Warn("optional resource not found", "path", path)
		return nil, nil
	}
	return v, err
}

// loadStopwords falls back to the built-in list when no usable file is
// configured.
func loadStopwords(path, lang string, log *slog.Logger) *stopwords.Set {
	if path != "" {
		s, err := stopwords.Load(path)
		if err == nil {
			log.Info("stopwords loaded", "language", lang, "words", s.Len())
			return s
		}
		log.Warn("stopwords unavailable, using built-in list", "language", lang, "error", err)
	}
	return stopwords.Default(lang)
}

// Engines builds an engine per requested language, indexing concurrently.
// A language whose corpus is absent is skipped with a warning; an unknown
// language code is an error.
func (d *Dataset) Engines(languages []string, exp expansion.Config) ([]*engine.Engine, error) {
	log := slog.Default().With("component", "dataset")
	type job struct {
		lang tokenizer.Language
		c    *corpus.Corpus
		stop *stopwords.Set
	}
	var jobs []job
	for _, code := range languages {
		lang, err := tokenizer.ParseLanguage(code)
		if err != nil || lang == tokenizer.Auto {
			return nil, fmt.Errorf("search.languages: %q: %w", code, apperrors.ErrUnsupportedLanguage)
		}
		switch lang {
		case tokenizer.Arabic:
			jobs = append(jobs, job{lang, d.Arabic, d.ArabicStopwords})
		case tokenizer.English:
			if d.English == nil {
				log.Warn("english requested but no english corpus loaded")
				continue
			}
			jobs = append(jobs, job{lang, d.English, d.EnglishStopwords})
		}
	}

	// Index builds cannot fail, so a WaitGroup is enough here.
	engines := make([]*engine.Engine, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Go(func() {
			start := time.Now()
			engines[i] = engine.Build(j.c, j.stop, j.lang, engine.Options{
				Morphology: d.Morphology,
				Ontology:   d.Ontology,
				Expansion:  exp,
			})
			log.Info("index built",
				"language", string(j.lang),
				"terms", engines[i].Index().VocabularySize(),
				"postings", engines[i].Index().Size(),
				"elapsed", time.Since(start).Round(time.Millisecond),
			)
		})
	}
	wg.Wait()
	if len(engines) == 0 {
		return nil, fmt.Errorf("no search languages enabled: %w", apperrors.ErrResourceMissing)
	}
	return engines, nil
}
