// Package engine ties one language's corpus, inverted index and expansion
// pipeline together behind Search.
package engine

import (
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/morphology"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/ontology"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/expansion"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/ranker"
)

// Options carries the optional resources. Morphology and ontology only
// affect Arabic engines.
type Options struct {
	Morphology *morphology.Table
	Ontology   *ontology.Graph
	Expansion  expansion.Config
}

type Engine struct {
	corpus   *corpus.Corpus
	index    *index.InvertedIndex
	lang     tokenizer.Language
	morph    *morphology.Table
	onto     *ontology.Graph
	pipeline *expansion.Pipeline
	logger   *slog.Logger
}

// Build indexes c for lang and wraps it in an Engine.
func Build(c *corpus.Corpus, stop index.StopWords, lang tokenizer.Language, opts Options) *Engine {
	return New(c, index.Build(c.Verses(), stop, lang), lang, opts)
}

func New(c *corpus.Corpus, idx *index.InvertedIndex, lang tokenizer.Language, opts Options) *Engine {
	e := &Engine{
		corpus: c,
		index:  idx,
		lang:   lang,
		logger: slog.Default().With("component", "search-engine", "language", string(lang)),
	}
	if opts.Expansion.Prefixes == nil && opts.Expansion.ExactWeight == 0 {
		opts.Expansion = expansion.DefaultConfig()
	}

	// Typed nil pointers must not reach the pipeline as non-nil interfaces.
	var morph expansion.Morphology
	var onto expansion.Ontology
	if lang == tokenizer.Arabic {
		if opts.Morphology != nil {
			e.morph = opts.Morphology
			morph = opts.Morphology
		}
		if opts.Ontology != nil {
			e.onto = opts.Ontology
			onto = opts.Ontology
		}
	}
	e.pipeline = expansion.New(idx, morph, onto, opts.Expansion)
	return e
}

// Search parses query, expands it when the engine is Arabic, and returns at
// most limit scored verses, best first. An empty query returns nothing.
func (e *Engine) Search(query string, limit int) []ranker.ScoredDocument {
	return e.SearchWords(parser.Words(query, e.lang), limit)
}

// SearchWords scores already-normalized words.
func (e *Engine) SearchWords(words []string, limit int) []ranker.ScoredDocument {
	if len(words) == 0 {
		return []ranker.ScoredDocument{}
	}
	return e.SearchTerms(e.Expand(words), limit)
}

// SearchTerms scores an explicit weighted term list without expansion.
func (e *Engine) SearchTerms(terms []ranker.WeightedTerm, limit int) []ranker.ScoredDocument {
	if len(terms) == 0 {
		return []ranker.ScoredDocument{}
	}
	docs := ranker.Accumulate(e.index, terms, e.corpus.Len())
	top := merger.TopK(docs, limit)
	e.logger.Debug("search scored",
		"terms", len(terms),
		"candidates", len(docs),
		"returned", len(top),
	)
	return top
}

// Expand returns the weighted terms Search would score for words. Non-Arabic
// engines weight every word 1.0 and add nothing.
func (e *Engine) Expand(words []string) []ranker.WeightedTerm {
	if e.lang == tokenizer.Arabic {
		return e.pipeline.Expand(words)
	}
	terms := make([]ranker.WeightedTerm, 0, len(words))
	for _, w := range words {
		terms = append(terms, ranker.WeightedTerm{Word: w, Weight: 1.0})
	}
	return terms
}

func (e *Engine) Verse(sura, aya int) (corpus.Verse, bool) {
	return e.corpus.Get(sura, aya)
}

func (e *Engine) Corpus() *corpus.Corpus        { return e.corpus }
func (e *Engine) Index() *index.InvertedIndex   { return e.index }
func (e *Engine) Language() tokenizer.Language  { return e.lang }
func (e *Engine) Morphology() *morphology.Table { return e.morph }
func (e *Engine) Ontology() *ontology.Graph     { return e.onto }
func (e *Engine) Pipeline() *expansion.Pipeline { return e.pipeline }
