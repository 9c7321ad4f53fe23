package service

import (
	"net/http"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/ontology"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/errors"
)

// Analysis describes one word against the loaded resources.
type Analysis struct {
	Word       string                `json:"word"`
	Normalized string                `json:"normalized"`
	Language   string                `json:"language"`
	Count      int                   `json:"count"`
	VerseCount int                   `json:"verse_count"`
	IndexDocs  int                   `json:"index_docs"`
	Roots      []string              `json:"roots,omitempty"`
	Lemma      string                `json:"lemma,omitempty"`
	Concept    *ontology.Concept     `json:"concept,omitempty"`
	Expansion  []ranker.WeightedTerm `json:"expansion"`
}

// Analyze reports frequency, morphology, ontology and expansion for word.
func (s *Service) Analyze(word, lang string) (*Analysis, error) {
	word = strings.TrimSpace(word)
	if word == "" || len(strings.Fields(word)) != 1 {
		return nil, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "expected a single word")
	}
	eng, err := s.resolve(lang, word)
	if err != nil {
		return nil, err
	}
	l := eng.Language()
	a := &Analysis{
		Word:       word,
		Normalized: tokenizer.Term(word, l),
		Language:   string(l),
		Expansion:  []ranker.WeightedTerm{},
	}
	if a.Normalized == "" {
		return a, nil
	}
	if wf, ok := corpus.Frequency(eng.Corpus(), normalizer(l), word); ok {
		a.Count, a.VerseCount = wf.Count, wf.VerseCount
	}
	a.IndexDocs = eng.Index().DocumentFrequency(a.Normalized)
	if m := eng.Morphology(); m != nil {
		a.Roots = m.RootsForForm(a.Normalized)
		a.Lemma, _ = m.LemmaForForm(a.Normalized)
	}
	if g := eng.Ontology(); g != nil {
		if c, ok := g.Lookup(a.Normalized); ok {
			a.Concept = c
		}
	}
	a.Expansion = eng.Expand([]string{a.Normalized})
	return a, nil
}

// ConceptView is a concept with its relations.
type ConceptView struct {
	Concept  *ontology.Concept   `json:"concept"`
	Outgoing []ontology.Relation `json:"outgoing"`
	Incoming []ontology.Relation `json:"incoming"`
}

// Concept finds an ontology concept by Arabic label, English label or id.
func (s *Service) Concept(query string) (*ConceptView, error) {
	g := s.Ontology()
	if g == nil {
		return nil, apperrors.New(apperrors.ErrResourceMissing, http.StatusNotFound, "no ontology loaded")
	}
	c, ok := g.Lookup(strings.TrimSpace(query))
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrNotFound, http.StatusNotFound, "concept %q", query)
	}
	return &ConceptView{
		Concept:  c,
		Outgoing: nonNil(g.Outgoing(c.ID)),
		Incoming: nonNil(g.Incoming(c.ID)),
	}, nil
}

// Ontology is the graph attached to the Arabic engine, or nil.
func (s *Service) Ontology() *ontology.Graph {
	if e, ok := s.engines[tokenizer.Arabic]; ok {
		return e.Ontology()
	}
	return nil
}

func nonNil(rels []ontology.Relation) []ontology.Relation {
	if rels == nil {
		return []ontology.Relation{}
	}
	return rels
}

// LanguageStats summarizes one engine's resources.
type LanguageStats struct {
	Corpus         corpus.Stats `json:"corpus"`
	IndexTerms     int          `json:"index_terms"`
	IndexPostings  int          `json:"index_postings"`
	MorphologyRows int          `json:"morphology_rows,omitempty"`
	Roots          int          `json:"roots,omitempty"`
	Lemmas         int          `json:"lemmas,omitempty"`
	Concepts       int          `json:"concepts,omitempty"`
	Relations      int          `json:"relations,omitempty"`
}

// Stats reports per-language resource sizes keyed by language code.
func (s *Service) Stats() map[string]LanguageStats {
	out := make(map[string]LanguageStats, len(s.engines))
	for lang, e := range s.engines {
		ls := LanguageStats{
			Corpus:        s.stats[lang],
			IndexTerms:    e.Index().VocabularySize(),
			IndexPostings: e.Index().Size(),
		}
		if m := e.Morphology(); m != nil {
			ls.MorphologyRows, ls.Roots, ls.Lemmas = m.Len(), m.RootCount(), m.LemmaCount()
		}
		if g := e.Ontology(); g != nil {
			ls.Concepts, ls.Relations = g.ConceptCount(), g.RelationCount()
		}
		out[string(lang)] = ls
	}
	return out
}
