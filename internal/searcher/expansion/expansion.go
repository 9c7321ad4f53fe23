// Package expansion turns parsed Arabic query words into a weighted term
// list by cascading through exact, lemma, root, ontology and fuzzy stages.
package expansion

import (
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/ontology"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/config"
)

type Index interface {
	Lookup(term string) index.PostingList
	Vocabulary() []string
}

type Morphology interface {
	FormsForRoot(root string) []string
	RootForForm(form string) (string, bool)
	FormsForLemma(lemma string) []string
	LemmaForForm(form string) (string, bool)
}

type Ontology interface {
	FindByLabel(text string) (*ontology.Concept, bool)
	Concept(id string) (*ontology.Concept, bool)
	Synonyms(id string) []string
	Outgoing(id string) []ontology.Relation
	Incoming(id string) []ontology.Relation
}

type Stage string

const (
	StageExact    Stage = "exact"
	StageLemma    Stage = "lemma"
	StageRoot     Stage = "root"
	StageOntology Stage = "ontology"
	StageFuzzy    Stage = "fuzzy"
)

// Config carries stage weights, the clitic prefix list used by stem
// matching, and the fuzzy distance thresholds.
type Config struct {
	ExactWeight    float64
	LemmaWeight    float64
	RootWeight     float64
	OntologyWeight float64
	FuzzyWeight    float64

	Prefixes      []string
	MinStemLength int
	// StemSuffixes lets a stem match vocabulary terms that merely start
	// with prefix+stem, so suffixed inflections are recovered as well.
	StemSuffixes bool

	FuzzyLongWordLength int
	FuzzyLongDistance   int
	FuzzyShortDistance  int
}

var DefaultPrefixes = []string{
	"", "و", "ف", "ب", "ل", "ك", "ال", "لل",
	"وال", "فال", "بال", "كال", "ولل", "فلل", "وبال", "فبال",
}

func DefaultConfig() Config {
	return Config{
		ExactWeight:         1.0,
		LemmaWeight:         0.8,
		RootWeight:          0.7,
		OntologyWeight:      0.5,
		FuzzyWeight:         0.4,
		Prefixes:            DefaultPrefixes,
		MinStemLength:       3,
		FuzzyLongWordLength: 4,
		FuzzyLongDistance:   2,
		FuzzyShortDistance:  1,
	}
}

// FromConfig maps the YAML expansion section onto a Config. Zero values fall
// back to the defaults.
func FromConfig(c config.ExpansionConfig) Config {
	out := DefaultConfig()
	setFloat(&out.ExactWeight, c.ExactWeight)
	setFloat(&out.LemmaWeight, c.LemmaWeight)
	setFloat(&out.RootWeight, c.RootWeight)
	setFloat(&out.OntologyWeight, c.OntologyWeight)
	setFloat(&out.FuzzyWeight, c.FuzzyWeight)
	if c.Prefixes != nil {
		out.Prefixes = c.Prefixes
	}
	setInt(&out.MinStemLength, c.MinStemLength)
	setInt(&out.FuzzyLongWordLength, c.FuzzyLongWordLength)
	setInt(&out.FuzzyLongDistance, c.FuzzyLongDistance)
	setInt(&out.FuzzyShortDistance, c.FuzzyShortDistance)
	out.StemSuffixes = c.StemSuffixes
	return out
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// Pipeline runs the stages against one index. Morphology and ontology are
// optional; a nil dependency skips its stage.
type Pipeline struct {
	idx    Index
	morph  Morphology
	onto   Ontology
	cfg    Config
	logger *slog.Logger
}

func New(idx Index, morph Morphology, onto Ontology, cfg Config) *Pipeline {
	return &Pipeline{
		idx:    idx,
		morph:  morph,
		onto:   onto,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-expansion"),
	}
}

func (p *Pipeline) HasMorphology() bool { return p.morph != nil }
func (p *Pipeline) HasOntology() bool   { return p.onto != nil }
func (p *Pipeline) Config() Config      { return p.cfg }

type stageFunc func(acc *Accumulator, words []string) *Accumulator

func (p *Pipeline) stages() []stageFunc {
	stages := []stageFunc{p.exact}
	if p.morph != nil {
		stages = append(stages, p.lemma, p.root)
	}
	if p.onto != nil {
		stages = append(stages, p.ontology)
	}
	return append(stages, p.fuzzy)
}

// Run folds the words through every stage and returns the final accumulator.
func (p *Pipeline) Run(words []string) *Accumulator {
	acc := NewAccumulator()
	if len(words) == 0 {
		return acc
	}
	for _, stage := range p.stages() {
		acc = stage(acc, words)
	}
	p.logger.Debug("query expanded",
		"words", len(words),
		"terms", len(acc.Terms),
		"any_hit", acc.AnyHit,
	)
	return acc
}

// Expand returns the weighted terms for words. The original words always
// come first at the exact weight.
func (p *Pipeline) Expand(words []string) []ranker.WeightedTerm {
	return p.Run(words).Terms
}
