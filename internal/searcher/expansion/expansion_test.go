package expansion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/ontology"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/testutil"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/config"
)

const sample = `1|1|بربوه ذات قرار
1|2|ربوه خضراء
1|3|الكتاب لا ريب فيه
1|4|كتب عليكم الصيام
1|5|انسان ضعيف
1|6|لعلكم تعقلون
`

type fakeMorphology struct {
	lemmaOf    map[string]string
	lemmaForms map[string][]string
	rootOf     map[string]string
	rootForms  map[string][]string
}

func (f fakeMorphology) FormsForRoot(root string) []string { return f.rootForms[root] }
func (f fakeMorphology) FormsForLemma(l string) []string   { return f.lemmaForms[l] }

func (f fakeMorphology) RootForForm(form string) (string, bool) {
	r, ok := f.rootOf[form]
	return r, ok
}

func (f fakeMorphology) LemmaForForm(form string) (string, bool) {
	l, ok := f.lemmaOf[form]
	return l, ok
}

var morph = fakeMorphology{
	lemmaOf:    map[string]string{"كتب": "kataba", "تعقل": "Eaqala"},
	lemmaForms: map[string][]string{"kataba": {"كتب", "يكتب"}, "Eaqala": {"تعقلون", "يعقلون"}},
	rootOf:     map[string]string{"مكتوب": "كتب"},
	rootForms:  map[string][]string{"كتب": {"كتاب", "كتب", "مكتوب"}},
}

func sampleIndex(t *testing.T) *index.InvertedIndex {
	t.Helper()
	c := testutil.MustCorpus(sample)
	return index.Build(c.Verses(), nil, tokenizer.Arabic)
}

func humanGraph() *ontology.Graph {
	return ontology.NewGraph(
		[]ontology.Concept{
			{ID: "Human", LabelAr: "إنسان", LabelEn: "human", Synonyms: []string{"بشر", "آدمي"}},
			{ID: "Angel", LabelAr: "ملك", LabelEn: "angel"},
		},
		[]ontology.Relation{{Subject: "Human", Verb: "يعبد", Object: "#Angel"}},
	)
}

func terms(pairs ...any) []ranker.WeightedTerm {
	out := make([]ranker.WeightedTerm, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, ranker.WeightedTerm{Word: pairs[i].(string), Weight: pairs[i+1].(float64)})
	}
	return out
}

func TestExpandEmpty(t *testing.T) {
	p := New(sampleIndex(t), morph, humanGraph(), DefaultConfig())
	assert.Empty(t, p.Expand(nil))
}

func TestExactStageRecoversPrefixedForms(t *testing.T) {
	p := New(sampleIndex(t), nil, nil, DefaultConfig())

	acc := p.Run([]string{"ربوه"})
	assert.Equal(t, terms("ربوه", 1.0, "بربوه", 1.0), acc.Terms)
	assert.True(t, acc.AnyHit)
	assert.Equal(t, 2, acc.Count(StageExact))
}

func TestShortStemsAreNotPrefixExpanded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinStemLength = 5
	p := New(sampleIndex(t), nil, nil, cfg)

	assert.Equal(t, terms("ربوه", 1.0), p.Expand([]string{"ربوه"}))
}

func TestRootStageAddsPrefixedVocabulary(t *testing.T) {
	p := New(sampleIndex(t), morph, nil, DefaultConfig())

	acc := p.Run([]string{"كتب"})
	// كتاب and مكتوب are absent from the index, but ال+كتاب is present.
	assert.Equal(t, terms("كتب", 1.0, "الكتاب", 0.7), acc.Terms)
	assert.Equal(t, 0, acc.Count(StageLemma))
	assert.Equal(t, 1, acc.Count(StageRoot))
}

func TestLemmaStageAddsIndexedForms(t *testing.T) {
	p := New(sampleIndex(t), morph, nil, DefaultConfig())

	acc := p.Run([]string{"تعقل"})
	assert.Equal(t, terms("تعقل", 1.0, "تعقلون", 0.8), acc.Terms)
	assert.True(t, acc.AnyHit)
	assert.Zero(t, acc.Count(StageFuzzy))
}

func TestFirstWeightWins(t *testing.T) {
	p := New(sampleIndex(t), morph, nil, DefaultConfig())

	got := p.Expand([]string{"تعقل", "تعقلون"})
	assert.Equal(t, terms("تعقل", 1.0, "تعقلون", 1.0), got)
}

func TestStemSuffixes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StemSuffixes = true
	p := New(sampleIndex(t), nil, nil, cfg)

	assert.Equal(t, terms("تعقل", 1.0, "تعقلون", 1.0), p.Expand([]string{"تعقل"}))
}

func TestOntologyStage(t *testing.T) {
	p := New(sampleIndex(t), nil, humanGraph(), DefaultConfig())

	got := p.Expand([]string{"انسان"})
	assert.Equal(t, terms("انسان", 1.0, "بشر", 0.5, "ادمي", 0.5, "ملك", 0.5), got)
}

func TestOntologyIncomingRelations(t *testing.T) {
	got := ExpandByOntology([]string{"ملك"}, humanGraph(), 0.5)
	assert.Equal(t, terms("ملك", 1.0, "انسان", 0.5), got)
}

func TestExpandByOntologyScenario(t *testing.T) {
	got := ExpandByOntology([]string{"انسان"}, humanGraph(), 0.5)
	require.Len(t, got, 4)
	assert.Equal(t, ranker.WeightedTerm{Word: "انسان", Weight: 1.0}, got[0])
	for _, term := range got[1:] {
		assert.Equal(t, 0.5, term.Weight)
	}
}

func TestFuzzyRunsOnlyWithoutHits(t *testing.T) {
	p := New(sampleIndex(t), nil, nil, DefaultConfig())

	acc := p.Run([]string{"ربوا"})
	assert.Equal(t, terms("ربوا", 1.0, "بربوه", 0.4, "ربوه", 0.4), acc.Terms)
	assert.False(t, acc.AnyHit)

	for _, term := range p.Expand([]string{"ربوه"}) {
		assert.NotEqual(t, 0.4, term.Weight)
	}
}

func TestFuzzyDistanceThresholds(t *testing.T) {
	idx := sampleIndex(t)
	cfg := DefaultConfig()

	// three letters allow one edit, so الكتاب and لا stay out
	assert.Equal(t, terms("كتا", 1.0, "كتب", 0.4), ExpandFuzzy([]string{"كتا"}, idx, cfg))
	// four letters allow two
	assert.Equal(t, terms("تعقل", 1.0, "تعقلون", 0.4), ExpandFuzzy([]string{"تعقل"}, idx, cfg))
}

func TestFuzzyGating(t *testing.T) {
	idx := sampleIndex(t)
	for _, w := range []string{"ربوه", "كتب", "انسان"} {
		assert.Equal(t, terms(w, 1.0), ExpandFuzzy([]string{w}, idx, DefaultConfig()), w)
	}
}

func TestExpandByRootsKeepsInput(t *testing.T) {
	cases := [][]string{
		{"كتب"},
		{"مكتوب"},
		{"زيد", "كتب"},
		{},
	}
	for _, words := range cases {
		got := ExpandByRoots(words, morph)
		assert.Subset(t, got, words)
	}

	assert.Equal(t, []string{"مكتوب", "كتاب", "كتب"}, ExpandByRoots([]string{"مكتوب"}, morph))
	assert.Equal(t, []string{"زيد"}, ExpandByRoots([]string{"زيد"}, nil))
}

func TestExpandByLemma(t *testing.T) {
	got := ExpandByLemma([]string{"كتب"}, morph, 0.8)
	assert.Equal(t, terms("كتب", 1.0, "يكتب", 0.8), got)
}

func TestFromConfigFallsBackToDefaults(t *testing.T) {
	cfg := FromConfig(config.ExpansionConfig{RootWeight: 0.6, StemSuffixes: true})
	assert.Equal(t, 0.6, cfg.RootWeight)
	assert.Equal(t, 1.0, cfg.ExactWeight)
	assert.Equal(t, DefaultPrefixes, cfg.Prefixes)
	assert.True(t, cfg.StemSuffixes)
}
