package engine

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/ontology"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/stopwords"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/testutil"
)

func benchEngine(b *testing.B) *Engine {
	b.Helper()
	graph := ontology.NewGraph([]ontology.Concept{
		{ID: "Mercy", LabelAr: "رحمه", Synonyms: []string{"الرحمن", "الرحيم"}},
	}, nil)
	return Build(testutil.Synthetic(testutil.Fatiha, 6236), stopwords.Default("ar"), tokenizer.Arabic, Options{Ontology: graph})
}

// BenchmarkSearch covers the expansion stages: exact hits, an ontology
// lookup, and a misspelling that falls through to the fuzzy stage.
func BenchmarkSearch(b *testing.B) {
	e := benchEngine(b)
	queries := []struct {
		name  string
		query string
	}{
		{"exact", "الرحمن الرحيم"},
		{"ontology", "رحمة"},
		{"fuzzy", "الصراد"},
		{"long", "الحمد لله رب العالمين الرحمن الرحيم مالك يوم الدين"},
	}
	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = e.Search(q.query, 10)
			}
		})
	}
}

func BenchmarkSearchParallel(b *testing.B) {
	e := benchEngine(b)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = e.Search("الرحمن الرحيم", 10)
		}
	})
}

func BenchmarkExpand(b *testing.B) {
	e := benchEngine(b)
	words := []string{"الصراط", "المستقيم"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Expand(words)
	}
}
