package index

import (
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/stopwords"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/testutil"
)

// BenchmarkBuild measures indexing throughput for corpora up to the size of
// the full text.
func BenchmarkBuild(b *testing.B) {
	stop := stopwords.Default("ar")
	for _, n := range []int{700, 6236} {
		verses := testutil.Synthetic(testutil.Fatiha, n).Verses()
		b.Run(fmt.Sprintf("verses_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = Build(verses, stop, tokenizer.Arabic)
			}
		})
	}
}

func BenchmarkLookup(b *testing.B) {
	idx := Build(testutil.Synthetic(testutil.Fatiha, 6236).Verses(), nil, tokenizer.Arabic)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = idx.Lookup("الرحمن")
	}
}

// BenchmarkLookupParallel measures concurrent read throughput.
func BenchmarkLookupParallel(b *testing.B) {
	idx := Build(testutil.Synthetic(testutil.Fatiha, 6236).Verses(), nil, tokenizer.Arabic)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = idx.Lookup("الصراط")
		}
	})
}
