package merger

import (
	"container/heap"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/ranker"
)

// TopK returns the best limit documents from unordered scored results,
// best first, in the same order ranker.Sort would produce. limit <= 0 keeps
// everything.
func TopK(docs []ranker.ScoredDocument, limit int) []ranker.ScoredDocument {
	if limit <= 0 || limit >= len(docs) {
		out := make([]ranker.ScoredDocument, len(docs))
		copy(out, docs)
		ranker.Sort(out)
		return out
	}
	h := &scoredDocHeap{}
	heap.Init(h)
	for _, doc := range docs {
		heap.Push(h, doc)
		if h.Len() > limit {
			heap.Pop(h)
		}
	}
	result := make([]ranker.ScoredDocument, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(ranker.ScoredDocument)
	}
	return result
}

// Merge combines several result lists and keeps the best limit.
func Merge(lists [][]ranker.ScoredDocument, limit int) []ranker.ScoredDocument {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	all := make([]ranker.ScoredDocument, 0, total)
	for _, l := range lists {
		all = append(all, l...)
	}
	return TopK(all, limit)
}

// scoredDocHeap is a min-heap: the root is the document that ranks last.
type scoredDocHeap []ranker.ScoredDocument

func (h scoredDocHeap) Len() int { return len(h) }

func (h scoredDocHeap) Less(i, j int) bool {
	return ranker.Better(h[j], h[i])
}

func (h scoredDocHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x interface{}) {
	*h = append(*h, x.(ranker.ScoredDocument))
}

func (h *scoredDocHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
