package expansion

import "github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/ranker"

// Accumulator is the state threaded through the expansion stages. The seen
// set is keyed by literal term, so the first stage to emit a term fixes its
// weight.
type Accumulator struct {
	Terms  []ranker.WeightedTerm
	AnyHit bool

	seen   map[string]struct{}
	counts map[Stage]int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		seen:   make(map[string]struct{}),
		counts: make(map[Stage]int),
	}
}

func (a *Accumulator) Seen(term string) bool {
	_, ok := a.seen[term]
	return ok
}

// markSeen reports whether term was new.
func (a *Accumulator) markSeen(term string) bool {
	if _, ok := a.seen[term]; ok {
		return false
	}
	a.seen[term] = struct{}{}
	return true
}

func (a *Accumulator) push(term string, weight float64, stage Stage) {
	a.Terms = append(a.Terms, ranker.WeightedTerm{Word: term, Weight: weight})
	a.counts[stage]++
}

// add appends term unless it was already seen.
func (a *Accumulator) add(term string, weight float64, stage Stage) bool {
	if !a.markSeen(term) {
		return false
	}
	a.push(term, weight, stage)
	return true
}

// Count returns how many terms stage contributed.
func (a *Accumulator) Count(stage Stage) int {
	return a.counts[stage]
}
