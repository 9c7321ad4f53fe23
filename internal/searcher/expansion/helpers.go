package expansion

import "github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/ranker"

// ExpandByRoots returns words followed by every surface form sharing a root
// with one of them. The input words are always kept.
func ExpandByRoots(words []string, m Morphology) []string {
	acc := NewAccumulator()
	out := make([]string, 0, len(words))
	for _, w := range words {
		if acc.markSeen(w) {
			out = append(out, w)
		}
	}
	if m == nil {
		return out
	}
	for _, w := range words {
		for _, form := range rootForms(m, w) {
			if acc.markSeen(form) {
				out = append(out, form)
			}
		}
	}
	return out
}

// ExpandByLemma returns words at weight 1.0 followed by their lemma-family
// forms at weight.
func ExpandByLemma(words []string, m Morphology, weight float64) []ranker.WeightedTerm {
	acc := seed(words)
	if m == nil {
		return acc.Terms
	}
	for _, w := range words {
		for _, form := range lemmaForms(m, w) {
			acc.add(form, weight, StageLemma)
		}
	}
	return acc.Terms
}

// ExpandByOntology returns words at weight 1.0 followed by concept synonyms
// and one-hop related labels at weight.
func ExpandByOntology(words []string, o Ontology, weight float64) []ranker.WeightedTerm {
	acc := seed(words)
	if o == nil {
		return acc.Terms
	}
	for _, w := range words {
		for _, term := range relatedTerms(o, w) {
			acc.add(term, weight, StageOntology)
		}
	}
	return acc.Terms
}

// ExpandFuzzy returns words at weight 1.0 plus near-miss vocabulary terms
// for the words that have no postings of their own.
func ExpandFuzzy(words []string, idx Index, cfg Config) []ranker.WeightedTerm {
	acc := seed(words)
	for _, w := range words {
		if len(idx.Lookup(w)) > 0 {
			continue
		}
		for _, term := range fuzzyNeighbours(idx, w, cfg) {
			acc.add(term, cfg.FuzzyWeight, StageFuzzy)
		}
	}
	return acc.Terms
}

func seed(words []string) *Accumulator {
	acc := NewAccumulator()
	for _, w := range words {
		acc.add(w, 1.0, StageExact)
	}
	return acc
}
