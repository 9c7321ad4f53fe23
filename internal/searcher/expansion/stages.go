package expansion

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/arabic"
)

func (p *Pipeline) hits(term string) bool {
	return len(p.idx.Lookup(term)) > 0
}

func (p *Pipeline) exact(acc *Accumulator, words []string) *Accumulator {
	for _, w := range words {
		acc.add(w, p.cfg.ExactWeight, StageExact)
	}
	for _, w := range words {
		if p.hits(w) {
			acc.AnyHit = true
		}
		p.stemInVocab(acc, w, p.cfg.ExactWeight, StageExact)
	}
	return acc
}

func (p *Pipeline) lemma(acc *Accumulator, words []string) *Accumulator {
	scanned := make(map[string]struct{})
	for _, w := range words {
		for _, form := range lemmaForms(p.morph, w) {
			p.visitForm(acc, form, p.cfg.LemmaWeight, StageLemma, scanned)
		}
	}
	return acc
}

func (p *Pipeline) root(acc *Accumulator, words []string) *Accumulator {
	scanned := make(map[string]struct{})
	for _, w := range words {
		for _, form := range rootForms(p.morph, w) {
			p.visitForm(acc, form, p.cfg.RootWeight, StageRoot, scanned)
		}
	}
	return acc
}

// visitForm adds a morphological form only when the index knows it, then
// looks for clitic-prefixed spellings of it. The prefix scan runs even for
// forms already seen in an earlier stage.
func (p *Pipeline) visitForm(acc *Accumulator, form string, weight float64, stage Stage, scanned map[string]struct{}) {
	if _, ok := scanned[form]; ok {
		return
	}
	scanned[form] = struct{}{}
	if acc.markSeen(form) && p.hits(form) {
		acc.AnyHit = true
		acc.push(form, weight, stage)
	}
	p.stemInVocab(acc, form, weight, stage)
}

// stemInVocab adds vocabulary terms spelled prefix+stem for each configured
// clitic prefix.
func (p *Pipeline) stemInVocab(acc *Accumulator, stem string, weight float64, stage Stage) {
	if utf8.RuneCountInString(stem) < p.cfg.MinStemLength {
		return
	}
	if p.cfg.StemSuffixes {
		for _, term := range p.idx.Vocabulary() {
			if acc.Seen(term) || !p.prefixedForm(term, stem) {
				continue
			}
			acc.add(term, weight, stage)
			acc.AnyHit = true
		}
		return
	}
	for _, prefix := range p.cfg.Prefixes {
		candidate := prefix + stem
		if acc.Seen(candidate) || !p.hits(candidate) {
			continue
		}
		acc.add(candidate, weight, stage)
		acc.AnyHit = true
	}
}

func (p *Pipeline) prefixedForm(term, stem string) bool {
	for _, prefix := range p.cfg.Prefixes {
		if strings.HasPrefix(term, prefix+stem) {
			return true
		}
	}
	return false
}

func (p *Pipeline) ontology(acc *Accumulator, words []string) *Accumulator {
	for _, w := range words {
		for _, term := range relatedTerms(p.onto, w) {
			if acc.add(term, p.cfg.OntologyWeight, StageOntology) && p.hits(term) {
				acc.AnyHit = true
			}
		}
	}
	return acc
}

// fuzzy only runs when nothing so far has reached the index; short stems
// otherwise fuzzy-match frequent unrelated words and swamp the ranking.
func (p *Pipeline) fuzzy(acc *Accumulator, words []string) *Accumulator {
	if acc.AnyHit {
		return acc
	}
	for _, w := range words {
		if p.hits(w) {
			continue
		}
		for _, term := range fuzzyNeighbours(p.idx, w, p.cfg) {
			acc.add(term, p.cfg.FuzzyWeight, StageFuzzy)
		}
	}
	return acc
}

func lemmaForms(m Morphology, word string) []string {
	lemma, ok := m.LemmaForForm(word)
	if !ok {
		return nil
	}
	return m.FormsForLemma(lemma)
}

// rootForms treats word as a root first, then falls back to the root of word
// as a surface form.
func rootForms(m Morphology, word string) []string {
	if forms := m.FormsForRoot(word); len(forms) > 0 {
		return forms
	}
	root, ok := m.RootForForm(word)
	if !ok {
		return nil
	}
	return m.FormsForRoot(root)
}

// relatedTerms returns the normalized synonyms and Arabic label of the
// concept word names, followed by the labels of its one-hop neighbours.
func relatedTerms(o Ontology, word string) []string {
	c, ok := o.FindByLabel(word)
	if !ok {
		return nil
	}
	var out []string
	emit := func(s string) {
		n := arabic.Normalize(s)
		if n == "" || n == word {
			return
		}
		out = append(out, n)
	}
	for _, s := range o.Synonyms(c.ID) {
		emit(s)
	}
	for _, rel := range o.Outgoing(c.ID) {
		if other, ok := o.Concept(rel.Object); ok {
			emit(other.LabelAr)
		}
	}
	for _, rel := range o.Incoming(c.ID) {
		if other, ok := o.Concept(rel.Subject); ok {
			emit(other.LabelAr)
		}
	}
	return out
}

func fuzzyNeighbours(idx Index, word string, cfg Config) []string {
	limit := cfg.FuzzyShortDistance
	if utf8.RuneCountInString(word) >= cfg.FuzzyLongWordLength {
		limit = cfg.FuzzyLongDistance
	}
	var out []string
	for _, term := range idx.Vocabulary() {
		d := levenshtein.ComputeDistance(word, term)
		if d > 0 && d <= limit {
			out = append(out, term)
		}
	}
	return out
}
