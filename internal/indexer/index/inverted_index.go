package index

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
)

// StopWords reports whether a word should be flagged as a stop word.
type StopWords interface {
	Contains(word string) bool
}

// InvertedIndex maps normalized terms to their postings. It is built once
// and never modified, so concurrent readers need no locking.
type InvertedIndex struct {
	language   tokenizer.Language
	postings   map[string]PostingList
	docFreq    map[string]int
	vocabulary []string
	totalDocs  int
	size       int
}

// Build indexes every verse. Each whitespace word is normalized for lang
// and recorded with its position; the posting is flagged as a stop word when
// either the normalized term or the raw word is in stop. stop may be nil.
func Build(verses []corpus.Verse, stop StopWords, lang tokenizer.Language) *InvertedIndex {
	idx := &InvertedIndex{
		language: lang,
		postings: make(map[string]PostingList),
		docFreq:  make(map[string]int),
	}
	docs := make(map[corpus.Key]struct{}, len(verses))

	for _, v := range verses {
		key := v.Key()
		for _, tok := range tokenizer.Tokenize(v.Text, lang) {
			isStop := stop != nil && (stop.Contains(tok.Term) || stop.Contains(tok.Raw))
			idx.postings[tok.Term] = append(idx.postings[tok.Term], Posting{
				Sura:       v.Sura,
				Aya:        v.Aya,
				WordIndex:  tok.Position,
				IsStopWord: isStop,
			})
			docs[key] = struct{}{}
			idx.size++
		}
	}

	idx.totalDocs = len(docs)
	idx.vocabulary = make([]string, 0, len(idx.postings))
	for term, postings := range idx.postings {
		idx.vocabulary = append(idx.vocabulary, term)
		idx.docFreq[term] = countDocs(postings)
	}
	sort.Strings(idx.vocabulary)
	return idx
}

func countDocs(postings PostingList) int {
	seen := make(map[corpus.Key]struct{}, len(postings))
	for _, p := range postings {
		seen[p.Doc()] = struct{}{}
	}
	return len(seen)
}

// Lookup returns the postings of term, or nil for an unknown term.
func (idx *InvertedIndex) Lookup(term string) PostingList {
	return idx.postings[term]
}

// DocumentFrequency is the number of distinct verses containing term.
func (idx *InvertedIndex) DocumentFrequency(term string) int {
	return idx.docFreq[term]
}

// Vocabulary returns every indexed term in sorted order. Callers must not
// modify the returned slice.
func (idx *InvertedIndex) Vocabulary() []string {
	return idx.vocabulary
}

func (idx *InvertedIndex) VocabularySize() int {
	return len(idx.vocabulary)
}

// TotalDocuments is the number of distinct verses with at least one
// indexed word.
func (idx *InvertedIndex) TotalDocuments() int {
	return idx.totalDocs
}

// Size is the total number of postings.
func (idx *InvertedIndex) Size() int {
	return idx.size
}

func (idx *InvertedIndex) Language() tokenizer.Language {
	return idx.language
}

func (idx *InvertedIndex) Empty() bool {
	return len(idx.postings) == 0
}

// TopTerms returns the n terms with the highest document frequency, ties
// broken alphabetically. Stop-word-flagged terms are skipped when
// skipStop is set.
func (idx *InvertedIndex) TopTerms(n int, skipStop bool) []TermEntry {
	entries := make([]TermEntry, 0, len(idx.vocabulary))
	for _, term := range idx.vocabulary {
		postings := idx.postings[term]
		if skipStop && len(postings) > 0 && postings[0].IsStopWord {
			continue
		}
		entries = append(entries, TermEntry{
			Term:              term,
			Postings:          postings,
			DocumentFrequency: idx.docFreq[term],
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DocumentFrequency > entries[j].DocumentFrequency
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
