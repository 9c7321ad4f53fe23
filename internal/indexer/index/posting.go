package index

import "github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/corpus"

// Posting is one occurrence of a term. WordIndex is the 1-based position of
// the word within its verse.
type Posting struct {
	Sura       int
	Aya        int
	WordIndex  int
	IsStopWord bool
}

func (p Posting) Doc() corpus.Key {
	return corpus.Key{Sura: p.Sura, Aya: p.Aya}
}

// PostingList is ordered by corpus scan order: sura, aya, then position.
type PostingList []Posting

type TermEntry struct {
	Term              string
	Postings          PostingList
	DocumentFrequency int
}
