package ranker

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/index"
)

const (
	positionFactor  = 0.5
	stopWordPenalty = 0.3
	proximityFactor = 0.3
	originalWeight  = 1.0
)

type WeightedTerm struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

type ScoredDocument struct {
	Sura         int      `json:"sura"`
	Aya          int      `json:"aya"`
	Score        float64  `json:"score"`
	Frequency    int      `json:"frequency"`
	MatchedWords []string `json:"matched_words"`
}

func (d ScoredDocument) Key() corpus.Key {
	return corpus.Key{Sura: d.Sura, Aya: d.Aya}
}

type Index interface {
	Lookup(term string) index.PostingList
	DocumentFrequency(term string) int
}

// Score ranks every verse touched by terms, best first.
func Score(idx Index, terms []WeightedTerm, totalDocs int) []ScoredDocument {
	docs := Accumulate(idx, terms, totalDocs)
	Sort(docs)
	return docs
}

// ScoreUnweighted scores words as if each carried weight 1.0.
func ScoreUnweighted(idx Index, words []string, totalDocs int) []ScoredDocument {
	terms := make([]WeightedTerm, len(words))
	for i, w := range words {
		terms[i] = WeightedTerm{Word: w, Weight: originalWeight}
	}
	return Score(idx, terms, totalDocs)
}

type docState struct {
	doc       ScoredDocument
	positions map[int]struct{}
	matched   map[string]struct{}
}

// Accumulate computes final per-verse scores without ordering them; the
// result lists verses in the order they were first touched. Each posting
// contributes tf * idf * positionBonus * stopPenalty * weight, and the sum
// is then scaled by the coverage and proximity boosts.
func Accumulate(idx Index, terms []WeightedTerm, totalDocs int) []ScoredDocument {
	states := make(map[corpus.Key]*docState)
	order := make([]corpus.Key, 0)

	for _, term := range terms {
		postings := idx.Lookup(term.Word)
		if len(postings) == 0 {
			continue
		}
		idf := IDF(totalDocs, idx.DocumentFrequency(term.Word))

		occurrences := make(map[corpus.Key]int)
		for _, p := range postings {
			occurrences[p.Doc()]++
		}

		for _, p := range postings {
			key := p.Doc()
			st, ok := states[key]
			if !ok {
				st = &docState{
					doc:       ScoredDocument{Sura: p.Sura, Aya: p.Aya, MatchedWords: make([]string, 0, 2)},
					positions: make(map[int]struct{}),
					matched:   make(map[string]struct{}),
				}
				states[key] = st
				order = append(order, key)
			}
			tf := 1 + math.Log(float64(occurrences[key]))
			penalty := 1.0
			if p.IsStopWord {
				penalty = stopWordPenalty
			}
			st.doc.Score += tf * idf * PositionBonus(p.WordIndex) * penalty * term.Weight
			st.doc.Frequency++
			st.positions[p.WordIndex] = struct{}{}
			if _, seen := st.matched[term.Word]; !seen {
				st.matched[term.Word] = struct{}{}
				st.doc.MatchedWords = append(st.doc.MatchedWords, term.Word)
			}
		}
	}

	numOriginal := 0
	for _, t := range terms {
		if t.Weight == originalWeight {
			numOriginal++
		}
	}
	if numOriginal == 0 {
		numOriginal = len(terms)
	}

	result := make([]ScoredDocument, 0, len(order))
	for _, key := range order {
		st := states[key]
		coverage := float64(len(st.matched)) / float64(numOriginal)
		st.doc.Score *= 1 + coverage

		positions := make([]int, 0, len(st.positions))
		for pos := range st.positions {
			positions = append(positions, pos)
		}
		sort.Ints(positions)
		st.doc.Score *= 1 + ProximityBonus(positions)*proximityFactor

		result = append(result, st.doc)
	}
	return result
}

// Sort orders by score descending, then by sura and aya.
func Sort(docs []ScoredDocument) {
	sort.SliceStable(docs, func(i, j int) bool {
		return Better(docs[i], docs[j])
	})
}

// Better reports whether a ranks ahead of b.
func Better(a, b ScoredDocument) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Sura != b.Sura {
		return a.Sura < b.Sura
	}
	return a.Aya < b.Aya
}

// IDF is ln(totalDocs/docFreq), or 0 when either count is not positive.
func IDF(totalDocs, docFreq int) float64 {
	if docFreq <= 0 || totalDocs <= 0 {
		return 0
	}
	return math.Log(float64(totalDocs) / float64(docFreq))
}

// PositionBonus favours matches early in a verse: 1.5 for the first word,
// approaching 1 further in.
func PositionBonus(wordIndex int) float64 {
	if wordIndex <= 0 {
		return 1
	}
	return 1 + (1/float64(wordIndex))*positionFactor
}

// ProximityBonus sums 1/gap over adjacent sorted positions. Zero gaps add
// nothing, and fewer than two positions score zero.
func ProximityBonus(sortedPositions []int) float64 {
	bonus := 0.0
	for i := 1; i < len(sortedPositions); i++ {
		if gap := sortedPositions[i] - sortedPositions[i-1]; gap > 0 {
			bonus += 1 / float64(gap)
		}
	}
	return bonus
}
