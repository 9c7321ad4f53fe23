package ranker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/stopwords"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/testutil"
)

func fatihaIndex(t *testing.T) (*index.InvertedIndex, int) {
	t.Helper()
	c := testutil.MustCorpus(testutil.Fatiha)
	return index.Build(c.Verses(), stopwords.New("عليهم"), tokenizer.Arabic), c.Len()
}

func TestFatihaRanksBothVersesFirst(t *testing.T) {
	idx, total := fatihaIndex(t)

	docs := ScoreUnweighted(idx, []string{"الرحمن", "الرحيم"}, total)
	require.Len(t, docs, 2)
	assert.Equal(t, 1, docs[0].Sura)
	assert.Equal(t, 3, docs[0].Aya, "earlier positions win")
	assert.Equal(t, 1, docs[1].Aya)
	assert.Equal(t, []string{"الرحمن", "الرحيم"}, docs[0].MatchedWords)
	assert.Equal(t, 2, docs[0].Frequency)

	// 1:3: idf*(1.5+1.25) * coverage 2 * proximity (1+0.3)
	idf := math.Log(7.0 / 2.0)
	assert.InDelta(t, idf*2.75*2*1.3, docs[0].Score, 1e-9)
}

func TestWeightedMatchesUnweighted(t *testing.T) {
	idx, total := fatihaIndex(t)
	words := []string{"الله", "الرحمن", "الصراط", "غير", "مفقود"}

	terms := make([]WeightedTerm, len(words))
	for i, w := range words {
		terms[i] = WeightedTerm{Word: w, Weight: 1.0}
	}
	assert.Equal(t, ScoreUnweighted(idx, words, total), Score(idx, terms, total))
}

func TestHigherWeightScoresHigher(t *testing.T) {
	idx, total := fatihaIndex(t)

	full := Score(idx, []WeightedTerm{{Word: "الحمد", Weight: 1.0}}, total)
	half := Score(idx, []WeightedTerm{{Word: "الحمد", Weight: 0.5}}, total)
	require.NotEmpty(t, full)
	require.NotEmpty(t, half)
	assert.Greater(t, full[0].Score, half[0].Score)
}

func TestStopWordPenalty(t *testing.T) {
	c := testutil.MustCorpus(testutil.Fatiha)
	flagged := index.Build(c.Verses(), stopwords.New("عليهم"), tokenizer.Arabic)
	plain := index.Build(c.Verses(), nil, tokenizer.Arabic)
	terms := []WeightedTerm{{Word: "عليهم", Weight: 1.0}}

	stop := Score(flagged, terms, c.Len())
	normal := Score(plain, terms, c.Len())
	require.Len(t, stop, 1)
	require.Len(t, normal, 1)
	assert.InDelta(t, normal[0].Score*0.3, stop[0].Score, 1e-9)
	assert.Equal(t, 2, stop[0].Frequency)
}

func TestUnknownTermsSkipped(t *testing.T) {
	idx, total := fatihaIndex(t)
	assert.Empty(t, ScoreUnweighted(idx, []string{"كتاب"}, total))
	assert.Empty(t, Score(idx, nil, total))
}

func TestCoverageFallsBackToTermCount(t *testing.T) {
	idx, total := fatihaIndex(t)

	docs := Score(idx, []WeightedTerm{{Word: "الحمد", Weight: 0.5}, {Word: "رب", Weight: 0.5}}, total)
	require.Len(t, docs, 1)
	idf := math.Log(7.0)
	base := idf * (PositionBonus(1) + PositionBonus(3)) * 0.5
	proximity := 1 + (1.0/2.0)*0.3
	assert.InDelta(t, base*(1+2.0/2.0)*proximity, docs[0].Score, 1e-9)
}

func TestProximityBonus(t *testing.T) {
	assert.Greater(t, ProximityBonus([]int{1, 2}), ProximityBonus([]int{1, 8}))
	assert.Equal(t, 0.0, ProximityBonus([]int{5}))
	assert.Equal(t, 0.0, ProximityBonus(nil))
	assert.Equal(t, 0.0, ProximityBonus([]int{3, 3}))
	assert.InDelta(t, 1.5, ProximityBonus([]int{1, 2, 4}), 1e-12)
}

func TestIDFAndPositionBonus(t *testing.T) {
	assert.Equal(t, 0.0, IDF(10, 0))
	assert.Equal(t, 0.0, IDF(0, 3))
	assert.InDelta(t, math.Log(5), IDF(10, 2), 1e-12)

	assert.Equal(t, 1.5, PositionBonus(1))
	assert.Equal(t, 1.25, PositionBonus(2))
	assert.Equal(t, 1.0, PositionBonus(0))
}

func TestSortBreaksTiesByLocation(t *testing.T) {
	docs := []ScoredDocument{
		{Sura: 2, Aya: 1, Score: 1},
		{Sura: 1, Aya: 7, Score: 1},
		{Sura: 1, Aya: 2, Score: 3},
		{Sura: 1, Aya: 5, Score: 1},
	}
	Sort(docs)
	assert.Equal(t, []int{2, 5, 7, 1}, []int{docs[0].Aya, docs[1].Aya, docs[2].Aya, docs[3].Aya})
}
