package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/testutil"
)

func TestFormat(t *testing.T) {
	c := testutil.MustCorpus(testutil.Fatiha)
	scored := []ranker.ScoredDocument{
		{Sura: 1, Aya: 3, Score: 4.2, MatchedWords: []string{"الرحمن"}},
		{Sura: 9, Aya: 9, Score: 3.0},
		{Sura: 1, Aya: 1, Score: 2.5},
	}

	got := Format(scored, c, 10)
	require.Len(t, got, 2, "unknown verses are skipped")
	assert.Equal(t, "1:3", got[0].Reference)
	assert.Equal(t, "الرحمن الرحيم", got[0].Text)
	assert.Equal(t, []string{"الرحمن"}, got[0].Highlights)
	assert.Equal(t, []string{}, got[1].Highlights)
}

func TestFormatLimit(t *testing.T) {
	c := testutil.MustCorpus(testutil.Fatiha)
	scored := []ranker.ScoredDocument{{Sura: 1, Aya: 1}, {Sura: 1, Aya: 2}, {Sura: 1, Aya: 3}}

	assert.Len(t, Format(scored, c, 2), 2)
	assert.Len(t, Format(scored, c, 0), 3)
	assert.Empty(t, Format(nil, c, 5))
}
