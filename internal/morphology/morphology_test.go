package morphology

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/arabic"
)

const sample = "# Quranic Arabic Corpus sample\n" +
	"LOCATION\tFORM\tTAG\tFEATURES\n" +
	"(1:1:1:1)\tbi\tP\tPREFIX|bi+\n" +
	"(1:1:1:2)\tsomi\tN\tSTEM|POS:N|LEM:{som|ROOT:smw|M|GEN\n" +
	"(1:1:2:1)\t{ll~ahi\tPN\tSTEM|POS:PN|LEM:{ll~ah|ROOT:Alh|GEN\n" +
	"(1:1:3:1)\t{l\tDET\tPREFIX|Al+\n" +
	"(1:1:3:2)\tr~aHoma`ni\tADJ\tSTEM|POS:ADJ|LEM:r~aHoma`n|ROOT:rHm|MS|GEN\n" +
	"(1:1:4:1)\t{l\tDET\tPREFIX|Al+\n" +
	"(1:1:4:2)\tr~aHiymi\tADJ\tSTEM|POS:ADJ|LEM:r~aHiym|ROOT:rHm|MS|GEN\n" +
	"(1:3:2:2)\tr~aHiymi\tADJ\tSTEM|POS:ADJ|LEM:r~aHiym|ROOT:rHm|MS|GEN\n" +
	"(1:1:4:2)\tr~aHiymi\tADJ\tSTEM|POS:ADJ|LEM:r~aHiym|ROOT:rHm|MS|GEN\n" +
	"(bad)\tx\ty\tz\n" +
	"(1:2:1:1)\tonly-two\n" +
	"(0:1:1:1)\tx\tN\tSTEM\n"

func parseSample(t *testing.T) *Table {
	t.Helper()
	table, err := Parse(strings.NewReader(sample), arabic.NewBuckwalter())
	require.NoError(t, err)
	return table
}

func TestParseCountsAndSkips(t *testing.T) {
	table := parseSample(t)
	assert.Equal(t, 5, table.Len())
	assert.Equal(t, 3, table.Skipped())
	assert.Equal(t, 3, table.RootCount())
}

func TestGetSegments(t *testing.T) {
	table := parseSample(t)

	segs := table.Get(1, 1, 1)
	require.Len(t, segs, 2)
	assert.Equal(t, "P", segs[0].Tag)
	assert.Equal(t, 2, segs[1].Segment)
	assert.Equal(t, "somi", segs[1].FormBuckwalter)
	assert.Equal(t, "smw", arabic.NewBuckwalter().ToBuckwalter(segs[1].Root))
	assert.Empty(t, table.Get(9, 9, 9))
}

func TestRootIndexes(t *testing.T) {
	table := parseSample(t)

	assert.Equal(t, []string{"رحمان", "رحيم"}, table.FormsForRoot("رحم"))

	root, ok := table.RootForForm("رحيم")
	require.True(t, ok)
	assert.Equal(t, "رحم", root)

	root, ok = table.RootForForm("رَحِيم")
	require.True(t, ok, "lookup normalizes its argument")
	assert.Equal(t, "رحم", root)

	_, ok = table.RootForForm("كتاب")
	assert.False(t, ok)
	assert.Empty(t, table.FormsForRoot("كتب"))
	assert.Equal(t, []string{"رحم"}, table.RootsForForm("رحمان"))
}

func TestFindByRootDeduplicates(t *testing.T) {
	table := parseSample(t)
	assert.Equal(t, []Location{
		{Sura: 1, Aya: 1, Word: 3},
		{Sura: 1, Aya: 1, Word: 4},
		{Sura: 1, Aya: 3, Word: 2},
	}, table.FindByRoot("رحم"))
}

func TestLemmaIndexes(t *testing.T) {
	table := parseSample(t)

	assert.Equal(t, []string{"رحيم"}, table.FormsForLemma("رحيم"))

	lemma, ok := table.LemmaForForm("سم")
	require.True(t, ok)
	assert.Equal(t, "اسم", lemma)

	lemma, ok = table.LemmaForForm("الله")
	require.True(t, ok)
	assert.Equal(t, "الله", lemma)

	_, ok = table.LemmaForForm("ال")
	assert.False(t, ok, "prefix segments carry no lemma")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qac.txt")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	table, err := LoadFile(path, arabic.NewBuckwalter())
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing"), arabic.NewBuckwalter())
	assert.Error(t, err)
}
