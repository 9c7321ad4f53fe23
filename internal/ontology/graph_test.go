package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *Graph {
	concepts := []Concept{
		{ID: "Human", LabelAr: "إنسان", LabelEn: "Human", Frequency: 65, Synonyms: []string{"بشر", "آدمي"}},
		{ID: "Angel", LabelAr: "ملائكة", LabelEn: "Angel", Frequency: 88},
	}
	relations := []Relation{
		{Subject: "Angel", Verb: "serves", Object: "#Human", Frequency: 5, VerbEn: "serves"},
	}
	return NewGraph(concepts, relations)
}

func TestFindByLabel(t *testing.T) {
	g := sampleGraph()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"arabic label", "إنسان", "Human"},
		{"normalized label", "انسان", "Human"},
		{"synonym", "بشر", "Human"},
		{"normalized synonym", "ادمي", "Human"},
		{"taa marbuta folded", "ملائكه", "Angel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := g.FindByLabel(tt.query)
			require.True(t, ok)
			assert.Equal(t, tt.want, c.ID)
		})
	}

	_, ok := g.FindByLabel("جبل")
	assert.False(t, ok)
}

func TestFindByEnglishAndLookup(t *testing.T) {
	g := sampleGraph()

	c, ok := g.FindByEnglish("hUmAn")
	require.True(t, ok)
	assert.Equal(t, "Human", c.ID)

	c, ok = g.Lookup("Angel")
	require.True(t, ok)
	assert.Equal(t, "ملائكة", c.LabelAr)

	_, ok = g.Lookup("Jinn")
	assert.False(t, ok)
}

func TestSynonyms(t *testing.T) {
	g := sampleGraph()
	assert.Equal(t, []string{"بشر", "آدمي", "إنسان"}, g.Synonyms("Human"))
	assert.Equal(t, []string{"ملائكة"}, g.Synonyms("Angel"))
	assert.Nil(t, g.Synonyms("Nope"))
}

func TestRelationsIndexedBothWays(t *testing.T) {
	g := sampleGraph()

	out := g.Outgoing("Angel")
	require.Len(t, out, 1)
	assert.Equal(t, "Human", out[0].Object, "fragment reference resolved")

	in := g.Incoming("Human")
	require.Len(t, in, 1)
	assert.Equal(t, "Angel", in[0].Subject)

	assert.Empty(t, g.Outgoing("Human"))
	assert.Empty(t, g.Incoming("#Angel"))
	assert.Equal(t, 2, g.ConceptCount())
	assert.Equal(t, 1, g.RelationCount())
}

func TestConceptsOrderedByFrequency(t *testing.T) {
	g := sampleGraph()
	cs := g.Concepts()
	require.Len(t, cs, 2)
	assert.Equal(t, "Angel", cs[0].ID)
	assert.Equal(t, "Human", cs[1].ID)
}
