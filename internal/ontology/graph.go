// Package ontology models the Quranic concept ontology: concepts with
// Arabic and English labels, synonyms, and verb relations between them.
package ontology

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/arabic"
)

// Concept is a node of the ontology.
type Concept struct {
	ID        string   `json:"id"`
	LabelAr   string   `json:"label_ar"`
	LabelEn   string   `json:"label_en"`
	Frequency int      `json:"frequency"`
	Root      string   `json:"root,omitempty"`
	Lemma     string   `json:"lemma,omitempty"`
	Synonyms  []string `json:"synonyms,omitempty"`
}

// Relation is a directed edge Subject --Verb--> Object.
type Relation struct {
	Subject     string `json:"subject"`
	Verb        string `json:"verb"`
	Object      string `json:"object"`
	Frequency   int    `json:"frequency"`
	VerbEn      string `json:"verb_en,omitempty"`
	VerbUthmani string `json:"verb_uthmani,omitempty"`
}

// Graph indexes concepts by id, English label and Arabic label or synonym,
// and relations in both directions. It is read-only after NewGraph.
type Graph struct {
	concepts  map[string]*Concept
	byEnglish map[string]string
	byArabic  map[string]string
	outgoing  map[string][]Relation
	incoming  map[string][]Relation
	relations int
}

// NewGraph builds the indexes. Relation endpoints written as RDF fragment
// references ("#Human") are resolved to plain ids. Arabic labels and
// synonyms are indexed both as written and normalized, so normalized query
// words find them.
func NewGraph(concepts []Concept, relations []Relation) *Graph {
	g := &Graph{
		concepts:  make(map[string]*Concept, len(concepts)),
		byEnglish: make(map[string]string),
		byArabic:  make(map[string]string),
		outgoing:  make(map[string][]Relation),
		incoming:  make(map[string][]Relation),
	}
	for i := range concepts {
		c := &concepts[i]
		g.concepts[c.ID] = c
		if c.LabelEn != "" {
			g.byEnglish[strings.ToLower(c.LabelEn)] = c.ID
		}
		g.indexArabic(c.LabelAr, c.ID)
		for _, syn := range c.Synonyms {
			g.indexArabic(syn, c.ID)
		}
	}
	for _, rel := range relations {
		rel.Subject = resolveID(rel.Subject)
		rel.Object = resolveID(rel.Object)
		g.outgoing[rel.Subject] = append(g.outgoing[rel.Subject], rel)
		g.incoming[rel.Object] = append(g.incoming[rel.Object], rel)
		g.relations++
	}
	return g
}

func (g *Graph) indexArabic(label, id string) {
	if label == "" {
		return
	}
	g.byArabic[label] = id
	if n := arabic.Normalize(label); n != "" && n != label {
		if _, taken := g.byArabic[n]; !taken {
			g.byArabic[n] = id
		}
	}
}

func resolveID(ref string) string {
	if i := strings.LastIndexByte(ref, '#'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// Concept returns the concept with id.
func (g *Graph) Concept(id string) (*Concept, bool) {
	c, ok := g.concepts[resolveID(id)]
	return c, ok
}

// FindByLabel finds a concept by Arabic label or synonym.
func (g *Graph) FindByLabel(text string) (*Concept, bool) {
	id, ok := g.byArabic[text]
	if !ok {
		id, ok = g.byArabic[arabic.Normalize(text)]
	}
	if !ok {
		return nil, false
	}
	return g.Concept(id)
}

// FindByEnglish finds a concept by English label, ignoring case.
func (g *Graph) FindByEnglish(label string) (*Concept, bool) {
	id, ok := g.byEnglish[strings.ToLower(label)]
	if !ok {
		return nil, false
	}
	return g.Concept(id)
}

// Lookup tries the Arabic index, then English labels, then ids.
func (g *Graph) Lookup(text string) (*Concept, bool) {
	if c, ok := g.FindByLabel(text); ok {
		return c, true
	}
	if c, ok := g.FindByEnglish(text); ok {
		return c, true
	}
	return g.Concept(text)
}

// Synonyms returns the concept's synonyms followed by its Arabic label when
// the label is not already among them.
func (g *Graph) Synonyms(id string) []string {
	c, ok := g.Concept(id)
	if !ok {
		return nil
	}
	syns := make([]string, 0, len(c.Synonyms)+1)
	syns = append(syns, c.Synonyms...)
	if c.LabelAr != "" && !contains(syns, c.LabelAr) {
		syns = append(syns, c.LabelAr)
	}
	return syns
}

// Outgoing returns relations whose subject is id.
func (g *Graph) Outgoing(id string) []Relation {
	return g.outgoing[resolveID(id)]
}

// Incoming returns relations whose object is id.
func (g *Graph) Incoming(id string) []Relation {
	return g.incoming[resolveID(id)]
}

// Concepts returns every concept ordered by descending frequency, then id.
func (g *Graph) Concepts() []*Concept {
	out := make([]*Concept, 0, len(g.concepts))
	for _, c := range g.concepts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (g *Graph) ConceptCount() int  { return len(g.concepts) }
func (g *Graph) RelationCount() int { return g.relations }

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
