package ontology

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const relationPrefix = "objpro"

// ParseOWL reads the ontology's RDF/XML. Any element carrying rdf:ID opens a
// concept (ObjectProperty declarations are skipped). Inside a concept,
// label, frequency, root, lemma and synonym* children fill its fields and
// objpro:<verb> elements become relations.
func ParseOWL(r io.Reader) ([]Concept, []Relation, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	var (
		concepts  []Concept
		relations []Relation
		current   *Concept
		entityTag xml.Name
		propDepth int
		child     string
		lang      string
	)

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			if current != nil {
				return nil, nil, fmt.Errorf("parsing ontology xml: concept %q not terminated", current.ID)
			}
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parsing ontology xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case propDepth > 0:
				propDepth++
			case current == nil && t.Name.Local == "ObjectProperty":
				propDepth = 1
			case current == nil:
				if id := attr(t, "rdf", "ID"); id != "" {
					current = &Concept{ID: id}
					entityTag = t.Name
				}
			case t.Name.Space == relationPrefix:
				freq, _ := strconv.Atoi(attr(t, "", "frequency"))
				relations = append(relations, Relation{
					Subject:     current.ID,
					Verb:        t.Name.Local,
					Object:      attr(t, "rdf", "resource"),
					Frequency:   freq,
					VerbEn:      attr(t, "", "verb_translation_en"),
					VerbUthmani: attr(t, "", "verb_uthmani"),
				})
			}
			child = t.Name.Local
			lang = attr(t, "xml", "lang")

		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if current == nil || text == "" {
				continue
			}
			switch {
			case child == "label" && strings.EqualFold(lang, "AR"):
				current.LabelAr = text
			case child == "label" && strings.EqualFold(lang, "EN"):
				current.LabelEn = text
			case child == "frequency":
				current.Frequency, _ = strconv.Atoi(text)
			case child == "root":
				current.Root = text
			case child == "lemma":
				current.Lemma = text
			case strings.HasPrefix(child, "synonym"):
				current.Synonyms = append(current.Synonyms, text)
			}

		case xml.EndElement:
			switch {
			case propDepth > 0:
				propDepth--
			case current != nil && t.Name == entityTag:
				concepts = append(concepts, *current)
				current = nil
			}
			child = ""
		}
	}
	return concepts, relations, nil
}

// LoadOWL parses an ontology file and builds its graph.
func LoadOWL(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ontology %s: %w", path, err)
	}
	defer f.Close()
	concepts, relations, err := ParseOWL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewGraph(concepts, relations), nil
}

// attr matches on the raw prefix as written in the document.
func attr(el xml.StartElement, space, local string) string {
	for _, a := range el.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
