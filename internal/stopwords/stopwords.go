// Package stopwords holds language-specific stop word sets. Stop words stay
// in the index; the scorer only down-weights them.
package stopwords

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/ar"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
)

const bom = "\ufeff"

// Set is an immutable stop word set.
type Set struct {
	tokens analysis.TokenMap
}

// New builds a set from the given words.
func New(words ...string) *Set {
	tokens := analysis.NewTokenMap()
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			tokens.AddToken(w)
		}
	}
	return &Set{tokens: tokens}
}

// Parse reads one word per line. Lines are trimmed, a leading byte order
// mark is dropped and blank lines are skipped.
func Parse(r io.Reader) (*Set, error) {
	tokens := analysis.NewTokenMap()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimPrefix(strings.TrimSpace(scanner.Text()), bom)
		if line == "" {
			continue
		}
		tokens.AddToken(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stop words: %w", err)
	}
	return &Set{tokens: tokens}, nil
}

// Load reads a stop word file.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stop words %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Default returns the built-in list for lang ("ar" or "en"), or an empty set
// for any other language.
func Default(lang string) *Set {
	tokens := analysis.NewTokenMap()
	var err error
	switch lang {
	case "ar":
		err = tokens.LoadBytes(ar.ArabicStopWords)
	case "en":
		err = tokens.LoadBytes(en.EnglishStopWords)
	}
	if err != nil {
		return &Set{tokens: analysis.NewTokenMap()}
	}
	return &Set{tokens: tokens}
}

// Contains reports whether word is a stop word. A nil set contains nothing.
func (s *Set) Contains(word string) bool {
	if s == nil {
		return false
	}
	return s.tokens[word]
}

// Filter returns the words that are not stop words, preserving order.
func (s *Set) Filter(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !s.Contains(w) {
			out = append(out, w)
		}
	}
	return out
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tokens)
}
