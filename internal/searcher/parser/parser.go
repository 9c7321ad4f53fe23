package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/arabic"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
)

type QueryPlan struct {
	Terms    []string
	Language tokenizer.Language
	RawQuery string
}

func (p *QueryPlan) Empty() bool {
	return len(p.Terms) == 0
}

// Parse splits query on whitespace and normalizes each word. A word is
// treated as Arabic when the hint says so or when it contains Arabic script;
// anything else is trimmed of punctuation and lower-cased. Words that
// normalize to nothing are dropped and order is kept. The plan's Language is
// the hint with Auto resolved against the whole query.
func Parse(query string, hint tokenizer.Language) *QueryPlan {
	plan := &QueryPlan{
		Terms:    make([]string, 0),
		Language: hint.Resolve(query),
		RawQuery: query,
	}
	for _, word := range strings.Fields(query) {
		var term string
		if hint == tokenizer.Arabic || arabic.IsArabic(word) {
			term = arabic.Normalize(word)
		} else {
			term = tokenizer.CleanWord(word)
		}
		if term == "" {
			continue
		}
		plan.Terms = append(plan.Terms, term)
	}
	return plan
}

// Words is Parse returning only the terms.
func Words(query string, hint tokenizer.Language) []string {
	return Parse(query, hint).Terms
}
