// Package tokenizer splits verse text into index terms. Arabic words are
// normalized with package arabic; other languages are lower-cased with
// punctuation trimmed from both ends.
package tokenizer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/arabic"
)

// Language tags an index, a query or a question.
type Language string

const (
	Arabic  Language = "ar"
	English Language = "en"
	Auto    Language = "auto"
)

// ParseLanguage accepts "ar", "en", "auto" and "" (treated as auto).
func ParseLanguage(s string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case Arabic, English, Auto:
		return l, nil
	case "":
		return Auto, nil
	default:
		return "", fmt.Errorf("unknown language %q", s)
	}
}

// Detect picks Arabic when text contains any Arabic script, English
// otherwise.
func Detect(text string) Language {
	if arabic.IsArabic(text) {
		return Arabic
	}
	return English
}

// Resolve replaces Auto with the language detected from text.
func (l Language) Resolve(text string) Language {
	if l == Auto || l == "" {
		return Detect(text)
	}
	return l
}

// Token is one indexed word. Position is the 1-based index of the
// whitespace-delimited word within its verse, so dropped words still
// advance it.
type Token struct {
	Term     string
	Raw      string
	Position int
}

// Tokenize breaks text into Tokens for lang. Words that normalize to
// nothing are skipped.
func Tokenize(text string, lang Language) []Token {
	words := strings.Fields(text)
	tokens := make([]Token, 0, len(words))
	for i, word := range words {
		term := Term(word, lang)
		if term == "" {
			continue
		}
		tokens = append(tokens, Token{
			Term:     term,
			Raw:      word,
			Position: i + 1,
		})
	}
	return tokens
}

// Term normalizes a single word for lang.
func Term(word string, lang Language) string {
	if lang == Arabic {
		return arabic.Normalize(word)
	}
	return CleanWord(word)
}

// CleanWord trims non-alphanumeric characters from both ends and
// lower-cases the rest.
func CleanWord(word string) string {
	trimmed := strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.ToLower(trimmed)
}
