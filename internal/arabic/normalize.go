// Package arabic canonicalizes Arabic script for indexing and lookup.
// Normalization strips tashkeel and folds letter variants so that words
// written with and without diacritics compare equal.
package arabic

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// tashkeel covers the harakat, Quranic annotation marks and superscript
// alef. Tatweel (U+0640) is deliberately absent.
var tashkeel = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0610, Hi: 0x061A, Stride: 1},
		{Lo: 0x064B, Hi: 0x065F, Stride: 1},
		{Lo: 0x0670, Hi: 0x0670, Stride: 1},
		{Lo: 0x06D6, Hi: 0x06DC, Stride: 1},
		{Lo: 0x06DF, Hi: 0x06E4, Stride: 1},
		{Lo: 0x06E7, Hi: 0x06E8, Stride: 1},
		{Lo: 0x06EA, Hi: 0x06ED, Stride: 1},
	},
}

const (
	alef        = 'ا'
	haa         = 'ه'
	yaa         = 'ي'
	taaMarbuta  = 'ة'
	alefMaksura = 'ى'
)

// IsTashkeel reports whether r is a diacritical or annotation mark removed
// by normalization.
func IsTashkeel(r rune) bool {
	return unicode.Is(tashkeel, r)
}

func foldLetter(r rune) rune {
	switch r {
	case 'أ', 'إ', 'آ', 'ٱ':
		return alef
	case taaMarbuta:
		return haa
	case alefMaksura:
		return yaa
	default:
		return r
	}
}

// Transformers from x/text carry internal state, so every call builds its
// own chain.
func apply(s string, ts ...transform.Transformer) string {
	out, _, err := transform.String(transform.Chain(ts...), s)
	if err != nil {
		return s
	}
	return out
}

// RemoveTashkeel drops diacritics and Quranic annotation marks.
func RemoveTashkeel(s string) string {
	return apply(s, runes.Remove(runes.In(tashkeel)))
}

// Normalize returns the canonical search form of word: tashkeel removed,
// alef variants folded to bare alef, taa marbuta to haa and alef maksura to
// yaa. It never fails and returns "" when nothing meaningful remains.
func Normalize(word string) string {
	return apply(word, runes.Remove(runes.In(tashkeel)), runes.Map(foldLetter))
}

// IsArabic reports whether any character of text lies in the Arabic block
// (U+0600..U+06FF).
func IsArabic(text string) bool {
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}

// CleanAndTrim removes punctuation, including the Arabic comma, semicolon
// and question mark, keeping letters, digits, combining marks and
// whitespace.
func CleanAndTrim(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '،', r == '؛', r == '؟':
			return -1
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r), unicode.IsMark(r):
			return r
		default:
			return -1
		}
	}, text)
	return strings.TrimSpace(cleaned)
}

// Words splits text on whitespace and normalizes each word, dropping words
// that normalize to nothing.
func Words(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := Normalize(f); w != "" {
			words = append(words, w)
		}
	}
	return words
}
