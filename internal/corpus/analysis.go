package corpus

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Stats summarizes a corpus.
type Stats struct {
	TotalVerses int `json:"total_verses"`
	TotalSuras  int `json:"total_suras"`
	TotalWords  int `json:"total_words"`
	TotalChars  int `json:"total_chars"`
	UniqueWords int `json:"unique_words"`
}

// WordFrequency counts a normalized word's occurrences and the number of
// verses it appears in.
type WordFrequency struct {
	Word       string `json:"word"`
	Count      int    `json:"count"`
	VerseCount int    `json:"verse_count"`
}

// Normalizer maps a raw whitespace token to its comparable form. An empty
// result means the token carries nothing and is skipped.
type Normalizer func(string) string

// ComputeStats walks the corpus once. TotalSuras is the highest sura number
// seen, and UniqueWords counts distinct normalized words.
func ComputeStats(c *Corpus, normalize Normalizer) Stats {
	stats := Stats{TotalVerses: c.Len()}
	unique := make(map[string]struct{})
	for _, v := range c.verses {
		words := strings.Fields(v.Text)
		stats.TotalWords += len(words)
		stats.TotalChars += utf8.RuneCountInString(v.Text)
		if v.Sura > stats.TotalSuras {
			stats.TotalSuras = v.Sura
		}
		for _, w := range words {
			unique[normalize(w)] = struct{}{}
		}
	}
	stats.UniqueWords = len(unique)
	return stats
}

// WordFrequencies returns every normalized word sorted by count descending,
// then by word.
func WordFrequencies(c *Corpus, normalize Normalizer) []WordFrequency {
	type acc struct {
		count  int
		verses map[Key]struct{}
	}
	counts := make(map[string]*acc)
	for _, v := range c.verses {
		for _, w := range strings.Fields(v.Text) {
			n := normalize(w)
			if n == "" {
				continue
			}
			a, ok := counts[n]
			if !ok {
				a = &acc{verses: make(map[Key]struct{})}
				counts[n] = a
			}
			a.count++
			a.verses[v.Key()] = struct{}{}
		}
	}

	out := make([]WordFrequency, 0, len(counts))
	for w, a := range counts {
		out = append(out, WordFrequency{Word: w, Count: a.count, VerseCount: len(a.verses)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return out
}

// Frequency counts a single word after normalizing it. ok is false when the
// word never occurs.
func Frequency(c *Corpus, normalize Normalizer, word string) (WordFrequency, bool) {
	target := normalize(word)
	if target == "" {
		return WordFrequency{}, false
	}
	wf := WordFrequency{Word: target}
	var lastKey Key
	for _, v := range c.verses {
		for _, w := range strings.Fields(v.Text) {
			if normalize(w) != target {
				continue
			}
			wf.Count++
			if k := v.Key(); wf.VerseCount == 0 || k != lastKey {
				wf.VerseCount++
				lastKey = k
			}
		}
	}
	return wf, wf.Count > 0
}
