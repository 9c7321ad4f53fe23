// Package qa answers natural-language questions by classifying the
// interrogative, stripping it, and searching the remaining content words.
package qa

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/arabic"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/ranker"
)

type QuestionType int

const (
	General QuestionType = iota
	Person
	Quantity
	Time
)

func (q QuestionType) String() string {
	switch q {
	case Person:
		return "person"
	case Quantity:
		return "quantity"
	case Time:
		return "time"
	default:
		return "general"
	}
}

type marker struct {
	text  string
	qtype QuestionType
}

var arabicMarkers = byLength([]marker{
	{"من هو", Person},
	{"من هي", Person},
	{"من هم", Person},
	{"من", Person},
	{"ما هو", General},
	{"ما هي", General},
	{"ماذا", General},
	{"ما", General},
	{"كم", Quantity},
	{"متى", Time},
	{"أين", General},
	{"كيف", General},
	{"لماذا", General},
	{"هل", General},
})

var englishMarkers = byLength([]marker{
	{"who", Person},
	{"whom", Person},
	{"what", General},
	{"which", General},
	{"how many", Quantity},
	{"how much", Quantity},
	{"how long", Time},
	{"when", Time},
	{"where", General},
	{"how", General},
	{"why", General},
	{"does", General},
	{"is", General},
})

// byLength orders markers longest first so "how many" wins over "how".
func byLength(markers []marker) []marker {
	sort.SliceStable(markers, func(i, j int) bool {
		return utf8.RuneCountInString(markers[i].text) > utf8.RuneCountInString(markers[j].text)
	})
	return markers
}

// Classification is the detected interrogative and the words left once it
// is removed.
type Classification struct {
	Type    QuestionType
	Marker  string
	Content []string
}

// Classify detects the question type and extracts content words. Arabic
// markers are only tried on Arabic text; English markers are always tried.
// A marker must be followed by the end of the text or a non-letter, so "is"
// does not match "isaac".
func Classify(question string) Classification {
	text := strings.TrimSpace(question)
	lower := strings.ToLower(text)
	var c Classification

	matched := ""
	if arabic.IsArabic(text) {
		if m, ok := match(text, arabicMarkers); ok {
			c.Type, matched = m.qtype, m.text
		}
	}
	if matched == "" {
		if m, ok := match(lower, englishMarkers); ok {
			c.Type, matched = m.qtype, m.text
		}
	}
	c.Marker = matched

	rest := skipRunes(text, utf8.RuneCountInString(matched))
	rest = strings.NewReplacer("?", " ", "؟", " ").Replace(rest)
	c.Content = contentWords(rest)
	return c
}

// skipRunes drops the first n runes of s. Lower-casing can change byte
// lengths, so markers matched on the lowered text are cut by rune count.
func skipRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}
	return ""
}

func match(text string, markers []marker) (marker, bool) {
	for _, m := range markers {
		if !strings.HasPrefix(text, m.text) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(text[len(m.text):])
		if next == utf8.RuneError || !unicode.IsLetter(next) {
			return m, true
		}
	}
	return marker{}, false
}

func contentWords(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if !arabic.IsArabic(f) {
			if w := tokenizer.CleanWord(f); w != "" {
				words = append(words, w)
			}
			continue
		}
		// Punctuation splits as well as trims, so "الرحمن،الرحيم" stays two words.
		for _, part := range strings.FieldsFunc(f, isPunctuation) {
			if w := arabic.Normalize(arabic.CleanAndTrim(part)); w != "" {
				words = append(words, w)
			}
		}
	}
	return words
}

func isPunctuation(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// Searcher is the slice of the search engine the answerer needs.
type Searcher interface {
	SearchWords(words []string, limit int) []ranker.ScoredDocument
	Verse(sura, aya int) (corpus.Verse, bool)
	Language() tokenizer.Language
}

type Answer struct {
	Sura         int          `json:"sura"`
	Aya          int          `json:"aya"`
	Text         string       `json:"text"`
	Score        float64      `json:"score"`
	Highlights   []string     `json:"highlights"`
	QuestionType QuestionType `json:"-"`
}

type Result struct {
	Question string
	Classification
	Answers []Answer
	// TotalHits counts every scored verse, not only the returned answers.
	TotalHits int
}

type Answerer struct {
	searcher Searcher
}

func New(s Searcher) *Answerer {
	return &Answerer{searcher: s}
}

// Answer returns up to limit verses for question. A question with no
// content words left after classification gets no answers.
func (a *Answerer) Answer(question string, limit int) *Result {
	res := &Result{
		Question:       question,
		Classification: Classify(question),
		Answers:        []Answer{},
	}
	if len(res.Content) == 0 {
		return res
	}
	docs := a.searcher.SearchWords(res.Content, 0)
	res.TotalHits = len(docs)
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	for _, doc := range docs {
		verse, ok := a.searcher.Verse(doc.Sura, doc.Aya)
		if !ok {
			continue
		}
		highlights := doc.MatchedWords
		if highlights == nil {
			highlights = []string{}
		}
		res.Answers = append(res.Answers, Answer{
			Sura:         doc.Sura,
			Aya:          doc.Aya,
			Text:         verse.Text,
			Score:        doc.Score,
			Highlights:   highlights,
			QuestionType: res.Type,
		})
	}
	return res
}

func (a *Answerer) Language() tokenizer.Language {
	return a.searcher.Language()
}
