// Package results turns scored verses into the response shape shared by the
// CLI and the HTTP API.
package results

import (
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/ranker"
)

type Result struct {
	Sura       int      `json:"sura"`
	Aya        int      `json:"aya"`
	Reference  string   `json:"reference"`
	Text       string   `json:"text"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights"`
}

type Response struct {
	Query        string   `json:"query"`
	Language     string   `json:"language"`
	QuestionType string   `json:"question_type,omitempty"`
	Terms        []string `json:"terms,omitempty"`
	TotalHits    int      `json:"total_hits"`
	Results      []Result `json:"results"`
	Cached       bool     `json:"cached,omitempty"`
}

// Format attaches verse text to at most limit scored documents. Documents
// whose verse is missing from c are skipped. limit <= 0 keeps all.
func Format(scored []ranker.ScoredDocument, c *corpus.Corpus, limit int) []Result {
	if limit <= 0 || limit > len(scored) {
		limit = len(scored)
	}
	out := make([]Result, 0, limit)
	for _, doc := range scored[:limit] {
		verse, ok := c.Get(doc.Sura, doc.Aya)
		if !ok {
			continue
		}
		highlights := doc.MatchedWords
		if highlights == nil {
			highlights = []string{}
		}
		out = append(out, Result{
			Sura:       doc.Sura,
			Aya:        doc.Aya,
			Reference:  doc.Key().String(),
			Text:       verse.Text,
			Score:      doc.Score,
			Highlights: highlights,
		})
	}
	return out
}
