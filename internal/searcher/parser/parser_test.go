package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/indexer/tokenizer"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		query string
		hint  tokenizer.Language
		want  []string
		lang  tokenizer.Language
	}{
		{"arabic hint", "الرَّحْمَنِ الرحيم", tokenizer.Arabic, []string{"الرحمن", "الرحيم"}, tokenizer.Arabic},
		{"auto arabic", "إيمان", tokenizer.Auto, []string{"ايمان"}, tokenizer.Arabic},
		{"auto english", "Merciful, Lord!", tokenizer.Auto, []string{"merciful", "lord"}, tokenizer.English},
		{"mixed", "Allah الرحمن", tokenizer.Auto, []string{"allah", "الرحمن"}, tokenizer.Arabic},
		{"english hint keeps arabic words", "mercy رحمة", tokenizer.English, []string{"mercy", "رحمه"}, tokenizer.English},
		{"drops empty", "-- ... ()", tokenizer.Auto, []string{}, tokenizer.English},
		{"blank", "   ", tokenizer.English, []string{}, tokenizer.English},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Parse(tt.query, tt.hint)
			assert.Equal(t, tt.want, plan.Terms)
			assert.Equal(t, tt.lang, plan.Language)
			assert.Equal(t, tt.query, plan.RawQuery)
			assert.Equal(t, len(tt.want) == 0, plan.Empty())
		})
	}
}

func TestParsePreservesOrderAndDuplicates(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "b"}, Words("B a b", tokenizer.English))
}
