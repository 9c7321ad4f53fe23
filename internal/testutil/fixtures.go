// Package testutil holds corpus fixtures shared by package tests.
package testutil

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/corpus"
)

// Fatiha is sura 1 in the simple-clean script, one verse per line.
const Fatiha = `1|1|بسم الله الرحمن الرحيم
1|2|الحمد لله رب العالمين
1|3|الرحمن الرحيم
1|4|مالك يوم الدين
1|5|إياك نعبد وإياك نستعين
1|6|اهدنا الصراط المستقيم
1|7|صراط الذين أنعمت عليهم غير المغضوب عليهم ولا الضالين
`

// FatihaEnglish is the Sahih International rendering of sura 1.
const FatihaEnglish = `1|1|In the name of Allah, the Entirely Merciful, the Especially Merciful.
1|2|[All] praise is [due] to Allah, Lord of the worlds -
1|3|The Entirely Merciful, the Especially Merciful,
1|4|Sovereign of the Day of Recompense.
1|5|It is You we worship and You we ask for help.
1|6|Guide us to the straight path -
1|7|The path of those upon whom You have bestowed favor, not of those who have evoked [Your] anger or of those who are astray.
`

// MustCorpus parses content and panics on error.
func MustCorpus(content string) *corpus.Corpus {
	c, err := corpus.ParseString(content)
	if err != nil {
		panic(err)
	}
	return c
}

// Synthetic builds a corpus of n verses by cycling through content's verse
// texts, seven verses per sura. Benchmarks use it to approach the size of
// the full text.
func Synthetic(content string, n int) *corpus.Corpus {
	base := MustCorpus(content).Verses()
	verses := make([]corpus.Verse, 0, n)
	for i := range n {
		v := base[i%len(base)]
		verses = append(verses, corpus.Verse{
			Sura: i/7 + 1,
			Aya:  i%7 + 1,
			Text: strings.TrimSpace(v.Text),
		})
	}
	return corpus.New(verses)
}
