package tokenizer

import (
	"strings"
	"testing"
)

var sampleTexts = map[string]struct {
	text string
	lang Language
}{
	"arabic_short":  {"بسم الله الرحمن الرحيم", Arabic},
	"arabic_long":   {strings.Repeat("صراط الذين أنعمت عليهم غير المغضوب عليهم ولا الضالين ", 50), Arabic},
	"arabic_marked": {strings.Repeat("بِسْمِ ٱللَّهِ ٱلرَّحْمَٰنِ ٱلرَّحِيمِ ", 50), Arabic},
	"english_short": {"In the name of Allah, the Entirely Merciful, the Especially Merciful.", English},
	"english_long":  {strings.Repeat("The path of those upon whom You have bestowed favor, not of those who have evoked [Your] anger. ", 50), English},
}

func BenchmarkTokenize(b *testing.B) {
	for name, s := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(s.text)))
			for i := 0; i < b.N; i++ {
				_ = Tokenize(s.text, s.lang)
			}
		})
	}
}

func BenchmarkDetect(b *testing.B) {
	for name, s := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = Detect(s.text)
			}
		})
	}
}
