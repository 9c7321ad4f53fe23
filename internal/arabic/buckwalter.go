package arabic

import "strings"

// Transliterator converts between Buckwalter ASCII and Arabic script. The
// tables are built once by NewBuckwalter and never mutated, so a single
// value can be shared freely.
type Transliterator struct {
	toArabic     map[rune]rune
	toBuckwalter map[rune]rune
}

var buckwalterPairs = [...][2]rune{
	{'\'', 'ء'}, {'|', 'آ'}, {'>', 'أ'}, {'&', 'ؤ'},
	{'<', 'إ'}, {'}', 'ئ'}, {'A', 'ا'}, {'b', 'ب'},
	{'p', 'ة'}, {'t', 'ت'}, {'v', 'ث'}, {'j', 'ج'},
	{'H', 'ح'}, {'x', 'خ'}, {'d', 'د'}, {'*', 'ذ'},
	{'r', 'ر'}, {'z', 'ز'}, {'s', 'س'}, {'$', 'ش'},
	{'S', 'ص'}, {'D', 'ض'}, {'T', 'ط'}, {'Z', 'ظ'},
	{'E', 'ع'}, {'g', 'غ'}, {'_', 'ـ'}, {'f', 'ف'},
	{'q', 'ق'}, {'k', 'ك'}, {'l', 'ل'}, {'m', 'م'},
	{'n', 'ن'}, {'h', 'ه'}, {'w', 'و'}, {'Y', 'ى'},
	{'y', 'ي'}, {'F', 'ً'}, {'N', 'ٌ'}, {'K', 'ٍ'},
	{'a', 'َ'}, {'u', 'ُ'}, {'i', 'ِ'}, {'~', 'ّ'},
	{'o', 'ْ'}, {'`', 'ٰ'}, {'{', 'ٱ'},
}

// NewBuckwalter builds the standard Buckwalter tables.
func NewBuckwalter() *Transliterator {
	t := &Transliterator{
		toArabic:     make(map[rune]rune, len(buckwalterPairs)),
		toBuckwalter: make(map[rune]rune, len(buckwalterPairs)),
	}
	for _, p := range buckwalterPairs {
		t.toArabic[p[0]] = p[1]
		t.toBuckwalter[p[1]] = p[0]
	}
	return t
}

// ToArabic converts Buckwalter text to Arabic script. Fatha followed by a
// superscript alef ("a`") becomes a plain alef, matching how the Quran text
// spells the long vowel.
func (t *Transliterator) ToArabic(text string) string {
	src := []rune(text)
	var b strings.Builder
	b.Grow(len(text) * 2)
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == 'a' && i+1 < len(src) && src[i+1] == '`' {
			b.WriteRune(alef)
			i++
			continue
		}
		if ar, ok := t.toArabic[c]; ok {
			b.WriteRune(ar)
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// ToBuckwalter converts Arabic script to Buckwalter. Characters outside the
// table pass through unchanged.
func (t *Transliterator) ToBuckwalter(text string) string {
	return strings.Map(func(r rune) rune {
		if bw, ok := t.toBuckwalter[r]; ok {
			return bw
		}
		return r
	}, text)
}
