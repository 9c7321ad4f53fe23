// Package corpus holds the verse text the engines index. A Corpus is built
// once and is read-only afterwards.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/errors"
)

// Verse is a single aya. Sura and Aya are 1-based.
type Verse struct {
	Sura int    `json:"sura"`
	Aya  int    `json:"aya"`
	Text string `json:"text"`
}

// Key identifies a verse.
type Key struct {
	Sura int
	Aya  int
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%d", k.Sura, k.Aya)
}

func (v Verse) Key() Key {
	return Key{Sura: v.Sura, Aya: v.Aya}
}

// Corpus is an ordered verse list addressable by (sura, aya).
type Corpus struct {
	verses []Verse
	byKey  map[Key]int
}

// New builds a corpus from verses in scan order. A repeated (sura, aya)
// keeps the later text for lookups.
func New(verses []Verse) *Corpus {
	c := &Corpus{
		verses: verses,
		byKey:  make(map[Key]int, len(verses)),
	}
	for i, v := range verses {
		c.byKey[v.Key()] = i
	}
	return c
}

// Parse reads "sura|aya|text" lines. Blank lines and lines starting with '#'
// are skipped; anything else that does not parse is an error naming the
// line.
func Parse(r io.Reader, source string) (*Corpus, error) {
	var verses []Verse
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) < 3 {
			return nil, apperrors.Malformed(source, lineNum, "expected sura|aya|text")
		}
		sura, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil || sura <= 0 {
			return nil, apperrors.Malformed(source, lineNum, "invalid sura %q", parts[0])
		}
		aya, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || aya <= 0 {
			return nil, apperrors.Malformed(source, lineNum, "invalid aya %q", parts[1])
		}
		verses = append(verses, Verse{Sura: sura, Aya: aya, Text: parts[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return New(verses), nil
}

// ParseString is Parse over an in-memory string.
func ParseString(content string) (*Corpus, error) {
	return Parse(strings.NewReader(content), "corpus")
}

// LoadFile parses a corpus file.
func LoadFile(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Get returns the verse at (sura, aya).
func (c *Corpus) Get(sura, aya int) (Verse, bool) {
	i, ok := c.byKey[Key{Sura: sura, Aya: aya}]
	if !ok {
		return Verse{}, false
	}
	return c.verses[i], true
}

// Verses returns the verses in scan order. Callers must not modify the
// returned slice.
func (c *Corpus) Verses() []Verse {
	return c.verses
}

func (c *Corpus) Len() int {
	return len(c.verses)
}
