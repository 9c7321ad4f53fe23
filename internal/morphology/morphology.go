// Package morphology loads the Quranic Arabic Corpus morphology file and
// exposes root and lemma lookups over normalized surface forms.
package morphology

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/arabic"
)

// Location addresses one word of the corpus.
type Location struct {
	Sura int `json:"sura"`
	Aya  int `json:"aya"`
	Word int `json:"word"`
}

// Entry is one morphological segment. A word usually has several, for
// example a prefix particle followed by the stem.
type Entry struct {
	Location
	Segment        int    `json:"segment"`
	FormBuckwalter string `json:"form_buckwalter"`
	Form           string `json:"form"`
	Tag            string `json:"tag"`
	Features       string `json:"features"`
	Root           string `json:"root,omitempty"`
	Lemma          string `json:"lemma,omitempty"`
}

// Table holds the parsed segments and the derived many-to-many indexes.
// Keys and values of the indexes are normalized Arabic. A Table is
// read-only after Parse returns.
type Table struct {
	entries      map[Location][]Entry
	rootLocs     map[string][]Location
	formToRoots  map[string][]string
	rootToForms  map[string][]string
	lemmaToForms map[string][]string
	formToLemmas map[string][]string
	skipped      int
}

func newTable() *Table {
	return &Table{
		entries:      make(map[Location][]Entry),
		rootLocs:     make(map[string][]Location),
		formToRoots:  make(map[string][]string),
		rootToForms:  make(map[string][]string),
		lemmaToForms: make(map[string][]string),
		formToLemmas: make(map[string][]string),
	}
}

// Parse reads tab-separated QAC rows:
//
//	(sura:aya:word:segment)	FORM	TAG	FEATURES
//
// Header lines, comments and rows that do not have a usable location are
// skipped and counted.
func Parse(r io.Reader, tr *arabic.Transliterator) (*Table, error) {
	t := newTable()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "LOCATION") {
			continue
		}
		entry, ok := parseRow(line, tr)
		if !ok {
			t.skipped++
			continue
		}
		t.add(entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading morphology: %w", err)
	}
	for root, locs := range t.rootLocs {
		t.rootLocs[root] = dedupLocations(locs)
	}
	return t, nil
}

// LoadFile parses a QAC morphology file.
func LoadFile(path string, tr *arabic.Transliterator) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening morphology %s: %w", path, err)
	}
	defer f.Close()
	t, err := Parse(f, tr)
	if err != nil {
		return nil, err
	}
	if t.skipped > 0 {
		slog.Default().With("component", "morphology").Warn("skipped malformed rows", "path", path, "rows", t.skipped)
	}
	return t, nil
}

func parseRow(line string, tr *arabic.Transliterator) (Entry, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 4 {
		return Entry{}, false
	}
	loc := strings.TrimSuffix(strings.TrimPrefix(parts[0], "("), ")")
	nums := strings.Split(loc, ":")
	if len(nums) < 4 {
		return Entry{}, false
	}
	var ids [4]int
	for i := range ids {
		n, err := strconv.Atoi(nums[i])
		if err != nil {
			return Entry{}, false
		}
		ids[i] = n
	}
	if ids[0] == 0 || ids[1] == 0 || ids[2] == 0 {
		return Entry{}, false
	}

	e := Entry{
		Location:       Location{Sura: ids[0], Aya: ids[1], Word: ids[2]},
		Segment:        ids[3],
		FormBuckwalter: parts[1],
		Form:           tr.ToArabic(parts[1]),
		Tag:            parts[2],
		Features:       parts[3],
	}
	if root := feature(parts[3], "ROOT:"); root != "" {
		e.Root = tr.ToArabic(root)
	}
	if lemma := feature(parts[3], "LEM:"); lemma != "" {
		e.Lemma = tr.ToArabic(lemma)
	}
	return e, true
}

func feature(features, prefix string) string {
	for _, f := range strings.Split(features, "|") {
		if v, ok := strings.CutPrefix(f, prefix); ok {
			return v
		}
	}
	return ""
}

func (t *Table) add(e Entry) {
	t.entries[e.Location] = append(t.entries[e.Location], e)

	form := arabic.Normalize(e.Form)
	if form == "" {
		return
	}
	if e.Root != "" {
		root := arabic.Normalize(e.Root)
		t.rootLocs[root] = append(t.rootLocs[root], e.Location)
		t.formToRoots[form] = appendUnique(t.formToRoots[form], root)
		t.rootToForms[root] = appendUnique(t.rootToForms[root], form)
	}
	if e.Lemma != "" {
		if lemma := arabic.Normalize(e.Lemma); lemma != "" {
			t.lemmaToForms[lemma] = appendUnique(t.lemmaToForms[lemma], form)
			t.formToLemmas[form] = appendUnique(t.formToLemmas[form], lemma)
		}
	}
}

func appendUnique(list []string, s string) []string {
	for _, x := range list {
		if x == s {
			return list
		}
	}
	return append(list, s)
}

func dedupLocations(locs []Location) []Location {
	sort.Slice(locs, func(i, j int) bool {
		a, b := locs[i], locs[j]
		if a.Sura != b.Sura {
			return a.Sura < b.Sura
		}
		if a.Aya != b.Aya {
			return a.Aya < b.Aya
		}
		return a.Word < b.Word
	})
	out := locs[:0]
	for i, l := range locs {
		if i == 0 || l != locs[i-1] {
			out = append(out, l)
		}
	}
	return out
}

// Get returns the segments of the word at (sura, aya, word).
func (t *Table) Get(sura, aya, word int) []Entry {
	return t.entries[Location{Sura: sura, Aya: aya, Word: word}]
}

// FindByRoot returns the sorted, distinct word locations derived from root.
func (t *Table) FindByRoot(root string) []Location {
	return t.rootLocs[arabic.Normalize(root)]
}

// FormsForRoot returns the normalized surface forms carrying root.
func (t *Table) FormsForRoot(root string) []string {
	return t.rootToForms[arabic.Normalize(root)]
}

// RootForForm returns the first root recorded for form.
func (t *Table) RootForForm(form string) (string, bool) {
	roots := t.formToRoots[arabic.Normalize(form)]
	if len(roots) == 0 {
		return "", false
	}
	return roots[0], true
}

// RootsForForm returns every root recorded for form.
func (t *Table) RootsForForm(form string) []string {
	return t.formToRoots[arabic.Normalize(form)]
}

// FormsForLemma returns the normalized surface forms sharing lemma.
func (t *Table) FormsForLemma(lemma string) []string {
	return t.lemmaToForms[arabic.Normalize(lemma)]
}

// LemmaForForm returns the first lemma recorded for form.
func (t *Table) LemmaForForm(form string) (string, bool) {
	lemmas := t.formToLemmas[arabic.Normalize(form)]
	if len(lemmas) == 0 {
		return "", false
	}
	return lemmas[0], true
}

// Len is the number of distinct word locations.
func (t *Table) Len() int { return len(t.entries) }

// RootCount is the number of distinct roots.
func (t *Table) RootCount() int { return len(t.rootToForms) }

// LemmaCount is the number of distinct lemmas.
func (t *Table) LemmaCount() int { return len(t.lemmaToForms) }

// Skipped is the number of rows Parse could not use.
func (t *Table) Skipped() int { return t.skipped }
