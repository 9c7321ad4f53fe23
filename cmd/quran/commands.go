package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/panjf2000/ants/v2"
	"github.com/urfave/cli/v2"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/dataset"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/ontology"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/expansion"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/results"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/service"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/resilience"
)

const loadTimeout = 2 * time.Minute

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if dir := c.String("data-dir"); dir != "" {
		cfg.Data.Dir = dir
	}
	return cfg, nil
}

func connectPostgres(ctx context.Context, cfg config.PostgresConfig) (*postgres.Client, error) {
	var pg *postgres.Client
	err := resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{MaxAttempts: 3}, func(ctx context.Context) error {
		var err error
		pg, err = postgres.New(ctx, cfg)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return pg, nil
}

// openService loads the configured resources and builds a service without
// cache or analytics. The returned func releases the database connection,
// if one was opened.
func openService(c *cli.Context) (*service.Service, func(), error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	ctx := c.Context

	closeFn := func() {}
	var db corpus.Querier
	if cfg.Data.CorpusSource == "postgres" {
		pg, err := connectPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		db = pg.DB
		closeFn = func() { pg.Close() }
	}

	ds, err := resilience.WithTimeout(ctx, loadTimeout, "load-dataset", func(ctx context.Context) (*dataset.Dataset, error) {
		return dataset.Load(ctx, cfg.Data, db)
	})
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("loading dataset: %w", err)
	}
	engines, err := ds.Engines(cfg.Search.Languages, expansion.FromConfig(cfg.Expansion))
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	svc, err := service.New(engines, service.Options{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxResults:   cfg.Search.MaxResults,
		AnswerLimit:  cfg.Search.AnswerLimit,
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return svc, closeFn, nil
}

func joinedArgs(c *cli.Context, what string) (string, error) {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return "", fmt.Errorf("%s is required", what)
	}
	return text, nil
}

func checkFormat(c *cli.Context) (string, error) {
	switch f := c.String("format"); f {
	case "text", "json":
		return f, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be text or json", f)
	}
}

func searchCommand(c *cli.Context) error {
	query, err := joinedArgs(c, "query")
	if err != nil {
		return err
	}
	format, err := checkFormat(c)
	if err != nil {
		return err
	}
	svc, closeFn, err := openService(c)
	if err != nil {
		return err
	}
	defer closeFn()

	resp, err := svc.Search(c.Context, query, c.String("lang"), c.Int("limit"))
	if err != nil {
		return err
	}
	return writeResponse(c.App.Writer, format, resp)
}

func answerCommand(c *cli.Context) error {
	question, err := joinedArgs(c, "question")
	if err != nil {
		return err
	}
	format, err := checkFormat(c)
	if err != nil {
		return err
	}
	svc, closeFn, err := openService(c)
	if err != nil {
		return err
	}
	defer closeFn()

	resp, err := svc.Answer(c.Context, question, c.String("lang"), c.Int("limit"))
	if err != nil {
		return err
	}
	return writeResponse(c.App.Writer, format, resp)
}

func analyzeCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("analyze takes exactly one word")
	}
	format, err := checkFormat(c)
	if err != nil {
		return err
	}
	svc, closeFn, err := openService(c)
	if err != nil {
		return err
	}
	defer closeFn()

	a, err := svc.Analyze(c.Args().First(), c.String("lang"))
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(c.App.Writer, a)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "word:        %s\n", a.Word)
	fmt.Fprintf(w, "normalized:  %s\n", a.Normalized)
	fmt.Fprintf(w, "language:    %s\n", a.Language)
	fmt.Fprintf(w, "occurrences: %s in %s verses\n", humanize.Comma(int64(a.Count)), humanize.Comma(int64(a.VerseCount)))
	fmt.Fprintf(w, "index docs:  %s\n", humanize.Comma(int64(a.IndexDocs)))
	if len(a.Roots) > 0 {
		fmt.Fprintf(w, "roots:       %s\n", strings.Join(a.Roots, ", "))
	}
	if a.Lemma != "" {
		fmt.Fprintf(w, "lemma:       %s\n", a.Lemma)
	}
	if a.Concept != nil {
		fmt.Fprintf(w, "concept:     %s (%s)\n", a.Concept.ID, a.Concept.LabelEn)
	}
	if len(a.Expansion) > 0 {
		fmt.Fprintln(w, "expansion:")
		for _, t := range a.Expansion {
			fmt.Fprintf(w, "  %-20s %.2f\n", t.Word, t.Weight)
		}
	}
	return nil
}

func ontologyCommand(c *cli.Context) error {
	format, err := checkFormat(c)
	if err != nil {
		return err
	}
	svc, closeFn, err := openService(c)
	if err != nil {
		return err
	}
	defer closeFn()

	if c.NArg() > 0 {
		view, err := svc.Concept(strings.Join(c.Args().Slice(), " "))
		if err != nil {
			return err
		}
		if format == "json" {
			return writeJSON(c.App.Writer, view)
		}
		writeConcept(c.App.Writer, view.Concept)
		writeRelations(c.App.Writer, view.Outgoing, view.Incoming)
		return nil
	}

	g := svc.Ontology()
	if g == nil {
		return fmt.Errorf("no ontology loaded")
	}
	concepts := g.Concepts()
	if n := c.Int("limit"); n > 0 && n < len(concepts) {
		concepts = concepts[:n]
	}
	if format == "json" {
		if !c.Bool("relations") {
			return writeJSON(c.App.Writer, concepts)
		}
		views := make([]service.ConceptView, 0, len(concepts))
		for _, con := range concepts {
			views = append(views, service.ConceptView{Concept: con, Outgoing: g.Outgoing(con.ID), Incoming: g.Incoming(con.ID)})
		}
		return writeJSON(c.App.Writer, views)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "%s concepts, %s relations\n", humanize.Comma(int64(g.ConceptCount())), humanize.Comma(int64(g.RelationCount())))
	for _, con := range concepts {
		writeConcept(w, con)
		if c.Bool("relations") {
			writeRelations(w, g.Outgoing(con.ID), g.Incoming(con.ID))
		}
	}
	return nil
}

func writeConcept(w io.Writer, con *ontology.Concept) {
	fmt.Fprintf(w, "%s\t%s\t%s\tfrequency %s", con.ID, con.LabelAr, con.LabelEn, humanize.Comma(int64(con.Frequency)))
	if len(con.Synonyms) > 0 {
		fmt.Fprintf(w, "\tsynonyms: %s", strings.Join(con.Synonyms, "، "))
	}
	fmt.Fprintln(w)
}

func writeRelations(w io.Writer, outgoing, incoming []ontology.Relation) {
	for _, r := range outgoing {
		fmt.Fprintf(w, "  -> %s %s\n", r.Verb, r.Object)
	}
	for _, r := range incoming {
		fmt.Fprintf(w, "  <- %s %s\n", r.Subject, r.Verb)
	}
}

func statsCommand(c *cli.Context) error {
	format, err := checkFormat(c)
	if err != nil {
		return err
	}
	svc, closeFn, err := openService(c)
	if err != nil {
		return err
	}
	defer closeFn()

	stats := svc.Stats()
	if format == "json" {
		return writeJSON(c.App.Writer, stats)
	}

	langs := make([]string, 0, len(stats))
	for l := range stats {
		langs = append(langs, l)
	}
	sort.Strings(langs)

	w := c.App.Writer
	for _, l := range langs {
		s := stats[l]
		fmt.Fprintf(w, "[%s]\n", l)
		fmt.Fprintf(w, "  verses:        %s in %s suras\n", humanize.Comma(int64(s.Corpus.TotalVerses)), humanize.Comma(int64(s.Corpus.TotalSuras)))
		fmt.Fprintf(w, "  words:         %s (%s unique)\n", humanize.Comma(int64(s.Corpus.TotalWords)), humanize.Comma(int64(s.Corpus.UniqueWords)))
		fmt.Fprintf(w, "  characters:    %s\n", humanize.Comma(int64(s.Corpus.TotalChars)))
		fmt.Fprintf(w, "  index terms:   %s\n", humanize.Comma(int64(s.IndexTerms)))
		fmt.Fprintf(w, "  postings:      %s\n", humanize.Comma(int64(s.IndexPostings)))
		if s.MorphologyRows > 0 {
			fmt.Fprintf(w, "  morphology:    %s rows, %s roots, %s lemmas\n",
				humanize.Comma(int64(s.MorphologyRows)), humanize.Comma(int64(s.Roots)), humanize.Comma(int64(s.Lemmas)))
		}
		if s.Concepts > 0 {
			fmt.Fprintf(w, "  ontology:      %s concepts, %s relations\n", humanize.Comma(int64(s.Concepts)), humanize.Comma(int64(s.Relations)))
		}
	}
	return nil
}

type batchResult struct {
	resp *results.Response
	err  error
}

func batchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("batch takes exactly one file")
	}
	format, err := checkFormat(c)
	if err != nil {
		return err
	}
	workers := c.Int("workers")
	if workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}
	queries, err := readQueries(c.Args().First())
	if err != nil {
		return err
	}
	svc, closeFn, err := openService(c)
	if err != nil {
		return err
	}
	defer closeFn()

	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	start := time.Now()
	out := make([]batchResult, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			resp, err := svc.Search(c.Context, q, c.String("lang"), c.Int("limit"))
			out[i] = batchResult{resp: resp, err: err}
		})
		if err != nil {
			wg.Done()
			out[i] = batchResult{err: err}
		}
	}
	wg.Wait()
	slog.Info("batch finished", "queries", len(queries), "workers", workers, "elapsed", time.Since(start).Round(time.Millisecond))

	w := c.App.Writer
	failed := 0
	for i, r := range out {
		if r.err != nil {
			failed++
			fmt.Fprintf(c.App.ErrWriter, "query %d %q: %v\n", i+1, queries[i], r.err)
			continue
		}
		if err := writeResponse(w, format, r.resp); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed", failed, len(queries))
	}
	return nil
}

func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening query file: %w", err)
	}
	defer f.Close()

	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if q := strings.TrimSpace(scanner.Text()); q != "" {
			queries = append(queries, q)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	return queries, nil
}

func importCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	table := c.String("table")
	if table == "" {
		table = cfg.Data.PostgresTable
	}
	path := cfg.Data.Path(cfg.Data.QuranFile)
	verses, err := corpus.LoadFile(path)
	if err != nil {
		return err
	}

	pg, err := connectPostgres(c.Context, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()

	err = pg.InTx(c.Context, func(tx *sql.Tx) error {
		return corpus.WritePostgres(c.Context, tx, table, verses)
	})
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}
	fmt.Fprintf(c.App.Writer, "imported %s verses into %s\n", humanize.Comma(int64(verses.Len())), table)
	return nil
}

func writeResponse(w io.Writer, format string, resp *results.Response) error {
	if format == "json" {
		return writeJSON(w, resp)
	}
	header := fmt.Sprintf("%q (%s): %s hits", resp.Query, resp.Language, humanize.Comma(int64(resp.TotalHits)))
	if resp.QuestionType != "" {
		header += ", question type " + resp.QuestionType
	}
	fmt.Fprintln(w, header)
	for _, r := range resp.Results {
		fmt.Fprintf(w, "[%s] (%.3f) %s\n", r.Reference, r.Score, r.Text)
		if len(r.Highlights) > 0 {
			fmt.Fprintf(w, "    matched: %s\n", strings.Join(r.Highlights, ", "))
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
