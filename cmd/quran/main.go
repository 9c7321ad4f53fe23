// Command quran searches the Quran from the terminal.
//
// It loads the same resources as the search service, builds the indexes in
// process and runs one command against them:
//
//	quran search "الرحمن الرحيم"
//	quran answer "من هو الرحمن؟"
//	quran analyze كتب
//	quran ontology --relations
//	quran stats
//	quran batch queries.txt --workers 8
//	quran import
//
// Logs go to stderr so results on stdout can be piped.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/logger"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "quran",
		Usage:     "Arabic and English Quran search with morphology-aware query expansion",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file; defaults and QS_* variables apply without one",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory holding the corpus, morphology, ontology and stopword files",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search verses, expanding Arabic queries through lemma, root, ontology and fuzzy matches",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					langFlag(),
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of verses", Value: 10},
					formatFlag(),
				},
			},
			{
				Name:      "answer",
				Usage:     "Answer a who/what/how many/when question with the best matching verses",
				ArgsUsage: "QUESTION",
				Action:    answerCommand,
				Flags: []cli.Flag{
					langFlag(),
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of answers", Value: 3},
					formatFlag(),
				},
			},
			{
				Name:      "analyze",
				Usage:     "Show frequency, morphology, ontology and expansion for one word",
				ArgsUsage: "WORD",
				Action:    analyzeCommand,
				Flags:     []cli.Flag{langFlag(), formatFlag()},
			},
			{
				Name:      "ontology",
				Usage:     "List ontology concepts, or show one concept with its relations",
				ArgsUsage: "[CONCEPT]",
				Action:    ontologyCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "relations", Aliases: []string{"r"}, Usage: "Include each concept's relations"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of concepts to list (0 lists all)", Value: 20},
					formatFlag(),
				},
			},
			{
				Name:   "stats",
				Usage:  "Print corpus and index statistics per language",
				Action: statsCommand,
				Flags:  []cli.Flag{formatFlag()},
			},
			{
				Name:      "batch",
				Usage:     "Run one search per line of FILE concurrently and print the results in input order",
				ArgsUsage: "FILE",
				Action:    batchCommand,
				Flags: []cli.Flag{
					langFlag(),
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of verses per query", Value: 10},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Number of concurrent queries", Value: 4},
					formatFlag(),
				},
			},
			{
				Name:   "import",
				Usage:  "Load the Quran text file into the PostgreSQL verses table",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "table", Usage: "Target table (defaults to data.postgresTable)"},
				},
			},
		},
	}
}

func langFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "lang",
		Usage: "Query language (auto, ar, en)",
		Value: "auto",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (text, json)",
		Value:   "text",
	}
}

func setupLogger(c *cli.Context) error {
	level := strings.ToLower(c.String("log-level"))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
	}
	logger.SetupWriter(c.App.ErrWriter, level, "text")
	return nil
}
