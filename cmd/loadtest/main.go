// Command loadtest drives concurrent search and answer requests against a
// running searcher and reports throughput, cache hits and latency
// percentiles.
//
// Usage:
//
//	go run ./cmd/loadtest [-url http://localhost:8080] [-concurrency 10] [-duration 30s] [-queries FILE] [-answers 0.2]
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

var defaultQueries = []string{
	"الرحمن الرحيم",
	"الصراط المستقيم",
	"يوم الدين",
	"الحمد لله",
	"كتب",
	"رحمة",
	"انسان",
	"الصلاه",
	"الجنه",
	"mercy",
	"straight path",
	"Day of Recompense",
	"Lord of the worlds",
}

var defaultQuestions = []string{
	"من هو الرحمن؟",
	"متى يوم الدين",
	"كم سماء",
	"Who is the Lord of the worlds?",
	"When is the Day of Recompense?",
}

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Queries     []string
	Questions   []string
	// AnswerRatio is the share of requests sent to /api/v1/answer.
	AnswerRatio float64
}

type Stats struct {
	totalRequests atomic.Int64
	successCount  atomic.Int64
	errorCount    atomic.Int64
	cacheHits     atomic.Int64
	zeroHits      atomic.Int64
	latencies     []time.Duration
	latenciesMu   sync.Mutex
	statusCodes   map[int]*atomic.Int64
	statusCodesMu sync.Mutex
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]*atomic.Int64),
	}
}

// searchResponse is the part of the API response the report needs.
type searchResponse struct {
	TotalHits int  `json:"total_hits"`
	Cached    bool `json:"cached"`
}

func (s *Stats) RecordRequest(duration time.Duration, statusCode int, body searchResponse, err error) {
	s.totalRequests.Add(1)

	if err != nil {
		s.errorCount.Add(1)
		return
	}

	if statusCode >= 200 && statusCode < 300 {
		s.successCount.Add(1)
		if body.Cached {
			s.cacheHits.Add(1)
		}
		if body.TotalHits == 0 {
			s.zeroHits.Add(1)
		}
	} else {
		s.errorCount.Add(1)
	}

	s.latenciesMu.Lock()
	s.latencies = append(s.latencies, duration)
	s.latenciesMu.Unlock()

	s.statusCodesMu.Lock()
	if _, ok := s.statusCodes[statusCode]; !ok {
		s.statusCodes[statusCode] = &atomic.Int64{}
	}
	s.statusCodes[statusCode].Add(1)
	s.statusCodesMu.Unlock()
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	queryFile := flag.String("queries", "", "file with one search query per line (built-in Arabic and English queries when empty)")
	answerRatio := flag.Float64("answers", 0.2, "share of requests sent to the answer endpoint, 0 to 1")
	flag.Parse()

	queries := defaultQueries
	if *queryFile != "" {
		var err error
		queries, err = readLines(*queryFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading queries: %v\n", err)
			os.Exit(1)
		}
		if len(queries) == 0 {
			fmt.Fprintf(os.Stderr, "no queries in %s\n", *queryFile)
			os.Exit(1)
		}
	}

	cfg := Config{
		BaseURL:     strings.TrimRight(*baseURL, "/"),
		Concurrency: *concurrency,
		Duration:    *duration,
		Queries:     queries,
		Questions:   defaultQuestions,
		AnswerRatio: min(max(*answerRatio, 0), 1),
	}

	fmt.Println("=== Quran Search Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Queries:     %d unique, %.0f%% answers\n", len(cfg.Queries), cfg.AnswerRatio*100)
	fmt.Println()

	stats := runLoadTest(cfg, os.Stdout)
	if !printReport(os.Stdout, stats, cfg.Duration) {
		os.Exit(1)
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// requestURL picks the endpoint for the n-th request of a worker. Answer
// requests are spread evenly at AnswerRatio.
func requestURL(cfg Config, n int) string {
	every := 0
	if cfg.AnswerRatio > 0 && len(cfg.Questions) > 0 {
		every = int(math.Round(1 / cfg.AnswerRatio))
	}
	if every > 0 && n%every == every-1 {
		q := cfg.Questions[(n/every)%len(cfg.Questions)]
		return fmt.Sprintf("%s/api/v1/answer?q=%s", cfg.BaseURL, url.QueryEscape(q))
	}
	q := cfg.Queries[n%len(cfg.Queries)]
	return fmt.Sprintf("%s/api/v1/search?q=%s&limit=10", cfg.BaseURL, url.QueryEscape(q))
}

func runLoadTest(cfg Config, progress io.Writer) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	fmt.Fprint(progress, "Running")

	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			n := workerID

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				target := requestURL(cfg, n)
				n++

				req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
				if err != nil {
					stats.RecordRequest(0, 0, searchResponse{}, err)
					continue
				}
				start := time.Now()
				resp, err := client.Do(req)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					stats.RecordRequest(time.Since(start), 0, searchResponse{}, err)
					continue
				}
				var body searchResponse
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && ctx.Err() != nil {
					resp.Body.Close()
					return
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()

				stats.RecordRequest(time.Since(start), resp.StatusCode, body, nil)
			}
		}(w)
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Fprint(progress, ".")
			}
		}
	}()

	wg.Wait()
	fmt.Fprintln(progress, " done!")
	fmt.Fprintln(progress)
	return stats
}

// printReport writes the summary and reports whether any request completed.
func printReport(w io.Writer, stats *Stats, duration time.Duration) bool {
	total := stats.totalRequests.Load()
	success := stats.successCount.Load()
	errors := stats.errorCount.Load()

	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Total Requests:  %s\n", humanize.Comma(total))
	fmt.Fprintf(w, "Successful:      %s\n", humanize.Comma(success))
	fmt.Fprintf(w, "Errors:          %s\n", humanize.Comma(errors))
	if total > 0 {
		fmt.Fprintf(w, "Error Rate:      %.2f%%\n", float64(errors)/float64(total)*100)
		fmt.Fprintf(w, "Requests/sec:    %.2f\n", float64(total)/duration.Seconds())
	}
	if success > 0 {
		fmt.Fprintf(w, "Cache Hit Rate:  %.2f%%\n", float64(stats.cacheHits.Load())/float64(success)*100)
		fmt.Fprintf(w, "Zero Results:    %s\n", humanize.Comma(stats.zeroHits.Load()))
	}

	stats.latenciesMu.Lock()
	latencies := make([]time.Duration, len(stats.latencies))
	copy(latencies, stats.latencies)
	stats.latenciesMu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool {
			return latencies[i] < latencies[j]
		})

		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))

		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Latency ===")
		fmt.Fprintf(w, "Min:    %s\n", latencies[0])
		fmt.Fprintf(w, "Avg:    %s\n", avg)
		fmt.Fprintf(w, "P50:    %s\n", percentile(latencies, 50))
		fmt.Fprintf(w, "P90:    %s\n", percentile(latencies, 90))
		fmt.Fprintf(w, "P95:    %s\n", percentile(latencies, 95))
		fmt.Fprintf(w, "P99:    %s\n", percentile(latencies, 99))
		fmt.Fprintf(w, "Max:    %s\n", latencies[len(latencies)-1])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Status Codes ===")
	stats.statusCodesMu.Lock()
	codes := make([]int, 0, len(stats.statusCodes))
	for code := range stats.statusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %d: %s\n", code, humanize.Comma(stats.statusCodes[code].Load()))
	}
	stats.statusCodesMu.Unlock()

	if total == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "WARNING: No requests completed. Is the service running?")
		return false
	}
	return true
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
