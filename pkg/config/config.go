// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Data, Search, Expansion, Cache, Redis, Postgres, Kafka, etc.).
package config

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Search    SearchConfig    `yaml:"search"`
	Expansion ExpansionConfig `yaml:"expansion"`
	Cache     CacheConfig     `yaml:"cache"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	CORSOrigins     []string      `yaml:"corsOrigins"`
}

// DataConfig names the static resource files the engines are built from.
// Empty file names disable the optional resources (English text,
// morphology, ontology, stopword files).
type DataConfig struct {
	Dir              string `yaml:"dir"`
	QuranFile        string `yaml:"quranFile"`
	EnglishFile      string `yaml:"englishFile"`
	ArabicStopwords  string `yaml:"arabicStopwords"`
	EnglishStopwords string `yaml:"englishStopwords"`
	MorphologyFile   string `yaml:"morphologyFile"`
	OntologyFile     string `yaml:"ontologyFile"`
	CorpusSource     string `yaml:"corpusSource"`
	PostgresTable    string `yaml:"postgresTable"`
}

// Path resolves a configured file name against the data directory. Empty
// names stay empty.
func (d DataConfig) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.Dir, name)
}

// SearchConfig controls query defaults and limits.
type SearchConfig struct {
	DefaultLanguage string   `yaml:"defaultLanguage"`
	Languages       []string `yaml:"languages"`
	DefaultLimit    int      `yaml:"defaultLimit"`
	MaxResults      int      `yaml:"maxResults"`
	AnswerLimit     int      `yaml:"answerLimit"`
}

// ExpansionConfig tunes the Arabic query-expansion pipeline.
type ExpansionConfig struct {
	ExactWeight         float64  `yaml:"exactWeight"`
	LemmaWeight         float64  `yaml:"lemmaWeight"`
	RootWeight          float64  `yaml:"rootWeight"`
	OntologyWeight      float64  `yaml:"ontologyWeight"`
	FuzzyWeight         float64  `yaml:"fuzzyWeight"`
	Prefixes            []string `yaml:"prefixes"`
	MinStemLength       int      `yaml:"minStemLength"`
	StemSuffixes        bool     `yaml:"stemSuffixes"`
	FuzzyLongWordLength int      `yaml:"fuzzyLongWordLength"`
	FuzzyLongDistance   int      `yaml:"fuzzyLongDistance"`
	FuzzyShortDistance  int      `yaml:"fuzzyShortDistance"`
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	MemoryMaxCost int64         `yaml:"memoryMaxCost"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	SearchEvents string `yaml:"searchEvents"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"poolSize"`
}

// AnalyticsConfig sizes the event pipeline. Source "local" aggregates this
// process's events; "kafka" aggregates the shared topic so every replica
// reports the same figures. A positive SnapshotInterval saves the stats to
// Postgres periodically.
type AnalyticsConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Source           string        `yaml:"source"`
	BufferSize       int           `yaml:"bufferSize"`
	BatchSize        int           `yaml:"batchSize"`
	FlushInterval    time.Duration `yaml:"flushInterval"`
	TopN             int           `yaml:"topN"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
}

// RateLimitConfig is a per-client token bucket. Clients are keyed by the
// connection's remote IP. X-Forwarded-For is only read when that IP falls in
// TrustedProxies (CIDRs or bare addresses).
type RateLimitConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Requests       int           `yaml:"requests"`
	Window         time.Duration `yaml:"window"`
	TrustedProxies []string      `yaml:"trustedProxies"`
}

// TrustedPrefixes parses TrustedProxies. A bare address becomes a single
// host prefix.
func (r RateLimitConfig) TrustedPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(r.TrustedProxies))
	for _, s := range r.TrustedProxies {
		s = strings.TrimSpace(s)
		if strings.Contains(s, "/") {
			p, err := netip.ParsePrefix(s)
			if err != nil {
				return nil, fmt.Errorf("rateLimit.trustedProxies: %w", err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("rateLimit.trustedProxies: %w", err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return prefixes, nil
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig toggles slog span logging around request stages.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration with environment overrides
// applied.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

func (c *Config) validate() error {
	if c.Search.DefaultLimit <= 0 {
		return fmt.Errorf("search.defaultLimit must be positive, got %d", c.Search.DefaultLimit)
	}
	if c.Search.MaxResults < c.Search.DefaultLimit {
		return fmt.Errorf("search.maxResults (%d) must be >= search.defaultLimit (%d)", c.Search.MaxResults, c.Search.DefaultLimit)
	}
	switch c.Data.CorpusSource {
	case "file", "postgres":
	default:
		return fmt.Errorf("data.corpusSource must be file or postgres, got %q", c.Data.CorpusSource)
	}
	switch c.Cache.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("cache.backend must be redis or memory, got %q", c.Cache.Backend)
	}
	switch c.Analytics.Source {
	case "local":
	case "kafka":
		if !c.Kafka.Enabled {
			return fmt.Errorf("analytics.source kafka requires kafka.enabled")
		}
	default:
		return fmt.Errorf("analytics.source must be local or kafka, got %q", c.Analytics.Source)
	}
	if _, err := c.RateLimit.TrustedPrefixes(); err != nil {
		return err
	}
	for _, w := range []float64{c.Expansion.ExactWeight, c.Expansion.LemmaWeight, c.Expansion.RootWeight, c.Expansion.OntologyWeight, c.Expansion.FuzzyWeight} {
		if w <= 0 || w > 1 {
			return fmt.Errorf("expansion weights must be in (0,1], got %v", w)
		}
	}
	return nil
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Data: DataConfig{
			Dir:              "data",
			QuranFile:        "quran-simple-clean.txt",
			EnglishFile:      "en.sahih",
			ArabicStopwords:  "quran-stop-words.strict.l1.ar",
			EnglishStopwords: "english-stop-words.en",
			MorphologyFile:   "quranic-corpus-morphology-0.4.txt",
			OntologyFile:     "qa.ontology.v1.owl",
			CorpusSource:     "file",
			PostgresTable:    "verses",
		},
		Search: SearchConfig{
			DefaultLanguage: "auto",
			Languages:       []string{"ar", "en"},
			DefaultLimit:    10,
			MaxResults:      100,
			AnswerLimit:     3,
		},
		Expansion: ExpansionConfig{
			ExactWeight:    1.0,
			LemmaWeight:    0.8,
			RootWeight:     0.7,
			OntologyWeight: 0.5,
			FuzzyWeight:    0.4,
			Prefixes: []string{
				"", "و", "ف", "ب", "ل", "ك", "ال", "لل",
				"وال", "فال", "بال", "كال", "ولل", "فلل", "وبال", "فبال",
			},
			MinStemLength:       3,
			FuzzyLongWordLength: 4,
			FuzzyLongDistance:   2,
			FuzzyShortDistance:  1,
		},
		Cache: CacheConfig{
			Enabled:       true,
			Backend:       "memory",
			TTL:           5 * time.Minute,
			MemoryMaxCost: 64 << 20,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "quran",
			User:            "quran",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Enabled:       false,
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "quran-search-analytics",
			Topics: KafkaTopics{
				SearchEvents: "quran-search-events",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
		},
		Analytics: AnalyticsConfig{
			Enabled:       true,
			Source:        "local",
			BufferSize:    1024,
			BatchSize:     100,
			FlushInterval: 2 * time.Second,
			TopN:          10,
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 120,
			Window:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled: false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads QS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("QS_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("QS_DATA_CORPUS_SOURCE"); v != "" {
		cfg.Data.CorpusSource = v
	}
	if v := os.Getenv("QS_SEARCH_DEFAULT_LANGUAGE"); v != "" {
		cfg.Search.DefaultLanguage = v
	}
	if v := os.Getenv("QS_SEARCH_DEFAULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.DefaultLimit = n
		}
	}
	if v := os.Getenv("QS_CACHE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Cache.Enabled = b
		}
	}
	if v := os.Getenv("QS_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("QS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("QS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("QS_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("QS_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("QS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("QS_KAFKA_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = b
		}
	}
	if v := os.Getenv("QS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("QS_ANALYTICS_SOURCE"); v != "" {
		cfg.Analytics.Source = v
	}
	if v := os.Getenv("QS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("QS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("QS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("QS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
