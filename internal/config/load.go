package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/articlerec/internal/platform/envutil"
)

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	s := strings.TrimSpace(node.Value)
	if s == "" || s == "null" || s == "~" {
		d.Duration = 0
		return nil
	}
	if dd, err := time.ParseDuration(s); err == nil {
		d.Duration = dd
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a string like \"5s\" or integer seconds: %q", s)
	}
	d.Duration = time.Duration(n) * time.Second
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

func Default() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":5050",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			RequestTimeout:    Duration{Duration: 30 * time.Second},
			AllowOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
			},
		},
		Neo4j: Neo4jConfig{
			URI:            "bolt://localhost:7687",
			User:           "neo4j",
			MaxPoolSize:    50,
			ConnTimeout:    Duration{Duration: 10 * time.Second},
			QueryTimeout:   Duration{Duration: 10 * time.Second},
			BreakerTrips:   5,
			BreakerTimeout: Duration{Duration: 30 * time.Second},
		},
		Redis: RedisConfig{
			PoolKey: "articlerec:work_pool:v1",
			PoolTTL: Duration{Duration: 10 * time.Minute},
		},
		Store: StoreConfig{Backend: "neo4j"},
		Scoring: ScoringConfig{
			ContentWeight:      0.6,
			OntologyWeight:     0.4,
			TopN:               10,
			PrimaryDomain:      "Artificial Intelligence",
			PrimaryDomainBoost: 1.1,
			CollaborativeScore: 0.8,
			MaxPeers:           5,
		},
		Content: ContentConfig{
			Workers:      runtime.GOMAXPROCS(0),
			EmbeddingDim: 768,
		},
		Defaults: DefaultsConfig{Topic: "Neural Networks"},
		Otel: OtelConfig{
			ServiceName: "articlerec",
			SampleRatio: 0.1,
		},
	}
}

// Load reads the YAML file named by ARTICLEREC_CONFIG_PATH (or ./config/config.yaml
// when present), applies environment overrides and validates the result.
func Load() (*Config, error) {
	return LoadPath(os.Getenv("ARTICLEREC_CONFIG_PATH"))
}

// LoadPath is Load with an explicit file; an empty path falls back to
// ./config/config.yaml when present.
func LoadPath(cfgPath string) (*Config, error) {
	cfg := Default()

	cfgPath = strings.TrimSpace(cfgPath)
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		if err := LoadFile(cfgPath, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes a YAML file over cfg; keys absent from the file keep their values.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.LogLevel = envutil.String("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.RequestTimeout.Duration = envutil.Duration("HTTP_REQUEST_TIMEOUT", cfg.HTTP.RequestTimeout.Duration)

	cfg.Neo4j.URI = envutil.String("NEO4J_URI", cfg.Neo4j.URI)
	cfg.Neo4j.User = envutil.String("NEO4J_USER", cfg.Neo4j.User)
	cfg.Neo4j.Password = envutil.String("NEO4J_PASSWORD", cfg.Neo4j.Password)
	cfg.Neo4j.Database = envutil.String("NEO4J_DATABASE", cfg.Neo4j.Database)
	cfg.Neo4j.MaxPoolSize = envutil.Int("NEO4J_MAX_POOL_SIZE", cfg.Neo4j.MaxPoolSize)
	cfg.Neo4j.QueryTimeout.Duration = envutil.Duration("NEO4J_TIMEOUT_SECONDS", cfg.Neo4j.QueryTimeout.Duration)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)

	cfg.Store.Backend = envutil.String("STORE_BACKEND", cfg.Store.Backend)
	cfg.Store.FixturePath = envutil.String("STORE_FIXTURE_PATH", cfg.Store.FixturePath)

	cfg.Scoring.ContentWeight = envutil.Float("CONTENT_WEIGHT", cfg.Scoring.ContentWeight)
	cfg.Scoring.OntologyWeight = envutil.Float("ONTOLOGY_WEIGHT", cfg.Scoring.OntologyWeight)
	cfg.Scoring.TopN = envutil.Int("DEFAULT_RECOMMENDATIONS", cfg.Scoring.TopN)

	cfg.Content.Workers = envutil.Int("CONTENT_WORKERS", cfg.Content.Workers)
	cfg.Content.DegradeOnVectorError = envutil.Bool("CONTENT_DEGRADE_ON_VECTOR_ERROR", cfg.Content.DegradeOnVectorError)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Otel.SampleRatio)
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Env) == "" {
		c.Env = "development"
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		c.HTTP.Addr = ":5050"
	}

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case "", "neo4j":
		c.Store.Backend = "neo4j"
		if strings.TrimSpace(c.Neo4j.URI) == "" {
			return errors.New("neo4j.uri is required for the neo4j store backend")
		}
	case "memory":
		if strings.TrimSpace(c.Store.FixturePath) == "" {
			return errors.New("store.fixture_path is required for the memory store backend")
		}
	default:
		return fmt.Errorf("invalid store.backend=%q", c.Store.Backend)
	}

	if c.Neo4j.MaxPoolSize <= 0 {
		c.Neo4j.MaxPoolSize = 50
	}
	if c.Neo4j.QueryTimeout.Duration <= 0 {
		c.Neo4j.QueryTimeout.Duration = 10 * time.Second
	}
	if c.Neo4j.ConnTimeout.Duration <= 0 {
		c.Neo4j.ConnTimeout.Duration = 10 * time.Second
	}

	s := &c.Scoring
	if s.ContentWeight < 0 || s.OntologyWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative (content=%v ontology=%v)", s.ContentWeight, s.OntologyWeight)
	}
	if s.ContentWeight == 0 && s.OntologyWeight == 0 {
		return errors.New("scoring weights cannot both be zero")
	}
	if s.TopN <= 0 {
		s.TopN = 10
	}
	if s.PrimaryDomainBoost <= 0 {
		s.PrimaryDomainBoost = 1
	}
	if s.CollaborativeScore <= 0 {
		s.CollaborativeScore = 0.8
	}
	if s.CitationBoost < 0 {
		return fmt.Errorf("invalid scoring.citation_boost=%v", s.CitationBoost)
	}
	if s.MaxPeers <= 0 {
		s.MaxPeers = 5
	}

	if c.Content.Workers <= 0 {
		c.Content.Workers = 1
	}
	if c.Content.EmbeddingDim <= 0 {
		c.Content.EmbeddingDim = 768
	}
	if strings.TrimSpace(c.Defaults.Topic) == "" {
		c.Defaults.Topic = "Neural Networks"
	}
	if c.Otel.SampleRatio < 0 {
		c.Otel.SampleRatio = 0
	}
	if c.Otel.SampleRatio > 1 {
		c.Otel.SampleRatio = 1
	}
	return nil
}
