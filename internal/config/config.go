package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	// RequestTimeout bounds one search/recommend call end to end.
	RequestTimeout Duration `yaml:"request_timeout"`
	AllowOrigins   []string `yaml:"allow_origins"`
}

type Neo4jConfig struct {
	URI          string   `yaml:"uri"`
	User         string   `yaml:"user"`
	Password     string   `yaml:"password"`
	Database     string   `yaml:"database"`
	MaxPoolSize  int      `yaml:"max_pool_size"`
	ConnTimeout  Duration `yaml:"connect_timeout"`
	QueryTimeout Duration `yaml:"query_timeout"`

	// Circuit breaker around store reads. Zero trips disables it.
	BreakerTrips   uint32   `yaml:"breaker_trips"`
	BreakerTimeout Duration `yaml:"breaker_timeout"`
}

type RedisConfig struct {
	// Addr enables the embedding pool cache when set.
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	PoolKey  string   `yaml:"pool_key"`
	PoolTTL  Duration `yaml:"pool_ttl"`
}

type StoreConfig struct {
	// Backend is "neo4j" or "memory".
	Backend     string `yaml:"backend"`
	FixturePath string `yaml:"fixture_path"`
}

type ScoringConfig struct {
	ContentWeight      float64 `yaml:"content_weight"`
	OntologyWeight     float64 `yaml:"ontology_weight"`
	TopN               int     `yaml:"top_n"`
	PrimaryDomain      string  `yaml:"primary_domain"`
	PrimaryDomainBoost float64 `yaml:"primary_domain_boost"`
	CollaborativeScore float64 `yaml:"collaborative_score"`
	CitationBoost      float64 `yaml:"citation_boost"`
	MaxPeers           int     `yaml:"max_peers"`
}

type ContentConfig struct {
	Workers      int `yaml:"workers"`
	EmbeddingDim int `yaml:"embedding_dim"`
	// A zero-norm query vector always empties the content signal only.
	// DegradeOnVectorError does the same for a dimension mismatch, which is
	// otherwise a failed request.
	DegradeOnVectorError bool `yaml:"degrade_on_vector_error"`
}

type DefaultsConfig struct {
	Topic string `yaml:"topic"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	Env      string         `yaml:"env"`
	LogLevel string         `yaml:"log_level"`
	HTTP     HTTPConfig     `yaml:"http"`
	Neo4j    Neo4jConfig    `yaml:"neo4j"`
	Redis    RedisConfig    `yaml:"redis"`
	Store    StoreConfig    `yaml:"store"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Content  ContentConfig  `yaml:"content"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Otel     OtelConfig     `yaml:"otel"`
}
