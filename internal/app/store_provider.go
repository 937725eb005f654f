package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/articlerec/internal/config"
	"github.com/yungbote/articlerec/internal/data/graph"
	"github.com/yungbote/articlerec/internal/embedding"
	"github.com/yungbote/articlerec/internal/observability"
	"github.com/yungbote/articlerec/internal/platform/logger"
	"github.com/yungbote/articlerec/internal/platform/neo4jdb"
	"github.com/yungbote/articlerec/internal/store"
)

type StoreProvider string

const (
	StoreProviderNeo4j  StoreProvider = "neo4j"
	StoreProviderMemory StoreProvider = "memory"
)

type StoreProviderConfigErrorCode string

const (
	StoreProviderConfigErrorInvalidBackend  StoreProviderConfigErrorCode = "invalid_store_backend"
	StoreProviderConfigErrorMissingURI      StoreProviderConfigErrorCode = "missing_neo4j_uri"
	StoreProviderConfigErrorMissingFixture  StoreProviderConfigErrorCode = "missing_fixture_path"
	StoreProviderConfigErrorFixtureLoad     StoreProviderConfigErrorCode = "fixture_load_failed"
	StoreProviderConfigErrorNeo4jConnection StoreProviderConfigErrorCode = "neo4j_connect_failed"
)

type StoreProviderConfigError struct {
	Code     StoreProviderConfigErrorCode
	Provider StoreProvider
	Cause    error
}

func (e *StoreProviderConfigError) Error() string {
	if e == nil {
		return "invalid store provider config"
	}
	return fmt.Sprintf("invalid store provider config (code=%s provider=%q): %v", e.Code, e.Provider, e.Cause)
}

func (e *StoreProviderConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// storeBackend is a Store that can also bulk-read work embeddings.
type storeBackend interface {
	store.Store
	embedding.Source
}

// Storage is the resolved graph backend plus whatever must be closed with it.
type Storage struct {
	Provider StoreProvider
	Store    storeBackend
	// Breaker is nil for backends without a circuit breaker.
	Breaker interface{ BreakerState() string }
	client  *neo4jdb.Client
}

func (s *Storage) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close(ctx)
}

func resolveStoreProvider(cfg config.StoreConfig, neo config.Neo4jConfig) (StoreProvider, error) {
	switch p := StoreProvider(strings.ToLower(strings.TrimSpace(cfg.Backend))); p {
	case "", StoreProviderNeo4j:
		if strings.TrimSpace(neo.URI) == "" {
			return "", &StoreProviderConfigError{
				Code:     StoreProviderConfigErrorMissingURI,
				Provider: StoreProviderNeo4j,
				Cause:    errors.New("neo4j.uri is empty"),
			}
		}
		return StoreProviderNeo4j, nil
	case StoreProviderMemory:
		if strings.TrimSpace(cfg.FixturePath) == "" {
			return "", &StoreProviderConfigError{
				Code:     StoreProviderConfigErrorMissingFixture,
				Provider: StoreProviderMemory,
				Cause:    errors.New("store.fixture_path is empty"),
			}
		}
		return StoreProviderMemory, nil
	default:
		return "", &StoreProviderConfigError{
			Code:     StoreProviderConfigErrorInvalidBackend,
			Provider: p,
			Cause:    fmt.Errorf("unsupported store backend %q", cfg.Backend),
		}
	}
}

func wireStorage(cfg *config.Config, log *logger.Logger, metrics *observability.Metrics) (*Storage, error) {
	provider, err := resolveStoreProvider(cfg.Store, cfg.Neo4j)
	if err != nil {
		return nil, err
	}
	log.Info("Wiring store...", "provider", string(provider))

	switch provider {
	case StoreProviderMemory:
		mem, err := store.LoadFixture(cfg.Store.FixturePath)
		if err != nil {
			return nil, &StoreProviderConfigError{Code: StoreProviderConfigErrorFixtureLoad, Provider: provider, Cause: err}
		}
		return &Storage{Provider: provider, Store: mem}, nil
	default:
		client, err := neo4jdb.New(cfg.Neo4j, log)
		if err != nil {
			return nil, &StoreProviderConfigError{Code: StoreProviderConfigErrorNeo4jConnection, Provider: provider, Cause: err}
		}
		gs, err := graph.New(client, cfg.Neo4j, log, metrics)
		if err != nil {
			_ = client.Close(context.Background())
			return nil, err
		}
		return &Storage{Provider: provider, Store: gs, Breaker: gs, client: client}, nil
	}
}
