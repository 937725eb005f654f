package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sony/gobreaker/v2"

	"github.com/yungbote/articlerec/internal/config"
	"github.com/yungbote/articlerec/internal/observability"
	"github.com/yungbote/articlerec/internal/platform/logger"
	"github.com/yungbote/articlerec/internal/platform/neo4jdb"
	"github.com/yungbote/articlerec/internal/store"
)

const breakerName = "neo4j-reads"

// Store reads the article graph from Neo4j. Every call runs in its own read
// transaction bounded by the configured query timeout and passes through a
// circuit breaker. Connectivity, timeout and breaker failures surface as
// *store.UnavailableError.
type Store struct {
	client  *neo4jdb.Client
	log     *logger.Logger
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[[]*neo4j.Record]
	metrics *observability.Metrics
}

func New(client *neo4jdb.Client, cfg config.Neo4jConfig, log *logger.Logger, metrics *observability.Metrics) (*Store, error) {
	if client == nil || client.Driver == nil {
		return nil, fmt.Errorf("graph store: neo4j client required")
	}
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("component", "GraphStore")

	timeout := cfg.QueryTimeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	trips := cfg.BreakerTrips
	if trips == 0 {
		trips = 5
	}
	openFor := cfg.BreakerTimeout.Duration
	if openFor <= 0 {
		openFor = 30 * time.Second
	}

	metrics.SetBreakerState(breakerName, int(gobreaker.StateClosed))
	cb := gobreaker.NewCircuitBreaker[[]*neo4j.Record](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= trips
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.SetBreakerState(name, int(to))
		},
		// Query errors are the caller's problem; only availability failures count.
		IsSuccessful: func(err error) bool {
			return err == nil || !isUnavailable(err)
		},
	})

	return &Store{client: client, log: log, timeout: timeout, cb: cb, metrics: metrics}, nil
}

// read runs cypher in a managed read transaction and collects every record.
func (s *Store) read(ctx context.Context, op, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Unavailable(op, err)
	}
	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	records, err := s.cb.Execute(func() ([]*neo4j.Record, error) {
		session := s.client.ReadSession(qctx)
		defer session.Close(qctx)

		out, err := session.ExecuteRead(qctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(qctx, cypher, params)
			if err != nil {
				return nil, err
			}
			return res.Collect(qctx)
		})
		if err != nil {
			return nil, err
		}
		recs, _ := out.([]*neo4j.Record)
		return recs, nil
	})
	s.metrics.ObserveStoreCall(op, time.Since(start), err)
	if err != nil {
		if isUnavailable(err) {
			s.log.Warn("graph read unavailable", "op", op, "error", err)
			return nil, store.Unavailable(op, err)
		}
		return nil, fmt.Errorf("graph %s: %w", op, err)
	}
	return records, nil
}

// isUnavailable reports whether err means the graph could not answer, as
// opposed to the query itself being wrong.
func isUnavailable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return true
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return true
	case neo4j.IsConnectivityError(err), neo4j.IsTransactionExecutionLimit(err), neo4j.IsRetryable(err):
		return true
	default:
		return false
	}
}

// BreakerState exposes the current breaker state for health reporting.
func (s *Store) BreakerState() string {
	return s.cb.State().String()
}

var (
	_ store.Store = (*Store)(nil)
)
