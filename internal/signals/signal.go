// Package signals implements the four independent candidate producers. Each
// call to Candidates re-queries the store; nothing is memoized between calls.
package signals

import (
	"context"
	"errors"
	"strings"

	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/platform/logger"
)

// Query is one request as seen by every signal. Fields a signal does not use are ignored.
type Query struct {
	Topic       string
	SearchQuery string
	UserID      string
}

// Signal produces candidate records for a query, each tagged with Name.
type Signal interface {
	Name() string
	Candidates(ctx context.Context, q Query) ([]domain.CandidateRecord, error)
}

// degraded wraps a signal so that the listed data-quality errors yield no
// candidates instead of failing the request. Store errors still propagate.
type degraded struct {
	Signal
	log     *logger.Logger
	targets []error
}

// DegradeOn wraps s so that errors matching any of targets yield no candidates.
func DegradeOn(s Signal, log *logger.Logger, targets ...error) Signal {
	return &degraded{Signal: s, log: log, targets: targets}
}

func (d *degraded) Candidates(ctx context.Context, q Query) ([]domain.CandidateRecord, error) {
	out, err := d.Signal.Candidates(ctx, q)
	if err == nil {
		return out, nil
	}
	for _, t := range d.targets {
		if errors.Is(err, t) {
			if d.log != nil {
				d.log.Warn("signal degraded to empty", "signal", d.Name(), "error", err)
			}
			return nil, nil
		}
	}
	return nil, err
}

func workSet(works []domain.Work) map[string]struct{} {
	out := make(map[string]struct{}, len(works))
	for _, w := range works {
		out[w.ID] = struct{}{}
	}
	return out
}

func toCandidates(works []domain.Work, signal string) []domain.CandidateRecord {
	out := make([]domain.CandidateRecord, 0, len(works))
	for _, w := range works {
		if w.ID == "" {
			continue
		}
		out = append(out, domain.CandidateFromWork(w, signal))
	}
	return out
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
