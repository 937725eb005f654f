package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/articlerec/internal/config"
	"github.com/yungbote/articlerec/internal/platform/logger"
)

type Server struct {
	Engine *gin.Engine
	srv    *http.Server
	log    *logger.Logger
	grace  time.Duration
}

func NewServer(cfg RouterConfig) *Server {
	engine := NewRouter(cfg)
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{
		Engine: engine,
		srv: &http.Server{
			Addr:              addrOr(cfg.HTTP),
			Handler:           engine,
			ReadHeaderTimeout: durationOr(cfg.HTTP.ReadHeaderTimeout, 5*time.Second),
			IdleTimeout:       durationOr(cfg.HTTP.IdleTimeout, 60*time.Second),
		},
		log:   log.With("component", "HTTPServer"),
		grace: durationOr(cfg.HTTP.ShutdownTimeout, 10*time.Second),
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for up to
// the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	s.log.Info("HTTP server shutting down", "grace", s.grace.String())
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func addrOr(cfg config.HTTPConfig) string {
	if cfg.Addr == "" {
		return ":8080"
	}
	return cfg.Addr
}

func durationOr(d config.Duration, def time.Duration) time.Duration {
	if d.Duration <= 0 {
		return def
	}
	return d.Duration
}
