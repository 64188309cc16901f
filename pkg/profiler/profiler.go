// Package profiler exposes net/http/pprof on a separate listener
package profiler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"sync"

	"github.com/forest33/sockserver/pkg/logger"
)

type Config struct {
	Host string
	Port int
}

var (
	once = sync.Once{}
	srv  *http.Server
)

func Start(cfg *Config, log *logger.Logger) {
	once.Do(func() {
		log.Info().
			Str("host", cfg.Host).
			Int("port", cfg.Port).
			Msg("starting profiler")

		srv = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler: http.DefaultServeMux,
		}

		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("failed to start profiler")
			}
		}()
	})
}

func Stop(ctx context.Context) error {
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
