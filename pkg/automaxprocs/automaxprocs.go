// Package automaxprocs sets GOMAXPROCS to match the container CPU quota
package automaxprocs

import (
	"runtime"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/forest33/sockserver/pkg/logger"
)

// Init applies the CPU quota, or n when it is positive
func Init(log *logger.Logger, n int) {
	if n > 0 {
		runtime.GOMAXPROCS(n)
		log.Info().Int("gomaxprocs", n).Msg("GOMAXPROCS set from config")
		return
	}

	if _, err := maxprocs.Set(maxprocs.Logger(log.Printf)); err != nil {
		log.Error().Err(err).Msg("failed to set automaxprocs")
	}
}
