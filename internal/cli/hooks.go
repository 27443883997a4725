package cli

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fadegraph/pkg/observability"
)

// cliHooks reports engine phase changes to the debug log and remembers
// whether the last source load was served from cache.
type cliHooks struct {
	observability.NoopEngineHooks
	observability.NoopCacheHooks

	logger   *log.Logger
	cacheHit atomic.Bool
}

func (h *cliHooks) OnPhaseChange(from, to string, frame uint64) {
	h.logger.Debug("phase", "from", from, "to", to, "frame", frame)
}

func (h *cliHooks) OnCacheHit(context.Context, string)  { h.cacheHit.Store(true) }
func (h *cliHooks) OnCacheMiss(context.Context, string) { h.cacheHit.Store(false) }

// installHooks registers the CLI's hooks process-wide.
func (c *CLI) installHooks() {
	c.hooks = &cliHooks{logger: c.Logger}
	observability.SetEngineHooks(c.hooks)
	observability.SetCacheHooks(c.hooks)
}

// cached reports whether the most recent source load hit the cache.
func (c *CLI) cached() bool {
	return c.hooks != nil && c.hooks.cacheHit.Load()
}
