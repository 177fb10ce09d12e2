// Package replay implements the retry-until-commit-or-give-up loop that
// drives a transactional closure against a kv.Engine: invoke the
// closure, and whenever it reports a *kverr.RetryError, wait out the
// suggested interval (plus jitter) and invoke it again, up to a
// configured attempt budget.
package replay

import (
	"context"
	"math/rand"
	"time"

	"github.com/cuemby/kvengine/pkg/kverr"
	"github.com/cuemby/kvengine/pkg/log"
	"github.com/cuemby/kvengine/pkg/metrics"
	"github.com/rs/zerolog"
)

// Config controls the coordinator's retry budget and backoff jitter.
// MaxAttempts is the number of retries allowed after the first
// invocation; a closure that still reports a conflict on invocation
// MaxAttempts+1 causes Run to return a *kverr.GiveUpError.
//
// Run waits the WaitMS carried by each *kverr.RetryError; it does not
// read BaseMS or PerConflictMS. Those two fields hold the values a
// caller passes to the engine's kv.RetryConfig, which is where the wait
// is computed.
type Config struct {
	MaxAttempts   int
	BaseMS        int
	PerConflictMS int
	JitterMS      int
}

// DefaultConfig matches the defaults documented for ReplayConfig:
// 100 retries, a 100ms base wait, 50ms per conflicting key, and up to
// 100ms of added jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   100,
		BaseMS:        100,
		PerConflictMS: 50,
		JitterMS:      100,
	}
}

// Coordinator runs a transactional closure to completion, retrying it
// whenever the engine reports a conflict.
type Coordinator struct {
	cfg    Config
	logger zerolog.Logger
}

// New creates a Coordinator with the given configuration.
func New(cfg Config) *Coordinator {
	return &Coordinator{cfg: cfg, logger: log.WithComponent("replay")}
}

// Run invokes fn until it returns nil, returns a non-retryable error, or
// the configured attempt budget is exhausted. fn is expected to run a
// full begin/read-or-write/commit cycle against an Engine and return the
// error from Commit unchanged.
//
// Run honors ctx cancellation while waiting between attempts; it does
// not cancel an in-progress call to fn.
func (c *Coordinator) Run(ctx context.Context, fn func() error) error {
	invocations := 0

	for {
		invocations++
		metrics.ReplayAttempts.Inc()

		err := fn()
		if err == nil {
			return nil
		}

		retry, ok := kverr.IsRetryable(err)
		if !ok {
			return err
		}

		if invocations > c.cfg.MaxAttempts {
			metrics.ReplayGaveUp.Inc()
			c.logger.Warn().Int("invocations", invocations).Msg("replay gave up")
			return &kverr.GiveUpError{MaxAttempts: c.cfg.MaxAttempts, Invocations: invocations}
		}

		wait := time.Duration(retry.WaitMS) * time.Millisecond
		if c.cfg.JitterMS > 0 {
			wait += time.Duration(rand.Intn(c.cfg.JitterMS)) * time.Millisecond
		}

		c.logger.Debug().
			Int("invocation", invocations).
			Dur("wait", wait).
			Msg("transaction conflicted, retrying")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
