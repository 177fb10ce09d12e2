/*
Package log provides structured logging for the key-value engine using
zerolog.

The log package wraps zerolog to provide JSON-structured logging with
component-specific loggers, configurable log levels, and helper functions for
common logging patterns. All logs include timestamps and support filtering by
severity level.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("engine")                  │          │
	│  │  - WithComponent("replay")                  │          │
	│  │  - WithTxnID(42)                            │          │
	│  │  - WithRunID("benchmark-run")               │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │                                              │          │
	│  │  JSON Format:                               │          │
	│  │  {                                           │          │
	│  │    "level": "debug",                        │          │
	│  │    "component": "engine",                   │          │
	│  │    "txn_id": 42,                            │          │
	│  │    "time": "2026-08-01T10:30:00Z",         │          │
	│  │    "message": "transaction committed"       │          │
	│  │  }                                           │          │
	│  │                                              │          │
	│  │  Console Format:                            │          │
	│  │  2026-08-01T10:30:00Z DBG transaction committed component=engine txn_id=42 │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core components

Global logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Accessible from every package in this module
  - Thread-safe concurrent writes

Log levels:
  - Debug: per-transaction tracing (Begin/Commit)
  - Info: general informational messages
  - Warn: recoverable conditions (a commit rolled back by validation)
  - Error: operation failures
  - Fatal: unrecoverable startup errors (process exits)

Configuration:
  - Level: filters messages below threshold
  - JSONOutput: JSON vs human-readable console
  - Output: io.Writer for log destination (stdout, file)

Context loggers:
  - WithComponent: tag all logs from a subsystem (e.g. "engine", "replay")
  - WithTxnID: tag logs with the transaction id they concern
  - WithRunID: tag logs with a benchmark-run correlation id

# Usage

Initializing the logger:

	import "github.com/cuemby/kvengine/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Simple logging:

	log.Info("engine initialized")
	log.Debug("checking master record")
	log.Warn("commit rolled back by validation predicate")
	log.Error("replay coordinator exhausted retry budget")

Structured logging:

	log.Logger.Debug().
		Int64("txn_id", id).
		Int64("commit_tick", tick).
		Msg("transaction committed")

Component loggers:

	engineLog := log.WithComponent("engine")
	engineLog.Debug().Msg("starting validation")

	txnLog := log.WithTxnID(id)
	txnLog.Warn().Int("conflicts", n).Msg("rolled back")

# Design patterns

Global logger pattern: a single package-level Logger instance,
initialized once at process start, accessible from every package without
being passed down a call chain.

Context logger pattern: create a child logger carrying one or more
fields (component, txn_id, run_id) and pass that logger into the
function that needs it, instead of repeating the fields at every call
site.

Structured logging pattern: typed fields (.Str, .Int64, .Err) rather
than string interpolation, so log lines stay parseable by log
aggregation tooling.

# See also

  - Zerolog documentation: https://github.com/rs/zerolog
  - pkg/replay, which logs through WithComponent("replay"), and
    cmd/kvbench, which hands the kv engine a WithComponent("engine")
    logger (pkg/kv itself takes an injected zerolog.Logger and does not
    import this package)
*/
package log
