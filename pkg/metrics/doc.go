/*
Package metrics provides Prometheus metrics collection, health checks, and
HTTP exposition for the key-value engine.

The package defines and registers the engine's Prometheus metrics, tracks the
health of named components, and exposes /metrics, /health, /ready, and /live
HTTP handlers for external monitoring.

# Architecture

	┌──────────────────── METRICS SYSTEM ───────────────────────┐
	│                                                             │
	│  ┌────────────────────────────────────────────┐           │
	│  │          Prometheus Registry                │           │
	│  │  - Global DefaultRegistry                   │           │
	│  │  - MustRegister at package init             │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │    Metric Types (all prefixed kvengine_)    │           │
	│  │                                              │           │
	│  │  Counter:   transactions_begun_total        │           │
	│  │             transactions_committed_total    │           │
	│  │             transactions_aborted_total      │           │
	│  │             replay_attempts_total           │           │
	│  │             replay_gave_up_total            │           │
	│  │  Gauge:     transactions_in_flight          │           │
	│  │  Histogram: commit_duration_seconds         │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │              Collector                      │           │
	│  │  - polls a func() int every 15s             │           │
	│  │  - sets transactions_in_flight              │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │          HTTP Metrics Endpoint              │           │
	│  │  - Path: /metrics                           │           │
	│  │  - Format: Prometheus text exposition       │           │
	│  │  - Handler: promhttp.Handler()              │           │
	│  └────────────────────────────────────────────┘            │
	└─────────────────────────────────────────────────────────────┘

# Core components

Metric registry:
  - Global Prometheus DefaultRegistry
  - All metrics registered at package init
  - Thread-safe for concurrent updates

Timer:
  - Wraps time.Now for measuring a single call's duration
  - ObserveDuration / ObserveDurationVec push the result to a histogram

HealthChecker:
  - In-memory registry of named ComponentHealth entries
  - GetHealth aggregates every registered component
  - GetReadiness only inspects the components named in criticalComponents;
    for this engine that is the single component "engine" — the store
    must have a live Engine wired in before traffic is routed to it

Collector:
  - Polls a statFn func() int on a 15-second ticker and republishes it as
    the transactions_in_flight gauge; decouples this package from the
    generic Engine[K, V] type by taking a plain closure rather than a
    typed reference

# Usage

	metrics.SetVersion("0.1.0")
	metrics.RegisterComponent("engine", true, "")
	metrics.RegisterComponent("replay", true, "")

	collector := metrics.NewCollector(engine.InFlightCount)
	collector.Start()
	defer collector.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", metrics.HealthHandler())
	mux.HandleFunc("/ready", metrics.ReadyHandler())
	mux.HandleFunc("/live", metrics.LivenessHandler())

# See also

  - pkg/kv for the Engine and the operations these metrics describe
  - pkg/replay for the coordinator that increments ReplayAttempts/ReplayGaveUp
*/
package metrics
