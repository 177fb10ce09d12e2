package kv

import (
	"sync"

	"github.com/cuemby/kvengine/pkg/clock"
	"github.com/cuemby/kvengine/pkg/kverr"
	"github.com/cuemby/kvengine/pkg/metrics"
	"github.com/rs/zerolog"
)

// RetryConfig controls how a RetryError's wait interval is computed
// when commit-time validation fails.
type RetryConfig struct {
	BaseMS        int
	PerConflictMS int
}

// DefaultRetryConfig matches the defaults in the spec: 100ms base plus
// 50ms per conflicting key.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{BaseMS: 100, PerConflictMS: 50}
}

// Engine is the shared, authoritative store: the master key-to-record
// map plus the index of in-flight transactions. Begin and Commit are
// mutually exclusive with each other and with themselves, guarded by a
// single engine-wide mutex — the source of the ordering guarantee in
// §5 of the spec this engine implements: successful commits are
// totally ordered by commit tick, and a transaction's snapshot reflects
// every commit whose tick precedes its own start tick.
//
// Read and Write operate only on the calling transaction's private
// Txn and need no engine-wide synchronization, provided the caller does
// not share a single Txn id across goroutines.
type Engine[K comparable, V any] struct {
	mu     sync.Mutex
	master map[K]*Record[V]
	byID   map[int64]*Txn[K, V]

	clock  clock.Source
	retry  RetryConfig
	logger zerolog.Logger
}

// Option configures an Engine at construction time.
type Option[K comparable, V any] func(*Engine[K, V])

// New creates an empty Engine. clk is the injected monotonic tick
// source; pass clock.NewTickSource() unless a test needs a fake one.
func New[K comparable, V any](clk clock.Source, opts ...Option[K, V]) *Engine[K, V] {
	e := &Engine[K, V]{
		master: make(map[K]*Record[V]),
		byID:   make(map[int64]*Txn[K, V]),
		clock:  clk,
		retry:  DefaultRetryConfig(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithRetryConfig overrides the default retry-wait formula.
func WithRetryConfig[K comparable, V any](cfg RetryConfig) Option[K, V] {
	return func(e *Engine[K, V]) { e.retry = cfg }
}

// WithLogger attaches a component logger. Engines default to a no-op
// logger so tests stay quiet unless they opt in.
func WithLogger[K comparable, V any](l zerolog.Logger) Option[K, V] {
	return func(e *Engine[K, V]) { e.logger = l }
}

// Begin registers a new transaction context, snapshotting the current
// master store. Fails with ErrInvalidTransaction if id is negative or
// already live.
func (e *Engine[K, V]) Begin(id int64) error {
	if id < 0 {
		return kverr.ErrInvalidTransaction
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, live := e.byID[id]; live {
		return kverr.ErrInvalidTransaction
	}

	start := e.clock.Now()
	snapshot := make(map[K]*Record[V], len(e.master))
	for k, rec := range e.master {
		snapshot[k] = rec.clone()
	}

	e.byID[id] = &Txn[K, V]{
		ID:        id,
		StartTime: start,
		snapshot:  snapshot,
		opLog:     nil,
	}

	metrics.TransactionsBegun.Inc()
	metrics.InFlightTransactions.Set(float64(len(e.byID)))
	e.logger.Debug().Int64("txn_id", id).Int64("start_tick", start).Msg("transaction begun")
	return nil
}

func (e *Engine[K, V]) liveTxn(id int64) (*Txn[K, V], error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	txn, ok := e.byID[id]
	if !ok {
		return nil, kverr.ErrNoSuchTransaction
	}
	return txn, nil
}

// Read appends READ(key, now()) to the transaction's op log and returns
// the value visible to it: the snapshot's entry if one exists, or the
// absence marker (with a placeholder installed into the snapshot for
// commit-time reconciliation) otherwise.
func (e *Engine[K, V]) Read(id int64, key K) (value V, hasValue bool, err error) {
	txn, err := e.liveTxn(id)
	if err != nil {
		return value, false, err
	}

	ts := e.clock.Now()
	txn.opLog = append(txn.opLog, operation[K, V]{kind: opRead, key: key, ts: ts})

	if rec, found := txn.snapshot[key]; found {
		return rec.Value, rec.HasValue, nil
	}

	txn.snapshot[key] = newPlaceholderRecord[V](ts)
	return value, false, nil
}

// Write appends WRITE(key, value, now()) to the op log and overwrites
// the key's entry in the transaction's private snapshot.
func (e *Engine[K, V]) Write(id int64, key K, value V) error {
	txn, err := e.liveTxn(id)
	if err != nil {
		return err
	}

	ts := e.clock.Now()
	txn.opLog = append(txn.opLog, operation[K, V]{kind: opWrite, key: key, value: value, hasValue: true, ts: ts})
	txn.snapshot[key] = &Record[V]{Value: value, HasValue: true, LastWritten: ts, LastRead: NoTick}
	return nil
}

// Remove models key deletion as WRITE(k, absence, now()), per the
// tombstone resolution documented in DESIGN.md for the spec's open
// question on remove semantics.
func (e *Engine[K, V]) Remove(id int64, key K) error {
	txn, err := e.liveTxn(id)
	if err != nil {
		return err
	}

	ts := e.clock.Now()
	var zero V
	txn.opLog = append(txn.opLog, operation[K, V]{kind: opWrite, key: key, value: zero, hasValue: false, ts: ts})
	txn.snapshot[key] = &Record[V]{HasValue: false, LastWritten: ts, LastRead: NoTick}
	return nil
}

// Commit runs the validation predicate against the master store. If any
// key the transaction touched has master[k].LastWritten strictly after
// the transaction's start tick, the transaction is rolled back (removed
// from all indices) and a *kverr.RetryError is returned. Otherwise every
// logged operation is applied to master in log order under a single
// commit tick, and the transaction is removed from all indices.
func (e *Engine[K, V]) Commit(id int64) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.CommitLatency)

	e.mu.Lock()

	txn, ok := e.byID[id]
	if !ok {
		e.mu.Unlock()
		return kverr.ErrNoSuchTransaction
	}

	conflicts := e.countConflicts(txn)
	if conflicts > 0 {
		delete(e.byID, id)
		metrics.InFlightTransactions.Set(float64(len(e.byID)))
		e.mu.Unlock()

		metrics.TransactionsAborted.Inc()
		e.logger.Warn().Int64("txn_id", id).Int("conflicts", conflicts).Msg("transaction rolled back")
		return kverr.NewConflictRetry(conflicts, e.retry.BaseMS, e.retry.PerConflictMS)
	}

	commitTime := e.clock.Now()
	for _, op := range txn.opLog {
		switch op.kind {
		case opWrite:
			e.applyWrite(op, commitTime)
		case opRead:
			e.applyRead(op, txn, commitTime)
		default:
			e.mu.Unlock()
			panic(kverr.ErrInternalInvariant)
		}
	}

	delete(e.byID, id)
	metrics.InFlightTransactions.Set(float64(len(e.byID)))
	e.mu.Unlock()

	metrics.TransactionsCommitted.Inc()
	e.logger.Debug().Int64("txn_id", id).Int64("commit_tick", commitTime).Int("ops", len(txn.opLog)).Msg("transaction committed")
	return nil
}

// countConflicts must be called with e.mu held.
func (e *Engine[K, V]) countConflicts(txn *Txn[K, V]) int {
	seen := make(map[K]struct{}, len(txn.opLog))
	conflicts := 0
	for _, op := range txn.opLog {
		if _, already := seen[op.key]; already {
			continue
		}
		seen[op.key] = struct{}{}

		rec, exists := e.master[op.key]
		if !exists {
			continue
		}
		if rec.LastWritten == NoTick {
			continue
		}
		// Strict '>' is equivalent to the spec's '>=' here: clock.Source
		// hands out a unique tick per call, so txn.StartTime can never
		// equal a master write's commit tick unless it were that same
		// write, which is impossible across distinct transactions.
		if rec.LastWritten > txn.StartTime {
			conflicts++
		}
	}
	return conflicts
}

// applyWrite must be called with e.mu held.
func (e *Engine[K, V]) applyWrite(op operation[K, V], commitTime int64) {
	rec, exists := e.master[op.key]
	if !exists {
		e.master[op.key] = &Record[V]{
			Value:       op.value,
			HasValue:    op.hasValue,
			LastWritten: commitTime,
			LastRead:    NoTick,
		}
		return
	}
	rec.Value = op.value
	rec.HasValue = op.hasValue
	rec.LastWritten = commitTime
}

// applyRead must be called with e.mu held.
func (e *Engine[K, V]) applyRead(op operation[K, V], txn *Txn[K, V], commitTime int64) {
	if rec, exists := e.master[op.key]; exists {
		rec.LastRead = commitTime
		return
	}
	// No master entry: install the snapshot's placeholder, metadata-only.
	placeholder, ok := txn.snapshot[op.key]
	if !ok {
		panic(kverr.ErrInternalInvariant)
	}
	e.master[op.key] = &Record[V]{
		HasValue:    placeholder.HasValue,
		Value:       placeholder.Value,
		LastWritten: NoTick,
		LastRead:    commitTime,
	}
}

// NeedToRollBack reports whether txn, if committed right now, would be
// forced to retry — i.e. whether the validation predicate currently
// finds a conflict. It does not mutate any state and is meant for tests
// and diagnostics (see property 4/scenario S6 in the spec).
func (e *Engine[K, V]) NeedToRollBack(id int64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	txn, ok := e.byID[id]
	if !ok {
		return false, kverr.ErrNoSuchTransaction
	}
	return e.countConflicts(txn) > 0, nil
}

// InFlightCount returns the number of live transactions. Used by
// pkg/metrics's Collector to drive the InFlightTransactions gauge.
func (e *Engine[K, V]) InFlightCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.byID)
}

// Peek returns the current master record for key without starting a
// transaction. It exists for tests and the benchmark CLI that need to
// assert on committed state directly; it is not part of the
// begin/read/write/commit contract.
func (e *Engine[K, V]) Peek(key K) (value V, hasValue bool, found bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.master[key]
	if !ok {
		return value, false, false
	}
	return rec.Value, rec.HasValue, true
}
