/*
Package kv implements an in-memory, optimistic, timestamp-based
transactional key-value engine: the shared master map, per-transaction
snapshots, and the commit-time validation predicate that decides
whether a transaction's writes are published or rolled back.

# Architecture

	┌──────────────────── ENGINE[K, V] ─────────────────────────┐
	│                                                             │
	│  ┌───────────────────────────────────────────┐            │
	│  │              master map[K]*Record[V]       │            │
	│  │  - sole source of truth                     │            │
	│  │  - mutated only inside Begin/Commit          │            │
	│  └──────────────────┬──────────────────────────┘            │
	│                     │ snapshot at Begin                     │
	│  ┌──────────────────▼──────────────────────────┐            │
	│  │           byID map[int64]*Txn[K, V]          │            │
	│  │  - snapshot: deep copy of master at start    │            │
	│  │  - opLog: ordered READ/WRITE entries          │            │
	│  └──────────────────┬──────────────────────────┘            │
	│                     │ Commit                                │
	│  ┌──────────────────▼──────────────────────────┐            │
	│  │        validation predicate (countConflicts)  │            │
	│  │  master[k].LastWritten > txn.StartTime?       │            │
	│  │  yes for any touched k → RetryError           │            │
	│  │  no for all touched k  → apply opLog to master │           │
	│  └───────────────────────────────────────────────┘            │
	└─────────────────────────────────────────────────────────────┘

# Concurrency

Begin and Commit hold the engine's single mutex for their full
duration; that critical section is what makes commitTime / startTime
comparisons meaningful across goroutines. Read and Write touch only the
calling transaction's own Txn (fetched under a brief lock, then
manipulated unlocked) and need no synchronization with other
transactions, provided a single Txn id is never driven by more than one
goroutine at a time.

# Timestamps

The engine never touches the wall clock. It asks an injected
clock.Source for a tick on every Begin, Read, Write, and Commit. Because
a Source hands out a strictly increasing, never-repeated value per call,
the validation predicate's "at or after" conflict rule reduces to a
simple strict greater-than comparison — no sleep spacers, no tie-break
logic, no ambiguity about two transactions beginning in the same
instant.

# Absence and removal

A key with no Record in master has never been touched. A Record with
HasValue false carries the "absence marker" of the spec this engine
implements: either the key has been read (and the read cached as a
placeholder) but never written, or its last committed write was a
Remove. Remove is modeled as a WRITE of the absence marker
(a tombstone), so it participates in validation exactly like any other
write: a transaction that removes a key it never reads is still subject
to conflict detection against concurrent writers of that key.

# Usage

	clk := clock.NewTickSource()
	ids := txnid.NewCounter()
	engine := kv.New[string, int](clk)

	id := ids.Next()
	if err := engine.Begin(id); err != nil {
		return err
	}
	if err := engine.Write(id, "meaning", 42); err != nil {
		return err
	}
	if err := engine.Commit(id); err != nil {
		var retry *kverr.RetryError
		if errors.As(err, &retry) {
			// caller retries, or hands the closure to pkg/replay
		}
	}

# See also

  - pkg/clock for the tick source
  - pkg/txnid for the id allocator
  - pkg/kverr for the error taxonomy
  - pkg/replay for the retry-until-commit-or-give-up loop
*/
package kv
