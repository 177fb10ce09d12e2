/*
Package replay implements the retry-until-commit-or-give-up loop
transactional callers run against pkg/kv.

# Why a coordinator

A kv.Engine never blocks a caller waiting for a conflicting transaction
to finish; Commit either succeeds or returns a *kverr.RetryError
immediately. Building a correct retry loop around that contract means
getting three things right: counting attempts against a budget, backing
off by the interval the engine itself suggests (scaled by how many keys
conflicted), and adding jitter so a herd of retrying transactions
doesn't resynchronize and keep colliding. Coordinator centralizes that
so callers write a single closure and get the retry behavior for free.

# Usage

	engine := kv.New[string, int](clock.NewTickSource())
	ids := txnid.NewCounter()
	coordinator := replay.New(replay.DefaultConfig())

	err := coordinator.Run(ctx, func() error {
		id := ids.Next()
		if err := engine.Begin(id); err != nil {
			return err
		}
		balance, _, err := engine.Read(id, "balance")
		if err != nil {
			return err
		}
		if err := engine.Write(id, "balance", balance+10); err != nil {
			return err
		}
		return engine.Commit(id)
	})
	if err != nil {
		var giveUp *kverr.GiveUpError
		if errors.As(err, &giveUp) {
			// exhausted MaxAttempts retries
		}
	}

# See also

  - pkg/kv for the engine and the RetryError Run reacts to
  - pkg/config for loading Config overrides from YAML
*/
package replay
