// Command kvbench drives the in-memory transactional key-value engine
// under configurable concurrent load and reports whether every
// replayed transaction converged to the expected final state.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/cuemby/kvengine/pkg/clock"
	"github.com/cuemby/kvengine/pkg/config"
	"github.com/cuemby/kvengine/pkg/kv"
	"github.com/cuemby/kvengine/pkg/kverr"
	"github.com/cuemby/kvengine/pkg/log"
	"github.com/cuemby/kvengine/pkg/metrics"
	"github.com/cuemby/kvengine/pkg/replay"
	"github.com/cuemby/kvengine/pkg/txnid"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "kvbench",
	Short:   "Benchmark driver for the transactional key-value engine",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"kvbench version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(incrementCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

var incrementCmd = &cobra.Command{
	Use:   "increment",
	Short: "Run N workers each incrementing a shared counter, then verify convergence",
	Long: `increment starts --workers goroutines, each replaying a
begin/read/write/commit transaction --increments times against a
single shared key. Every committed increment must eventually apply,
whatever the contention, because conflicting commits are retried by
the replay coordinator rather than lost.`,
	RunE: runIncrement,
}

func init() {
	incrementCmd.Flags().Int("workers", 10, "Number of concurrent workers")
	incrementCmd.Flags().Int("increments", 100, "Increments performed by each worker")
	incrementCmd.Flags().Int("delta", 1, "Amount added per increment")
	incrementCmd.Flags().Int("max-attempts", 100, "Replay attempts allowed before giving up")
	incrementCmd.Flags().String("config", "", "Optional YAML file overriding replay retry parameters")
	incrementCmd.Flags().String("metrics-addr", "", "If set, serve /metrics, /health, /ready, /live on this address")
}

func runIncrement(cmd *cobra.Command, args []string) error {
	workers, _ := cmd.Flags().GetInt("workers")
	increments, _ := cmd.Flags().GetInt("increments")
	delta, _ := cmd.Flags().GetInt("delta")
	maxAttempts, _ := cmd.Flags().GetInt("max-attempts")
	configPath, _ := cmd.Flags().GetString("config")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	runID := uuid.New().String()
	runLog := log.WithRunID(runID)

	replayCfg, err := config.LoadReplayConfig(configPath)
	if err != nil {
		return fmt.Errorf("kvbench: %w", err)
	}
	if cmd.Flags().Changed("max-attempts") {
		replayCfg.MaxAttempts = maxAttempts
	}

	engine := kv.New[string, int](clock.NewTickSource(),
		kv.WithLogger[string, int](log.WithComponent("engine")),
		kv.WithRetryConfig[string, int](kv.RetryConfig{
			BaseMS:        replayCfg.RetryBaseMS,
			PerConflictMS: replayCfg.RetryPerConflictMS,
		}),
	)
	ids := txnid.NewCounter()
	coordinator := replay.New(replayCfg.ToReplayConfig())

	metrics.SetVersion(Version)
	metrics.RegisterComponent("engine", true, "")
	metrics.RegisterComponent("replay", true, "")

	collector := metrics.NewCollector(engine.InFlightCount)
	collector.Start()
	defer collector.Stop()

	if metricsAddr != "" {
		go serveMetrics(metricsAddr)
	}

	const key = "counter"

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	var wg sync.WaitGroup
	var gaveUp int
	var mu sync.Mutex

	runLog.Info().
		Int("workers", workers).
		Int("increments", increments).
		Int("delta", delta).
		Msg("starting increment benchmark")

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < increments; i++ {
				err := coordinator.Run(ctx, func() error {
					id := ids.Next()
					if err := engine.Begin(id); err != nil {
						return err
					}
					current, _, err := engine.Read(id, key)
					if err != nil {
						return err
					}
					if err := engine.Write(id, key, current+delta); err != nil {
						return err
					}
					return engine.Commit(id)
				})
				if err != nil {
					var giveUp *kverr.GiveUpError
					if errors.As(err, &giveUp) {
						mu.Lock()
						gaveUp++
						mu.Unlock()
						continue
					}
					runLog.Error().Err(err).Msg("increment failed")
					return
				}
			}
		}()
	}
	wg.Wait()

	final, _, _ := engine.Peek(key)
	expected := workers * increments * delta

	fmt.Printf("final value:    %d\n", final)
	fmt.Printf("expected value: %d\n", expected)
	fmt.Printf("gave up:        %d\n", gaveUp)

	if gaveUp == 0 && final != expected {
		return fmt.Errorf("kvbench: final value %d does not match expected %d", final, expected)
	}
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", metrics.HealthHandler())
	mux.HandleFunc("/ready", metrics.ReadyHandler())
	mux.HandleFunc("/live", metrics.LivenessHandler())
	_ = http.ListenAndServe(addr, mux)
}
