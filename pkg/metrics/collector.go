package metrics

import (
	"time"
)

// Collector polls an engine's in-flight transaction count on an
// interval and publishes it to InFlightTransactions. It takes a plain
// func() int rather than an *kv.Engine[K, V] reference so this package
// stays free of the engine's type parameters.
type Collector struct {
	statFn func() int
	stopCh chan struct{}
}

// NewCollector creates a collector that polls statFn for the current
// in-flight transaction count. Pass engine.InFlightCount.
func NewCollector(statFn func() int) *Collector {
	return &Collector{
		statFn: statFn,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics on a background goroutine.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	InFlightTransactions.Set(float64(c.statFn()))
}
