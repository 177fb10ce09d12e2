package clock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTickSourceMonotonic(t *testing.T) {
	src := NewTickSource()

	last := int64(0)
	for i := 0; i < 100; i++ {
		tick := src.Now()
		assert.Greater(t, tick, last)
		last = tick
	}
}

func TestTickSourceNeverReturnsZero(t *testing.T) {
	src := NewTickSource()
	assert.NotZero(t, src.Now())
}

func TestTickSourceUniqueUnderConcurrency(t *testing.T) {
	src := NewTickSource()

	const n = 1000
	seen := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- src.Now()
		}()
	}
	wg.Wait()
	close(seen)

	ticks := make(map[int64]struct{}, n)
	for tick := range seen {
		_, dup := ticks[tick]
		assert.False(t, dup, "tick %d observed twice", tick)
		ticks[tick] = struct{}{}
	}
	assert.Len(t, ticks, n)
}
