package threadsafe

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeySetAcquireRelease(t *testing.T) {
	s := NewKeySet[string]()

	assert.True(t, s.TryAcquire("DEP-1"))
	assert.False(t, s.TryAcquire("DEP-1"))
	assert.True(t, s.Held("DEP-1"))
	assert.Equal(t, 1, s.Len())

	s.Release("DEP-1")
	assert.False(t, s.Held("DEP-1"))
	assert.True(t, s.TryAcquire("DEP-1"))
}

func TestKeySetSingleWinner(t *testing.T) {
	s := NewKeySet[int64]()
	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryAcquire(7) {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}
