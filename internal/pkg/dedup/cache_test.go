package dedup

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_MarkAndCheck(t *testing.T) {
	c := NewCache(24 * time.Hour)
	defer c.Stop()

	assert.False(t, c.HasFired("overtime:rec-1:2026-03-02"))

	c.MarkFired("overtime:rec-1:2026-03-02")
	assert.True(t, c.HasFired("overtime:rec-1:2026-03-02"))
	assert.False(t, c.HasFired("overtime:rec-2:2026-03-02"))
}

func TestCache_Reset(t *testing.T) {
	c := NewCache(24 * time.Hour)
	defer c.Stop()

	c.MarkFired("report:org-1:morning:2026-03-02")
	c.MarkFired("report:org-2:morning:2026-03-02")
	assert.Equal(t, 2, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.HasFired("report:org-1:morning:2026-03-02"))
}

func TestCache_TTLExpiry(t *testing.T) {
	c := NewCache(10 * time.Millisecond)
	defer c.Stop()

	c.MarkFired("key")
	assert.True(t, c.HasFired("key"))

	time.Sleep(20 * time.Millisecond)
	assert.False(t, c.HasFired("key"))
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := NewCache(time.Hour)
	defer c.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%10)
			c.MarkFired(key)
			c.HasFired(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
}
