package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTTLCacheSetAndGet(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, time.Minute)
	got, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, got)

	_, ok = c.Get("missing")
	require.False(t, ok)
}

func TestTTLCacheExpires(t *testing.T) {
	impl := &ttlCache[string, int]{entries: make(map[string]entry[int])}
	now := time.Now()
	impl.now = func() time.Time { return now }

	impl.Set("a", 1, time.Minute)
	now = now.Add(2 * time.Minute)

	_, ok := impl.Get("a")
	require.False(t, ok)
}

func TestTTLCacheDelete(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, time.Minute)
	c.Delete("a")

	_, ok := c.Get("a")
	require.False(t, ok)
}

func TestTTLCacheIgnoresNonPositiveTTL(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, 0)
	_, ok := c.Get("a")
	require.False(t, ok)
}

func TestDashboardCacheRoundTrip(t *testing.T) {
	c := NewDashboardCache()

	_, ok := c.GetOverview()
	require.False(t, ok)

	c.SetOverview(Overview{CustomerCount: 3})
	got, ok := c.GetOverview()
	require.True(t, ok)
	require.Equal(t, int64(3), got.CustomerCount)

	c.Invalidate()
	_, ok = c.GetOverview()
	require.False(t, ok)
}
