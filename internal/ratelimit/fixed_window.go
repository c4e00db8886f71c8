package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Limiter answers whether one more attempt is allowed for a key within
// the current window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

const fixedWindowScript = `
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`

type FixedWindow struct {
	client *redis.Client
	script *redis.Script
}

func NewFixedWindow(client *redis.Client) *FixedWindow {
	if client == nil {
		return nil
	}
	return &FixedWindow{
		client: client,
		script: redis.NewScript(fixedWindowScript),
	}
}

func (f *FixedWindow) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	if f == nil || f.client == nil {
		return nil, errors.New("rate limiter not configured")
	}
	if key == "" {
		return nil, errors.New("rate limiter key is empty")
	}
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limiter limit and window must be positive")
	}

	res, err := f.script.Run(ctx, f.client, []string{key}, int64(window/time.Millisecond)).Slice()
	if err != nil {
		return nil, err
	}
	if len(res) < 2 {
		return nil, errors.New("invalid rate limit script response")
	}

	count := castToInt(res[0])
	ttl := castToInt(res[1])
	if ttl < 0 {
		ttl = int64(window / time.Millisecond)
	}

	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}

	out := &Result{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: int(remaining),
	}
	if !out.Allowed {
		out.RetryAfter = time.Duration(ttl) * time.Millisecond
	}
	return out, nil
}

func castToInt(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	default:
		return 0
	}
}

// MemoryLimiter keeps windows in process memory. It serves single node
// deployments where no Redis address is configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

type memoryWindow struct {
	count   int
	resetAt time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

func (m *MemoryLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	if key == "" {
		return nil, errors.New("rate limiter key is empty")
	}
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limiter limit and window must be positive")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		m.windows[key] = w
	}
	w.count++

	remaining := limit - w.count
	if remaining < 0 {
		remaining = 0
	}

	out := &Result{
		Allowed:   w.count <= limit,
		Limit:     limit,
		Remaining: remaining,
	}
	if !out.Allowed {
		out.RetryAfter = w.resetAt.Sub(now)
	}
	return out, nil
}
