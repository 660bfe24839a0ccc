// Package redis provides the Redis-backed run-exclusivity lock around
// delivery cycles.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pushgate/pushgate/internal/core"
)

// ErrLockHeld is returned when another live process owns the cycle lock.
var ErrLockHeld = errors.New("delivery cycle lock is held")

const defaultLockKey = "pushgate:cycle:lock"

// releaseScript deletes the lock only when the caller still owns it, so a
// slow cycle whose lock expired cannot release its successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript refreshes the TTL only for the current owner.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// CycleLockOptions groups dependencies for CycleLock.
type CycleLockOptions struct {
	Client *redis.Client // Required: redis connection
	TTL    time.Duration // Required: lock expiry, outlives a crashed owner
	Key    string        // Optional: lock key, defaults to defaultLockKey
	Logger *slog.Logger  // Optional: structured logger
}

// CycleLock guards delivery cycles with an expiring owner token. The TTL is
// the crash recovery bound; a live owner refreshes it from a heartbeat
// goroutine so long cycles keep the lock.
type CycleLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *slog.Logger

	mu        sync.Mutex
	owner     string
	stopBeats context.CancelFunc
	beatsDone chan struct{}
}

// NewCycleLock constructs a new CycleLock.
func NewCycleLock(opts CycleLockOptions) (*CycleLock, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if opts.TTL <= 0 {
		return nil, errors.New("lock TTL must be positive")
	}
	key := opts.Key
	if key == "" {
		key = defaultLockKey
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "cycle_lock")
	}

	return &CycleLock{
		client: opts.Client,
		key:    key,
		ttl:    opts.TTL,
		logger: logger,
	}, nil
}

var _ core.CycleLock = (*CycleLock)(nil)

// Acquire takes the lock or returns ErrLockHeld when a live owner exists.
func (l *CycleLock) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.owner != "" {
		return errors.New("lock already acquired by this process")
	}

	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire cycle lock: %w", err)
	}
	if !ok {
		return ErrLockHeld
	}

	l.owner = owner
	beatCtx, cancel := context.WithCancel(context.Background())
	l.stopBeats = cancel
	l.beatsDone = make(chan struct{})
	go l.heartbeat(beatCtx, owner)
	return nil
}

// Release frees the lock if this process owns it. Safe to call when the
// lock was never acquired.
func (l *CycleLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.owner == "" {
		return nil
	}
	l.stopBeats()
	<-l.beatsDone

	owner := l.owner
	l.owner = ""
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, owner).Err(); err != nil {
		return fmt.Errorf("release cycle lock: %w", err)
	}
	return nil
}

func (l *CycleLock) heartbeat(ctx context.Context, owner string) {
	defer close(l.beatsDone)

	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := extendScript.Run(ctx, l.client, []string{l.key}, owner, l.ttl.Milliseconds()).Err()
			if err != nil && !errors.Is(err, context.Canceled) && l.logger != nil {
				l.logger.Warn("failed to refresh cycle lock", "error", err)
			}
		}
	}
}
