package bookings

import (
	"context"
	"sync"
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/apperr"
	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/constants"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TierLocker serialises purchase attempts for one tier before they reach the
// database row lock. The returned func releases the lock and is safe to call
// once.
type TierLocker interface {
	Lock(ctx context.Context, tierID uuid.UUID) (unlock func(), err error)
}

// LocalLocker is an in-process keyed mutex.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*tierMutex
}

type tierMutex struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[uuid.UUID]*tierMutex)}
}

func (l *LocalLocker) Lock(ctx context.Context, tierID uuid.UUID) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[tierID]
	if !ok {
		m = &tierMutex{ch: make(chan struct{}, 1)}
		l.locks[tierID] = m
	}
	m.refs++
	l.mu.Unlock()

	select {
	case m.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(tierID, m)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-m.ch
			l.release(tierID, m)
		})
	}, nil
}

func (l *LocalLocker) release(tierID uuid.UUID, m *tierMutex) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m.refs--
	if m.refs == 0 {
		delete(l.locks, tierID)
	}
}

// releaseScript deletes the lock only if this holder still owns it
var releaseScript = redis.NewScript(`
-- KEYS[1] = lock key
-- ARGV[1] = holder token
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

const lockPollInterval = 25 * time.Millisecond

// RedisLocker holds a SET NX lock per tier so instances sharing a database
// queue in Redis rather than on the row lock. If Redis errors, it degrades to
// the in-process locker and the row lock alone keeps the ledger consistent.
type RedisLocker struct {
	client   redis.UniversalClient
	ttl      time.Duration
	wait     time.Duration
	local    *LocalLocker
	newToken func() string
	log      *logger.Logger
}

func NewRedisLocker(client redis.UniversalClient, ttl, wait time.Duration, log *logger.Logger) *RedisLocker {
	return &RedisLocker{
		client:   client,
		ttl:      ttl,
		wait:     wait,
		local:    NewLocalLocker(),
		newToken: uuid.NewString,
		log:      log.WithComponent("tier-lock"),
	}
}

func (l *RedisLocker) Lock(ctx context.Context, tierID uuid.UUID) (func(), error) {
	unlockLocal, err := l.local.Lock(ctx, tierID)
	if err != nil {
		return nil, err
	}

	key := constants.BuildTierLockKey(tierID.String())
	token := l.newToken()
	started := time.Now()
	deadline := started.Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			l.log.WarnContext(ctx, "Tier lock unavailable, using process lock only",
				"tier_id", tierID.String(), "error", err.Error())
			return unlockLocal, nil
		}
		if ok {
			metrics.TierLockWait.Observe(time.Since(started).Seconds())
			var once sync.Once
			return func() {
				once.Do(func() {
					l.unlock(context.WithoutCancel(ctx), key, token)
					unlockLocal()
				})
			}, nil
		}

		if !time.Now().Before(deadline) {
			unlockLocal()
			return nil, apperr.Conflict("tier_id", "tier %s is busy, retry shortly", tierID)
		}

		select {
		case <-time.After(lockPollInterval):
		case <-ctx.Done():
			unlockLocal()
			return nil, ctx.Err()
		}
	}
}

func (l *RedisLocker) unlock(ctx context.Context, key, token string) {
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		// the TTL frees it eventually
		l.log.WarnContext(ctx, "Failed to release tier lock", "key", key, "error", err.Error())
	}
}
