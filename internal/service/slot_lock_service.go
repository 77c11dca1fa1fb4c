package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"appointment-scheduler/internal/domain/provider"
	"appointment-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// releaseSlotLockScript deletes the lock only if it still holds our token,
// so an expired lock re-acquired by another instance is never released by us.
var releaseSlotLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	// Redis key prefix for slot locks
	RedisSlotLockKeyPrefix = "lock:"

	// Poll interval while another holder owns a Redis slot lock
	redisLockRetryInterval = 25 * time.Millisecond

	// Expiry used when a non-positive TTL is given; a Redis lock never lives forever
	defaultRedisSlotLockTTL = 10 * time.Second

	// Timeout for the release round-trip, independent of the request context
	redisLockReleaseTimeout = 2 * time.Second

	// Interval for cleaning up idle local locks
	slotLockCleanupInterval = 10 * time.Minute

	// How long a local lock must be unused before cleanup
	slotLockStaleThreshold = 10 * time.Minute
)

// =============================================================================
// Local (in-process) locker
// =============================================================================

// LocalSlotLocker serializes bookings of one slot inside a single process.
//
// Each key maps to a one-token channel so Acquire can give up on ctx or after
// the configured wait. Idle entries are swept by a background goroutine;
// call Stop during graceful shutdown.
type LocalSlotLocker struct {
	log  *logrus.Logger
	wait time.Duration

	locks sync.Map // map[string]*slotLock

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

type slotLock struct {
	token    chan struct{}
	lastUsed atomic.Int64 // Unix timestamp
}

func NewLocalSlotLocker(log *logrus.Logger, wait time.Duration) *LocalSlotLocker {
	l := &LocalSlotLocker{
		log:      log,
		wait:     wait,
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Acquire blocks until key is held. It returns apperror.ErrSlotBusy when the wait
// elapses and ctx.Err() when ctx is done first.
func (l *LocalSlotLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		lock := l.getLock(key)

		// A free token is taken before the wait timer can compete with it.
		select {
		case lock.token <- struct{}{}:
		default:
			if timer == nil {
				timer = time.NewTimer(l.wait)
			}
			select {
			case lock.token <- struct{}{}:
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-timer.C:
				return nil, apperror.ErrSlotBusy
			}
		}

		// The entry may have been swept between getLock and the send; holding an
		// orphaned token would not exclude newcomers, so retry on the live entry.
		if current, ok := l.locks.Load(key); !ok || current != lock {
			<-lock.token
			continue
		}

		lock.lastUsed.Store(time.Now().Unix())
		var once sync.Once
		return func() {
			once.Do(func() { <-lock.token })
		}, nil
	}
}

// Stop gracefully shuts down the cleanup goroutine.
// Safe to call multiple times.
func (l *LocalSlotLocker) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopChan)
		l.wg.Wait()
		l.log.Info("LocalSlotLocker stopped")
	}
}

func (l *LocalSlotLocker) getLock(key string) *slotLock {
	lock, _ := l.locks.LoadOrStore(key, &slotLock{token: make(chan struct{}, 1)})
	result := lock.(*slotLock)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (l *LocalSlotLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(slotLockCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanupStale(time.Now().Add(-slotLockStaleThreshold))
		}
	}
}

// cleanupStale removes entries unused since cutoff. An entry is only removed
// while its token is held here, so a current holder is never swept.
func (l *LocalSlotLocker) cleanupStale(cutoff time.Time) int {
	var cleaned int

	l.locks.Range(func(key, value any) bool {
		lock, ok := value.(*slotLock)
		if !ok {
			return true
		}

		select {
		case lock.token <- struct{}{}:
			if lock.lastUsed.Load() < cutoff.Unix() {
				l.locks.Delete(key)
				cleaned++
			}
			<-lock.token
		default:
		}
		return true
	})

	if cleaned > 0 {
		l.log.Debugf("Cleaned up %d idle slot locks", cleaned)
	}
	return cleaned
}

// =============================================================================
// Redis (cross-process) locker
// =============================================================================

// RedisSlotLocker serializes bookings of one slot across service instances with
// SET NX PX. The TTL bounds how long a crashed holder can block the slot.
type RedisSlotLocker struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
	wait        time.Duration
}

func NewRedisSlotLocker(redisClient *redis.Client, log *logrus.Logger, ttl, wait time.Duration) *RedisSlotLocker {
	if ttl <= 0 {
		ttl = defaultRedisSlotLockTTL
	}
	return &RedisSlotLocker{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
		wait:        wait,
	}
}

func (l *RedisSlotLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := RedisSlotLockKeyPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		acquired, err := l.redisClient.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			l.log.Warnf("Failed to acquire slot lock %s: %+v", lockKey, err)
			return nil, fmt.Errorf("acquire slot lock %s: %w", lockKey, err)
		}
		if acquired {
			break
		}

		if time.Now().After(deadline) {
			return nil, apperror.ErrSlotBusy
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(redisLockRetryInterval):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), redisLockReleaseTimeout)
			defer cancel()

			if err := releaseSlotLockScript.Run(releaseCtx, l.redisClient, []string{lockKey}, token).Err(); err != nil {
				l.log.Warnf("Failed to release slot lock %s: %+v", lockKey, err)
			}
		})
	}, nil
}

var (
	_ provider.SlotLocker = (*LocalSlotLocker)(nil)
	_ provider.SlotLocker = (*RedisSlotLocker)(nil)
)
