package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

// ErrNotAcquired means another holder owns the key.
var ErrNotAcquired = errors.New("lock held by another owner")

// Locker hands out exclusive, expiring leases on string keys.
type Locker interface {
	// TryAcquire returns ErrNotAcquired immediately if the key is held.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
	Close() error
}

type RedisConfig struct {
	Addr     string
	Password string
	Prefix   string
}

// New returns a redis-backed locker when cfg.Addr is set, and an in-process one otherwise.
func New(log *logger.Logger, cfg RedisConfig) (Locker, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		log.Warn("REDIS_ADDR not set; using in-process locks")
		return NewLocal(), nil
	}
	return NewRedis(log, cfg)
}

// compare-and-delete so an expired lease cannot release its successor
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewRedis(log *logger.Logger, cfg RedisConfig) (Locker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "meetingscribe:lock:"
	}
	return &redisLocker{log: log.With("service", "RedisLocker"), rdb: rdb, prefix: prefix}, nil
}

func (l *redisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if l == nil || l.rdb == nil {
		return nil, fmt.Errorf("redis locker not initialized")
	}
	full := l.prefix + key
	token := uuid.New().String()
	ok, err := l.rdb.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx %s: %w", full, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	release := func() {
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{full}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
			l.log.Warn("lock release failed", "key", full, "error", err)
		}
	}
	return release, nil
}

func (l *redisLocker) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}

type localLocker struct {
	mu   sync.Mutex
	seq  uint64
	held map[string]localLease
}

type localLease struct {
	token   uint64
	expires time.Time
}

func NewLocal() Locker {
	return &localLocker{held: map[string]localLease{}}
}

func (l *localLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if cur, ok := l.held[key]; ok && (cur.expires.IsZero() || now.Before(cur.expires)) {
		return nil, ErrNotAcquired
	}
	l.seq++
	lease := localLease{token: l.seq}
	if ttl > 0 {
		lease.expires = now.Add(ttl)
	}
	l.held[key] = lease

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.held[key]; ok && cur.token == lease.token {
			delete(l.held, key)
		}
	}, nil
}

func (l *localLocker) Close() error { return nil }
