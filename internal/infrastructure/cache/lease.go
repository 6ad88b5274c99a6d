package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLeaseHeld = errors.New("lease held by another worker")

// releaseScript deletes the key only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease is a best-effort mutual exclusion across worker processes.
type Lease struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewLease(rdb redis.UniversalClient, prefix string) *Lease {
	return &Lease{rdb: rdb, prefix: prefix}
}

// Acquire takes name for ttl. It returns ErrLeaseHeld when another holder
// has it; the returned release func is safe to call after expiry.
func (l *Lease) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	key := l.prefix + name
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLeaseHeld
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
	}
	return release, nil
}
