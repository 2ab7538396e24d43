// internal/domain/webhook/ledger.go
package webhook

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const ledgerKeyPrefix = "webhook:event:"

// Ledger remembers gateway events that were fully processed
type Ledger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// RedisLedger keeps processed event ids in Redis with a TTL
type RedisLedger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLedger creates a ledger whose entries expire after ttl
func NewRedisLedger(client *redis.Client, ttl time.Duration) *RedisLedger {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &RedisLedger{client: client, ttl: ttl}
}

func (l *RedisLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	_, err := l.client.Get(ctx, ledgerKeyPrefix+eventID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *RedisLedger) Mark(ctx context.Context, eventID string) error {
	return l.client.Set(ctx, ledgerKeyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), l.ttl).Err()
}
