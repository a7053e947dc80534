package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/afripulse/storefront-session/internal/core/ports"
)

const defaultAttributionTTL = 30 * 24 * time.Hour

// AttributionStore remembers the affiliate code that led a device to a
// product. Key format: attr:<device>:<product_id>
type AttributionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAttributionStore(client *redis.Client, ttl time.Duration) *AttributionStore {
	if ttl <= 0 {
		ttl = defaultAttributionTTL
	}
	return &AttributionStore{client: client, ttl: ttl}
}

var _ ports.AttributionStore = (*AttributionStore)(nil)

// Record stores code for the product. The latest click wins.
func (s *AttributionStore) Record(ctx context.Context, device, productID, code string) error {
	if err := s.client.Set(ctx, attributionKey(device, productID), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("record attribution: %w", err)
	}
	return nil
}

// Lookup returns "" when no code is recorded.
func (s *AttributionStore) Lookup(ctx context.Context, device, productID string) (string, error) {
	code, err := s.client.Get(ctx, attributionKey(device, productID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup attribution: %w", err)
	}
	return code, nil
}

func attributionKey(device, productID string) string {
	return fmt.Sprintf("attr:%s:%s", device, productID)
}
