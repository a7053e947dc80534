package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/afripulse/storefront-session/internal/core/ports"
)

const clickDedupTTL = time.Hour

// ClickDedup suppresses repeat affiliate click reports from one device.
// Key format: affclick:<device>:<code>
type ClickDedup struct {
	client *redis.Client
}

// NewClickDedup creates a ClickDedup wrapping the given Redis client.
func NewClickDedup(client *redis.Client) *ClickDedup {
	return &ClickDedup{client: client}
}

var _ ports.ClickDedup = (*ClickDedup)(nil)

// IsDuplicate reports whether this device already reported code recently.
func (d *ClickDedup) IsDuplicate(ctx context.Context, device, code string) (bool, error) {
	n, err := d.client.Exists(ctx, clickKey(device, code)).Result()
	if err != nil {
		return false, fmt.Errorf("click dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records the click (expires after clickDedupTTL).
func (d *ClickDedup) Mark(ctx context.Context, device, code string) error {
	return d.client.Set(ctx, clickKey(device, code), "1", clickDedupTTL).Err()
}

func clickKey(device, code string) string {
	return fmt.Sprintf("affclick:%s:%s", device, code)
}
