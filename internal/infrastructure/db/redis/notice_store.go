package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

const (
	defaultNoticeTTL = 10 * time.Minute
	// maxPendingNotices caps the list so an idle device cannot grow it forever.
	maxPendingNotices = 20
)

// NoticeStore queues transient notices per device until the client drains
// them. Key format: notices:<device>
type NoticeStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewNoticeStore(client *redis.Client, ttl time.Duration) *NoticeStore {
	if ttl <= 0 {
		ttl = defaultNoticeTTL
	}
	return &NoticeStore{client: client, ttl: ttl}
}

var _ ports.NoticeStore = (*NoticeStore)(nil)

func (s *NoticeStore) Notify(ctx context.Context, device string, n domain.Notice) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notice: %w", err)
	}
	key := noticeKey(device)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.LTrim(ctx, key, -maxPendingNotices, -1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("push notice: %w", err)
	}
	return nil
}

// Drain returns and deletes every pending notice in one transaction, so a
// notice is delivered at most once.
func (s *NoticeStore) Drain(ctx context.Context, device string) ([]domain.Notice, error) {
	key := noticeKey(device)
	var pending *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pending = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("drain notices: %w", err)
	}
	return decodeNotices(pending.Val())
}

func decodeNotices(raw []string) ([]domain.Notice, error) {
	out := make([]domain.Notice, 0, len(raw))
	for _, r := range raw {
		var n domain.Notice
		if err := json.Unmarshal([]byte(r), &n); err != nil {
			return nil, fmt.Errorf("decode notice: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

func noticeKey(device string) string {
	return "notices:" + device
}
