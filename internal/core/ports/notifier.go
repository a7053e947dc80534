package ports

import (
	"context"

	"github.com/afripulse/storefront-session/internal/core/domain"
)

// Notifier delivers transient notices to a device.
type Notifier interface {
	Notify(ctx context.Context, device string, n domain.Notice) error
}

// NoticeStore is a Notifier whose pending notices can be drained.
type NoticeStore interface {
	Notifier
	Drain(ctx context.Context, device string) ([]domain.Notice, error)
}

// AttributionStore remembers which affiliate code brought a device to a product.
type AttributionStore interface {
	Record(ctx context.Context, device, productID, code string) error
	Lookup(ctx context.Context, device, productID string) (string, error)
}

// ClickDedup suppresses repeated affiliate click tracking.
type ClickDedup interface {
	IsDuplicate(ctx context.Context, device, code string) (bool, error)
	Mark(ctx context.Context, device, code string) error
}

// TaskQueue runs best-effort work outside the request lifecycle, in order
// per device.
type TaskQueue interface {
	Enqueue(device string, task func(ctx context.Context))
}
