package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

// notify delivers n best-effort; a notice that cannot be stored is logged.
func notify(ctx context.Context, notifier ports.Notifier, log zerolog.Logger, device string, n domain.Notice) {
	if notifier == nil {
		return
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if err := notifier.Notify(ctx, device, n); err != nil {
		log.Warn().Err(err).Str("device", device).Str("title", n.Title).Msg("failed to deliver notice")
	}
}
