package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

// AffiliateTracker records affiliate link visits so a later add-to-cart can
// credit the affiliate.
type AffiliateTracker struct {
	backend     ports.AffiliateBackend
	attribution ports.AttributionStore
	dedup       ports.ClickDedup
	expirer     ports.SessionExpirer
	log         zerolog.Logger
}

// NewAffiliateTracker returns an AffiliateTracker. expirer may be nil.
func NewAffiliateTracker(
	backend ports.AffiliateBackend,
	attribution ports.AttributionStore,
	dedup ports.ClickDedup,
	expirer ports.SessionExpirer,
	log zerolog.Logger,
) *AffiliateTracker {
	return &AffiliateTracker{
		backend:     backend,
		attribution: attribution,
		dedup:       dedup,
		expirer:     expirer,
		log:         log,
	}
}

var _ ports.AffiliateService = (*AffiliateTracker)(nil)

// Track reports a click on an affiliate code and returns the product it
// points at. A repeated click from the same device within the dedup window
// is not reported again and returns an empty product id.
func (t *AffiliateTracker) Track(ctx context.Context, device string, session *domain.Session, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("track click: %w: empty affiliate code", domain.ErrBackendRejected)
	}

	dup, err := t.dedup.IsDuplicate(ctx, device, code)
	if err != nil {
		// Fail open: an extra click report beats a lost attribution.
		t.log.Warn().Err(err).Str("device", device).Msg("click dedup check failed")
	}
	if dup {
		t.log.Debug().Str("device", device).Str("code", code).Msg("duplicate affiliate click skipped")
		return "", nil
	}

	token := tokenOf(session)
	productID, err := t.backend.TrackClick(ctx, token, code)
	if err != nil {
		if token != "" && errors.Is(err, domain.ErrUnauthorized) && t.expirer != nil {
			if expErr := t.expirer.Expire(ctx, device, token); expErr != nil {
				t.log.Error().Err(expErr).Str("device", device).Msg("failed to expire rejected session")
			}
		}
		return "", fmt.Errorf("track click: %w", err)
	}

	if productID != "" {
		if err := t.attribution.Record(ctx, device, productID, code); err != nil {
			t.log.Warn().Err(err).Str("device", device).Str("product_id", productID).Msg("failed to record attribution")
		}
	}
	if err := t.dedup.Mark(ctx, device, code); err != nil {
		t.log.Warn().Err(err).Str("device", device).Msg("failed to mark click")
	}

	t.log.Info().Str("device", device).Str("code", code).Str("product_id", productID).Msg("affiliate click tracked")
	return productID, nil
}
