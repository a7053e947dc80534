package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

// GuestCartPolicy decides what happens to a guest cart when its device
// signs in.
type GuestCartPolicy string

const (
	// GuestCartAdopt shows the server cart as-is and leaves the guest cart
	// stored, to reappear after logout.
	GuestCartAdopt GuestCartPolicy = "adopt"
	// GuestCartMerge copies guest lines for products the server cart lacks,
	// then deletes the guest cart.
	GuestCartMerge GuestCartPolicy = "merge"
)

// ParseGuestCartPolicy accepts "adopt" or "merge".
func ParseGuestCartPolicy(s string) (GuestCartPolicy, error) {
	switch p := GuestCartPolicy(s); p {
	case GuestCartAdopt, GuestCartMerge:
		return p, nil
	}
	return "", fmt.Errorf("unknown guest cart policy %q", s)
}

const defaultCartIdleTTL = 30 * time.Minute

// cartSession is the cart view of one device.
type cartSession struct {
	mu    sync.Mutex
	state domain.CartState
	// token identifies whose cart state holds; empty means guest.
	token  string
	loaded bool
	// generation increments on every load; a load whose generation is no
	// longer current discards its result.
	generation uint64
	// loadDone is closed when the in-flight load finishes.
	loadDone chan struct{}
	lastUsed time.Time
}

// CartEngine owns every device's cart and keeps it consistent with identity
// changes. Authenticated carts live on the backend; guest carts live in the
// guest cart store.
type CartEngine struct {
	backend     ports.CartBackend
	guests      ports.GuestCartStore
	attribution ports.AttributionStore
	notifier    ports.Notifier
	expirer     ports.SessionExpirer
	log         zerolog.Logger
	policy      GuestCartPolicy
	idleTTL     time.Duration
	now         func() time.Time
	newID       func() string

	mu       sync.Mutex
	sessions map[string]*cartSession
}

// NewCartEngine returns a CartEngine. attribution and expirer may be nil.
func NewCartEngine(
	backend ports.CartBackend,
	guests ports.GuestCartStore,
	attribution ports.AttributionStore,
	notifier ports.Notifier,
	expirer ports.SessionExpirer,
	policy GuestCartPolicy,
	idleTTL time.Duration,
	log zerolog.Logger,
) *CartEngine {
	if policy == "" {
		policy = GuestCartAdopt
	}
	if idleTTL <= 0 {
		idleTTL = defaultCartIdleTTL
	}
	return &CartEngine{
		backend:     backend,
		guests:      guests,
		attribution: attribution,
		notifier:    notifier,
		expirer:     expirer,
		log:         log,
		policy:      policy,
		idleTTL:     idleTTL,
		now:         time.Now,
		newID:       uuid.NewString,
		sessions:    make(map[string]*cartSession),
	}
}

var _ ports.CartService = (*CartEngine)(nil)

// Start evicts idle cart views until ctx is cancelled. It blocks.
func (e *CartEngine) Start(ctx context.Context) {
	ticker := time.NewTicker(e.idleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := e.evictIdle(); n > 0 {
				e.log.Debug().Int("evicted", n).Msg("idle cart views evicted")
			}
		}
	}
}

func (e *CartEngine) evictIdle() int {
	cutoff := e.now().Add(-e.idleTTL)
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for device, cs := range e.sessions {
		if cs.lastUsed.Before(cutoff) {
			delete(e.sessions, device)
			n++
		}
	}
	return n
}

func (e *CartEngine) session(device string) *cartSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	cs, ok := e.sessions[device]
	if !ok {
		cs = &cartSession{state: domain.CartState{Items: []domain.CartItem{}}}
		e.sessions[device] = cs
	}
	cs.lastUsed = e.now()
	return cs
}

// Sync loads the cart belonging to session (nil for a guest) and makes it
// the device's view. A guest-to-member transition applies the guest cart
// policy first.
func (e *CartEngine) Sync(ctx context.Context, device string, session *domain.Session) (domain.CartState, error) {
	return e.load(ctx, e.session(device), device, tokenOf(session))
}

func (e *CartEngine) load(ctx context.Context, cs *cartSession, device, token string) (domain.CartState, error) {
	cs.mu.Lock()
	if cs.token != "" && cs.token != token {
		// Never show one member's lines to whoever comes next.
		cs.state = domain.Reduce(cs.state, domain.ClearCart{})
	}
	cs.generation++
	gen := cs.generation
	cs.token = token
	cs.state = domain.Reduce(cs.state, domain.SetLoading{Loading: true})
	done := make(chan struct{})
	cs.loadDone = done
	cs.mu.Unlock()

	var (
		items []domain.CartItem
		err   error
	)
	if token != "" {
		if e.policy == GuestCartMerge {
			if mergeErr := e.mergeGuest(ctx, device, token); mergeErr != nil {
				e.log.Warn().Err(mergeErr).Str("device", device).Msg("guest cart merge incomplete")
			}
		}
		items, err = e.backend.FetchCart(ctx, token)
	} else {
		items, err = e.guests.Load(ctx, device)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.generation != gen {
		// A newer load owns the view and will close its own channel.
		close(done)
		return cs.state.Clone(), nil
	}
	defer close(done)

	if err != nil {
		cs.state = domain.Reduce(cs.state, domain.SetLoading{Loading: false})
		if token != "" && errors.Is(err, domain.ErrUnauthorized) {
			e.dropMember(ctx, cs, device, token)
			return cs.state.Clone(), fmt.Errorf("load cart: %w", err)
		}
		e.log.Warn().Err(err).Str("device", device).Bool("member", token != "").Msg("cart load failed")
		notify(ctx, e.notifier, e.log, device, domain.Notice{
			Level:       domain.NoticeError,
			Title:       "Cart unavailable",
			Description: "We could not load your cart. Please try again.",
		})
		return cs.state.Clone(), fmt.Errorf("load cart: %w", err)
	}

	cs.state = domain.Reduce(cs.state, domain.SetCart{Items: items})
	cs.state = domain.Reduce(cs.state, domain.SetLoading{Loading: false})
	cs.loaded = true
	return cs.state.Clone(), nil
}

// mergeGuest posts guest lines for products the server cart does not hold.
// Products already on the server are skipped, so retrying a partial merge
// never counts a line twice.
func (e *CartEngine) mergeGuest(ctx context.Context, device, token string) error {
	guest, err := e.guests.Load(ctx, device)
	if err != nil {
		return fmt.Errorf("load guest cart: %w", err)
	}
	if len(guest) == 0 {
		return nil
	}

	server, err := e.backend.FetchCart(ctx, token)
	if err != nil {
		return fmt.Errorf("fetch server cart: %w", err)
	}
	present := make(map[string]bool, len(server))
	for _, it := range server {
		present[it.ProductID] = true
	}

	merged := 0
	for _, it := range guest {
		if present[it.ProductID] || it.Quantity < 1 {
			continue
		}
		line := ports.NewCartLine{ProductID: it.ProductID, Quantity: it.Quantity, AffiliateID: it.AffiliateID}
		if err := e.backend.AddItem(ctx, token, line); err != nil {
			return fmt.Errorf("merge product %s: %w", it.ProductID, err)
		}
		present[it.ProductID] = true
		merged++
	}

	if err := e.guests.Clear(ctx, device); err != nil {
		return fmt.Errorf("clear guest cart: %w", err)
	}
	e.log.Info().Str("device", device).Int("merged", merged).Int("guest_lines", len(guest)).Msg("guest cart merged")
	return nil
}

// acquire returns the device's view locked, loaded for token and not
// loading. The caller must unlock cs.mu.
func (e *CartEngine) acquire(ctx context.Context, device, token string) (*cartSession, error) {
	cs := e.session(device)
	for {
		cs.mu.Lock()
		if cs.state.Loading {
			done := cs.loadDone
			cs.mu.Unlock()
			select {
			case <-done:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if cs.loaded && cs.token == token {
			return cs, nil
		}
		cs.mu.Unlock()
		if _, err := e.load(ctx, cs, device, token); err != nil {
			return nil, err
		}
	}
}

// AddItem adds quantity of a product. A member's existing line is updated
// to the summed quantity instead of gaining a second line.
func (e *CartEngine) AddItem(ctx context.Context, device string, session *domain.Session, item domain.CartItem) (domain.CartState, error) {
	if item.Quantity < 1 {
		return domain.CartState{}, domain.ErrInvalidQuantity
	}
	if item.AffiliateID == "" {
		item.AffiliateID = e.lookupAttribution(ctx, device, item.ProductID)
	}

	token := tokenOf(session)
	cs, err := e.acquire(ctx, device, token)
	if err != nil {
		return domain.CartState{}, err
	}
	defer cs.mu.Unlock()

	if token == "" {
		if item.ID == "" {
			item.ID = e.newID()
		}
		return e.applyGuest(ctx, cs, device, domain.AddItem{Item: item})
	}

	return e.applyMember(ctx, cs, device, token, "add", func() error {
		if line, ok := cs.state.Find(item.ProductID); ok && line.ID != "" {
			return e.backend.UpdateItem(ctx, token, line.ID, line.Quantity+item.Quantity)
		}
		return e.backend.AddItem(ctx, token, ports.NewCartLine{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			AffiliateID: item.AffiliateID,
		})
	})
}

// UpdateQuantity sets a line's quantity. Quantities below one are rejected;
// use RemoveItem to drop a line.
func (e *CartEngine) UpdateQuantity(ctx context.Context, device string, session *domain.Session, productID string, quantity int) (domain.CartState, error) {
	if quantity < 1 {
		return domain.CartState{}, domain.ErrInvalidQuantity
	}

	token := tokenOf(session)
	cs, err := e.acquire(ctx, device, token)
	if err != nil {
		return domain.CartState{}, err
	}
	defer cs.mu.Unlock()

	line, ok := cs.state.Find(productID)
	if !ok {
		return cs.state.Clone(), domain.ErrItemNotFound
	}

	if token == "" {
		return e.applyGuest(ctx, cs, device, domain.UpdateQuantity{ProductID: productID, Quantity: quantity})
	}
	return e.applyMember(ctx, cs, device, token, "update", func() error {
		return e.backend.UpdateItem(ctx, token, line.ID, quantity)
	})
}

// RemoveItem drops a product's line. Removing an absent product is a no-op.
func (e *CartEngine) RemoveItem(ctx context.Context, device string, session *domain.Session, productID string) (domain.CartState, error) {
	token := tokenOf(session)
	cs, err := e.acquire(ctx, device, token)
	if err != nil {
		return domain.CartState{}, err
	}
	defer cs.mu.Unlock()

	if token == "" {
		return e.applyGuest(ctx, cs, device, domain.RemoveItem{ProductID: productID})
	}
	return e.applyMember(ctx, cs, device, token, "remove", func() error {
		return e.backend.RemoveItem(ctx, token, productID)
	})
}

// Clear empties the cart.
func (e *CartEngine) Clear(ctx context.Context, device string, session *domain.Session) (domain.CartState, error) {
	token := tokenOf(session)
	cs, err := e.acquire(ctx, device, token)
	if err != nil {
		return domain.CartState{}, err
	}
	defer cs.mu.Unlock()

	if token == "" {
		return e.applyGuest(ctx, cs, device, domain.ClearCart{})
	}
	return e.applyMember(ctx, cs, device, token, "clear", func() error {
		return e.backend.ClearCart(ctx, token)
	})
}

// applyGuest reduces and persists. cs.mu must be held. If the write fails
// the view is rolled back so it keeps matching what is stored.
func (e *CartEngine) applyGuest(ctx context.Context, cs *cartSession, device string, action domain.CartAction) (domain.CartState, error) {
	prev := cs.state
	cs.state = domain.Reduce(cs.state, action)

	if err := e.persistGuest(ctx, cs, device); err != nil {
		cs.state = prev
		e.log.Warn().Err(err).Str("device", device).Msg("guest cart write failed")
		notify(ctx, e.notifier, e.log, device, domain.Notice{
			Level:       domain.NoticeError,
			Title:       "Cart not updated",
			Description: "Your cart could not be saved. Please try again.",
		})
		return cs.state.Clone(), fmt.Errorf("save guest cart: %w", err)
	}
	return cs.state.Clone(), nil
}

// persistGuest writes the guest view. Nothing is written while a load is in
// flight, so a not-yet-loaded view can never overwrite stored lines.
func (e *CartEngine) persistGuest(ctx context.Context, cs *cartSession, device string) error {
	if cs.state.Loading || cs.token != "" {
		return nil
	}
	if len(cs.state.Items) == 0 {
		return e.guests.Clear(ctx, device)
	}
	return e.guests.Save(ctx, device, cs.state.Items)
}

// applyMember runs a backend mutation and then adopts the server's cart.
// cs.mu must be held. On any failure the view is left untouched.
func (e *CartEngine) applyMember(ctx context.Context, cs *cartSession, device, token, op string, mutate func() error) (domain.CartState, error) {
	err := mutate()
	var items []domain.CartItem
	if err == nil {
		items, err = e.backend.FetchCart(ctx, token)
	}
	if err != nil {
		e.log.Warn().Err(err).Str("device", device).Str("op", op).Msg("cart mutation failed")
		if errors.Is(err, domain.ErrUnauthorized) {
			e.dropMember(ctx, cs, device, token)
		} else {
			notify(ctx, e.notifier, e.log, device, domain.Notice{
				Level:       domain.NoticeError,
				Title:       "Cart not updated",
				Description: userMessage(err, "Something went wrong updating your cart. Please try again."),
			})
		}
		return cs.state.Clone(), fmt.Errorf("cart %s: %w", op, err)
	}

	cs.state = domain.Reduce(cs.state, domain.SetCart{Items: items})
	return cs.state.Clone(), nil
}

// dropMember ends a session whose token the backend rejected and turns the
// view back into an unloaded guest view. cs.mu must be held.
func (e *CartEngine) dropMember(ctx context.Context, cs *cartSession, device, token string) {
	if e.expirer != nil {
		if err := e.expirer.Expire(ctx, device, token); err != nil {
			e.log.Error().Err(err).Str("device", device).Msg("failed to expire rejected session")
		}
	}
	if cs.token != token {
		return
	}
	cs.state = domain.Reduce(cs.state, domain.ClearCart{})
	cs.token = ""
	cs.loaded = false
}

func (e *CartEngine) lookupAttribution(ctx context.Context, device, productID string) string {
	if e.attribution == nil {
		return ""
	}
	code, err := e.attribution.Lookup(ctx, device, productID)
	if err != nil {
		e.log.Warn().Err(err).Str("device", device).Str("product_id", productID).Msg("attribution lookup failed")
		return ""
	}
	return code
}

func tokenOf(session *domain.Session) string {
	if !session.Valid() {
		return ""
	}
	return session.Token
}
