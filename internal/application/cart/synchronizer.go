package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/craveup/leclerc-storefront/internal/domain/cart"
	"github.com/craveup/leclerc-storefront/internal/domain/menu"
	"github.com/craveup/leclerc-storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// Notification copy
const (
	AddedDescription      = "Tap the cart to review your order."
	DiscountRejectedError = "Discount code could not be applied."
)

// Dependencies are the collaborators shared by every session's synchronizer
type Dependencies struct {
	API        cart.API
	Identities cart.IdentityStore
	Notifier   cart.Notifier
	Logger     *zap.Logger
}

// Synchronizer owns the cart state of one shopper session and keeps it in
// step with the remote cart resource. Every successful mutation is followed
// by a full re-fetch; local state is never patched optimistically.
//
// Concurrent calls are allowed. Superseded requests are not cancelled, so
// the last response to resolve wins.
type Synchronizer struct {
	sessionID         string
	locationID        string
	fulfillmentMethod string

	api        cart.API
	identities cart.IdentityStore
	notifier   cart.Notifier
	logger     *zap.Logger

	mu       sync.RWMutex
	current  cart.Cart
	cartID   string
	errMsg   string
	open     bool
	lastUsed time.Time

	fetching atomic.Int32
	mutating atomic.Int32
}

// NewSynchronizer creates a synchronizer for one session at one location
func NewSynchronizer(sessionID, locationID, fulfillmentMethod string, deps Dependencies) *Synchronizer {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if fulfillmentMethod == "" {
		fulfillmentMethod = cart.DefaultFulfillmentMethod
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}

	return &Synchronizer{
		sessionID:         sessionID,
		locationID:        locationID,
		fulfillmentMethod: fulfillmentMethod,
		api:               deps.API,
		identities:        deps.Identities,
		notifier:          notifier,
		logger:            logger.With(zap.String("session_id", sessionID), zap.String("location_id", locationID)),
		current:           cart.Project(nil, "", locationID),
		lastUsed:          time.Now(),
	}
}

// SessionID returns the session this synchronizer serves
func (s *Synchronizer) SessionID() string {
	return s.sessionID
}

// LocationID returns the location carts are created at
func (s *Synchronizer) LocationID() string {
	return s.locationID
}

func (s *Synchronizer) identityKey() cart.IdentityKey {
	return cart.NewIdentityKey(s.sessionID, s.locationID, s.fulfillmentMethod)
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// State returns a snapshot of the derived cart values
func (s *Synchronizer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]cart.CartItem, len(s.current.Items))
	copy(items, s.current.Items)

	state := State{
		Items:       items,
		ItemCount:   s.current.ItemCount,
		Subtotal:    s.current.Subtotal,
		Tax:         s.current.Tax,
		Total:       s.current.Total,
		IsLoading:   s.IsLoading(),
		IsCartOpen:  s.open,
		LocationID:  s.locationID,
		CheckoutURL: s.current.CheckoutURL,
	}
	if s.errMsg != "" {
		msg := s.errMsg
		state.Error = &msg
	}
	if s.cartID != "" {
		id := s.cartID
		state.CartID = &id
	}
	return state
}

// IsLoading is true while a fetch or a mutation is in flight
func (s *Synchronizer) IsLoading() bool {
	return s.fetching.Load() > 0 || s.mutating.Load() > 0
}

// LastUsed returns when the session last touched this synchronizer
func (s *Synchronizer) LastUsed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUsed
}

// Touch marks the synchronizer as used now
func (s *Synchronizer) Touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// ---------------------------------------------------------------------------
// UI state
// ---------------------------------------------------------------------------

// ClearError drops the recorded error
func (s *Synchronizer) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

// OpenCart marks the cart drawer as open
func (s *Synchronizer) OpenCart() {
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
}

// CloseCart marks the cart drawer as closed
func (s *Synchronizer) CloseCart() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Fetching
// ---------------------------------------------------------------------------

// Refresh re-fetches the remote cart and replaces local state with it.
// A session without a stored cart gets a new one. A stored cart the remote
// no longer knows is forgotten and replaced once.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.fetching.Add(1)
	defer s.fetching.Add(-1)

	if s.locationID == "" {
		s.recordError(cart.ErrCartNotReady)
		return cart.ErrCartNotReady
	}

	key := s.identityKey()
	cartID, ok, err := s.identities.Get(ctx, key)
	if err != nil {
		s.logger.Error("failed to read cart identity", zap.Error(err))
		s.recordError(err)
		return fmt.Errorf("read cart identity: %w", err)
	}
	if !ok {
		if cartID, err = s.createCart(ctx, key); err != nil {
			s.recordError(err)
			return err
		}
	}

	remote, err := s.api.GetCart(ctx, s.locationID, cartID)
	var remoteErr *shared.RemoteError
	if errors.As(err, &remoteErr) && remoteErr.NotFound() {
		s.logger.Info("stored cart no longer exists, creating a new one", zap.String("cart_id", cartID))
		if clearErr := s.identities.Clear(ctx, key); clearErr != nil {
			s.logger.Warn("failed to clear stale cart identity", zap.Error(clearErr))
		}
		if cartID, err = s.createCart(ctx, key); err != nil {
			s.recordError(err)
			return err
		}
		remote, err = s.api.GetCart(ctx, s.locationID, cartID)
	}
	if err != nil {
		s.logger.Warn("failed to fetch cart", zap.String("cart_id", cartID), zap.Error(err))
		s.recordError(err)
		return err
	}

	s.mu.Lock()
	s.cartID = cartID
	s.current = cart.Project(remote, cartID, s.locationID)
	s.mu.Unlock()
	return nil
}

func (s *Synchronizer) createCart(ctx context.Context, key cart.IdentityKey) (string, error) {
	created, err := s.api.CreateCart(ctx, s.locationID, s.fulfillmentMethod)
	if err != nil {
		s.logger.Warn("failed to create cart", zap.Error(err))
		return "", err
	}
	cartID := created.Identifier()
	if cartID == "" {
		return "", shared.NewDomainError("CART_CREATE_FAILED", shared.GenericErrorMessage)
	}
	if err := s.identities.Set(ctx, key, cartID); err != nil {
		s.logger.Warn("failed to persist cart identity", zap.String("cart_id", cartID), zap.Error(err))
	}
	s.logger.Info("cart created", zap.String("cart_id", cartID))
	return cartID, nil
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// HasCart reports whether the session has a location and a stored cart id.
// Unlike the mutation guard it records nothing.
func (s *Synchronizer) HasCart(ctx context.Context) bool {
	if s.locationID == "" {
		return false
	}
	cartID, ok, err := s.identities.Get(ctx, s.identityKey())
	return err == nil && ok && cartID != ""
}

// ready returns the active cart id, or records ErrCartNotReady
func (s *Synchronizer) ready(ctx context.Context) (string, bool) {
	if s.locationID == "" {
		s.recordError(cart.ErrCartNotReady)
		return "", false
	}
	cartID, ok, err := s.identities.Get(ctx, s.identityKey())
	if err != nil {
		s.logger.Warn("failed to read cart identity", zap.Error(err))
	}
	if err != nil || !ok || cartID == "" {
		s.recordError(cart.ErrCartNotReady)
		return "", false
	}
	return cartID, true
}

// AddItem adds one unit of a menu item to the cart. The options are kept for
// display only; the remote line is always created without selections.
func (s *Synchronizer) AddItem(ctx context.Context, item menu.MenuItem, options cart.ItemOptions) error {
	cartID, ok := s.ready(ctx)
	if !ok {
		return cart.ErrCartNotReady
	}

	s.mutating.Add(1)
	defer s.mutating.Add(-1)

	if err := s.api.AddCartItem(ctx, s.locationID, cartID, cart.NewAddItemRequest(item.ID)); err != nil {
		message := s.recordError(err)
		s.notifier.Error(ctx, s.sessionID, message)
		return err
	}

	s.logger.Debug("item added",
		zap.String("product_id", item.ID),
		zap.String("warming", options.Warming),
		zap.String("packaging", options.Packaging),
	)
	s.refetch(ctx, "add_item")
	s.notifier.Success(ctx, s.sessionID, item.Name+" added to cart", AddedDescription)
	return nil
}

// UpdateQuantity sets the quantity of a cart line. Zero removes the line.
func (s *Synchronizer) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	cartID, ok := s.ready(ctx)
	if !ok {
		return cart.ErrCartNotReady
	}
	if quantity < 0 {
		s.recordError(cart.ErrInvalidQuantity)
		return cart.ErrInvalidQuantity
	}

	s.mutating.Add(1)
	defer s.mutating.Add(-1)

	if err := s.api.UpdateCartItemQuantity(ctx, s.locationID, cartID, lineID, quantity); err != nil {
		s.recordError(err)
		return err
	}

	s.refetch(ctx, "update_quantity")
	return nil
}

// RemoveItem removes a cart line
func (s *Synchronizer) RemoveItem(ctx context.Context, lineID string) error {
	return s.UpdateQuantity(ctx, lineID, 0)
}

// ApplyDiscount applies a discount code to the cart
func (s *Synchronizer) ApplyDiscount(ctx context.Context, code string) (*cart.DiscountResult, error) {
	cartID, ok := s.ready(ctx)
	if !ok {
		return nil, cart.ErrCartNotReady
	}
	code = strings.TrimSpace(code)
	if code == "" {
		s.recordError(cart.ErrEmptyDiscountCode)
		return nil, cart.ErrEmptyDiscountCode
	}

	s.mutating.Add(1)
	defer s.mutating.Add(-1)

	result, err := s.api.ApplyDiscount(ctx, s.locationID, cartID, code)
	if err != nil {
		message := s.recordError(err)
		s.notifier.Error(ctx, s.sessionID, message)
		return nil, err
	}
	if !result.DiscountApplied {
		s.setError(DiscountRejectedError)
		s.notifier.Error(ctx, s.sessionID, DiscountRejectedError)
		return result, nil
	}

	s.refetch(ctx, "apply_discount")
	s.notifier.Success(ctx, s.sessionID, "Discount "+code+" applied", "")
	return result, nil
}

// Clear forgets the session's cart, closes the drawer and fetches a fresh cart
func (s *Synchronizer) Clear(ctx context.Context) error {
	if s.locationID != "" {
		if err := s.identities.Clear(ctx, s.identityKey()); err != nil {
			s.logger.Warn("failed to clear cart identity", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.cartID = ""
	s.current = cart.Project(nil, "", s.locationID)
	s.open = false
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// refetch reloads the cart after a successful mutation. The mutation stands
// even when the reload fails; Refresh has already recorded the error.
func (s *Synchronizer) refetch(ctx context.Context, operation string) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("cart refetch after mutation failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
	}
}

// recordError stores the shopper-facing message for err and returns it
func (s *Synchronizer) recordError(err error) string {
	message := shared.UserMessage(err)
	s.setError(message)
	return message
}

func (s *Synchronizer) setError(message string) {
	s.mu.Lock()
	s.errMsg = message
	s.mu.Unlock()
}

type nopNotifier struct{}

func (nopNotifier) Success(context.Context, string, string, string) {}
func (nopNotifier) Error(context.Context, string, string) {}
