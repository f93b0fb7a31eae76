// Package cart keeps the storefront's view of the current user's cart in
// step with the backend. The backend is the system of record: every
// mutation is sent there first and the local cart is then replaced by a
// full re-fetch.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"food-order-service/internal/apperr"
	"food-order-service/internal/entity"
	"food-order-service/internal/session"
)

//go:generate mockgen -destination=mocks/remote_store.go -package=mock_cart . RemoteStore

// RemoteStore is the backend cart API.
type RemoteStore interface {
	FetchCart(ctx context.Context, userID int) ([]entity.CartLine, error)
	AddItem(ctx context.Context, userID, productID, quantity int) error
	UpdateItem(ctx context.Context, userID, productID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID int) error
	ClearCart(ctx context.Context, userID int) error
}

// Observer is called with a copy of the cart after every replacement.
type Observer func(c entity.Cart)

type Engine struct {
	remote RemoteStore
	logger zerolog.Logger

	// mutation is held from the start of a remote call until its reload has
	// been applied, so mutations on one engine never interleave.
	mutation sync.Mutex

	mu        sync.RWMutex
	cart      entity.Cart
	observers map[int]Observer
	nextID    int
}

type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(remote RemoteStore, opts ...Option) *Engine {
	e := &Engine{
		remote:    remote,
		logger:    zerolog.Nop(),
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns a copy of the current cart.
func (e *Engine) Snapshot() entity.Cart {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cart.Clone()
}

// Subscribe registers fn and returns a function that removes it.
func (e *Engine) Subscribe(fn Observer) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.observers[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.observers, id)
		e.mu.Unlock()
	}
}

// Load replaces the local cart with the remote cart of userID. A userID of
// zero or less means nobody is logged in and yields an empty cart without any
// remote call. When the fetch fails the local cart becomes empty and the
// error is returned.
func (e *Engine) Load(ctx context.Context, userID int) error {
	e.mutation.Lock()
	defer e.mutation.Unlock()
	return e.reload(ctx, userID)
}

// Add puts quantity units of productID into the cart, merging with an
// existing line.
func (e *Engine) Add(ctx context.Context, userID, productID, quantity int) error {
	if userID <= 0 {
		return apperr.ErrNotAuthenticated
	}
	if quantity < 1 {
		return apperr.InvalidArgument("quantity must be at least 1, got %d", quantity)
	}
	return e.mutate(ctx, userID, "add item", func() error {
		return e.remote.AddItem(ctx, userID, productID, quantity)
	})
}

// Remove drops the line of productID. Without a user it does nothing.
func (e *Engine) Remove(ctx context.Context, userID, productID int) error {
	if userID <= 0 {
		return nil
	}
	return e.mutate(ctx, userID, "remove item", func() error {
		return e.remote.RemoveItem(ctx, userID, productID)
	})
}

// UpdateQuantity sets the quantity of productID's line. A quantity of zero
// or less removes the line.
func (e *Engine) UpdateQuantity(ctx context.Context, userID, productID, quantity int) error {
	if userID <= 0 {
		return nil
	}
	if quantity <= 0 {
		return e.Remove(ctx, userID, productID)
	}
	return e.mutate(ctx, userID, "update quantity", func() error {
		return e.remote.UpdateItem(ctx, userID, productID, quantity)
	})
}

// Clear empties the cart of userID.
func (e *Engine) Clear(ctx context.Context, userID int) error {
	if userID <= 0 {
		return nil
	}
	return e.mutate(ctx, userID, "clear cart", func() error {
		return e.remote.ClearCart(ctx, userID)
	})
}

// Bind keeps the engine on the session's user: the cart is loaded now and
// again whenever the identity changes, and emptied on logout. The returned
// function detaches the engine.
func (e *Engine) Bind(ctx context.Context, s *session.Session) func() {
	unsubscribe := s.Subscribe(func(u *entity.User) {
		userID := 0
		if u != nil {
			userID = u.ID
		}
		if err := e.Load(ctx, userID); err != nil {
			e.logger.Error().Err(err).Int("user_id", userID).Msg("reload cart after session change")
		}
	})
	if err := e.Load(ctx, s.UserID()); err != nil {
		e.logger.Error().Err(err).Int("user_id", s.UserID()).Msg("load cart")
	}
	return unsubscribe
}

// mutate runs call and, once it has returned successfully, reloads the
// cart. A failed call leaves the local cart as it was.
func (e *Engine) mutate(ctx context.Context, userID int, op string, call func() error) error {
	e.mutation.Lock()
	defer e.mutation.Unlock()

	if err := call(); err != nil {
		e.logger.Error().Err(err).Int("user_id", userID).Msgf("%s failed", op)
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := e.reload(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (e *Engine) reload(ctx context.Context, userID int) error {
	if userID <= 0 {
		e.replace(entity.Cart{})
		return nil
	}

	lines, err := e.remote.FetchCart(ctx, userID)
	if err != nil {
		e.logger.Error().Err(err).Int("user_id", userID).Msg("fetch cart failed")
		e.replace(entity.Cart{UserID: userID})
		return fmt.Errorf("load cart: %w", err)
	}

	e.replace(entity.Cart{UserID: userID, Lines: reconcile(lines)})
	e.logger.Debug().Int("user_id", userID).Int("lines", len(lines)).Msg("cart loaded")
	return nil
}

func (e *Engine) replace(c entity.Cart) {
	e.mu.Lock()
	e.cart = c
	observers := make([]Observer, 0, len(e.observers))
	for _, o := range e.observers {
		observers = append(observers, o)
	}
	e.mu.Unlock()

	for _, o := range observers {
		o(c.Clone())
	}
}

// reconcile drops lines with no units and merges repeated products into the
// first occurrence, keeping the server's order.
func reconcile(lines []entity.CartLine) []entity.CartLine {
	out := make([]entity.CartLine, 0, len(lines))
	seen := make(map[int]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if idx, ok := seen[l.ProductID]; ok {
			out[idx].Quantity += l.Quantity
			continue
		}
		seen[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}
