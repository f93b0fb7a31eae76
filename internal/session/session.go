// Package session holds the identity of the storefront user: the bearer
// token and the user record, persisted in a KeyValueStore under the keys
// "token" and "user".
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"food-order-service/internal/client"
	"food-order-service/internal/entity"
)

const (
	TokenKey = "token"
	UserKey  = "user"
)

// Authenticator is the part of the backend API a session needs.
type Authenticator interface {
	Login(ctx context.Context, phoneNumber, password string) (*client.AuthResult, error)
	Register(ctx context.Context, r client.RegisterRequest) (*entity.User, error)
}

// Listener is called with the new user (nil after logout) whenever the
// identity changes.
type Listener func(user *entity.User)

type Session struct {
	auth  Authenticator
	store KeyValueStore

	mu        sync.RWMutex
	token     string
	user      *entity.User
	listeners map[int]Listener
	nextID    int
}

func New(auth Authenticator, store KeyValueStore) *Session {
	return &Session{
		auth:      auth,
		store:     store,
		listeners: make(map[int]Listener),
	}
}

// Token returns the current bearer token or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, or nil when logged out.
func (s *Session) User() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// UserID returns the current user's id, or 0 when logged out.
func (s *Session) UserID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return 0
	}
	return s.user.ID
}

// Subscribe registers fn for identity changes and returns a function that
// removes it.
func (s *Session) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) Login(ctx context.Context, phoneNumber, password string) (*entity.User, error) {
	res, err := s.auth.Login(ctx, phoneNumber, password)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, res.Token, &res.User); err != nil {
		return nil, err
	}
	s.set(res.Token, &res.User)
	return s.User(), nil
}

// Register creates the account and then logs in with the same credentials.
func (s *Session) Register(ctx context.Context, r client.RegisterRequest) (*entity.User, error) {
	if _, err := s.auth.Register(ctx, r); err != nil {
		return nil, err
	}
	return s.Login(ctx, r.PhoneNumber, r.Password)
}

// Restore loads a previously persisted session. A missing or unreadable
// session leaves the user logged out and is not an error.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.store.Get(ctx, TokenKey)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	raw, err := s.store.Get(ctx, UserKey)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	var u entity.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID <= 0 {
		_ = s.store.Delete(ctx, TokenKey, UserKey)
		return nil
	}
	s.set(token, &u)
	return nil
}

// Logout forgets the identity locally. The remote cart is kept.
func (s *Session) Logout(ctx context.Context) error {
	err := s.store.Delete(ctx, TokenKey, UserKey)
	s.set("", nil)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *Session) persist(ctx context.Context, token string, u *entity.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, UserKey, string(raw)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := s.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// set replaces the identity and notifies listeners when the user changed.
func (s *Session) set(token string, u *entity.User) {
	s.mu.Lock()
	prevID := 0
	if s.user != nil {
		prevID = s.user.ID
	}
	s.token = token
	s.user = u
	newID := 0
	if u != nil {
		newID = u.ID
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	if prevID == newID {
		return
	}
	for _, l := range listeners {
		l(s.User())
	}
}
