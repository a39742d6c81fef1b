package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/shopfront/store-api/internal/core/domain"
	"github.com/shopfront/store-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu       sync.Mutex
	byHandle map[string]*domain.User
	findErr  error
	seq      int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byHandle: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byHandle[user.Handle]; exists {
		return nil, domain.ErrDuplicateHandle
	}
	r.seq++
	created := cloneUser(user)
	created.ID = "u" + strconv.Itoa(r.seq)
	r.byHandle[created.Handle] = created
	return cloneUser(created), nil
}

func (r *stubUserRepo) FindByHandle(_ context.Context, handle string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byHandle[handle]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byHandle {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// seed stores a user directly, bypassing hashing.
func (r *stubUserRepo) seed(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byHandle[u.Handle] = cloneUser(u)
}

// ---------------------------------------------------------------------------
// In-memory cart repository with version compare-and-swap
// ---------------------------------------------------------------------------

type stubCartRepo struct {
	mu        sync.Mutex
	carts     map[string]*domain.Cart
	findErr   error
	mutateErr error
	mutations int
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{carts: make(map[string]*domain.Cart)}
}

func (r *stubCartRepo) FindByUser(_ context.Context, userID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.carts[userID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return c.Clone(), nil
}

func (r *stubCartRepo) Mutate(_ context.Context, userID string, upsert bool, fn ports.CartMutation) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mutateErr != nil {
		return nil, r.mutateErr
	}
	current, ok := r.carts[userID]
	if !ok {
		if !upsert {
			return nil, domain.ErrCartNotFound
		}
		current = domain.NewCart(userID)
		current.CreatedAt = time.Now().UTC()
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Version++
	next.UpdatedAt = time.Now().UTC()
	r.carts[userID] = next
	r.mutations++
	return next.Clone(), nil
}

func (r *stubCartRepo) Delete(_ context.Context, userID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	delete(r.carts, userID)
	return c, nil
}

func (r *stubCartRepo) snapshot(userID string) *domain.Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.carts[userID].Clone()
}

// ---------------------------------------------------------------------------
// Notifier and locker
// ---------------------------------------------------------------------------

type stubNotifier struct {
	mu    sync.Mutex
	err   error
	delay time.Duration
	sent  []domain.Notification
	// during runs inside Notify, before the message is recorded.
	during func(ctx context.Context)
}

func (n *stubNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	if n.delay > 0 {
		select {
		case <-time.After(n.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if n.during != nil {
		n.during(ctx)
	}
	if n.err != nil {
		return n.err
	}
	n.mu.Lock()
	n.sent = append(n.sent, msg)
	n.mu.Unlock()
	return nil
}

func (n *stubNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type stubLocker struct {
	mu         sync.Mutex
	held       map[string]bool
	acquireErr error
	released   int
}

func newStubLocker() *stubLocker {
	return &stubLocker{held: make(map[string]bool)}
}

func (l *stubLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.acquireErr != nil {
		return nil, l.acquireErr
	}
	if l.held[key] {
		return nil, domain.ErrCheckoutInProgress
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released++
		return nil
	}, nil
}

var errStoreDown = errors.New("connection refused")
