package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Registry hands out exactly one cart per user session.
type Registry struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[uuid.UUID]*Cart)}
}

// Get returns the user's cart, creating it on first use.
func (r *Registry) Get(userID uuid.UUID) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart, ok := r.carts[userID]; ok {
		return cart
	}
	cart := New()
	r.carts[userID] = cart
	return cart
}

// Drop discards the user's cart entirely, e.g. on logout.
func (r *Registry) Drop(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
}
