package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// MergeOutcome reports what happened to the session cart at sign-in.
type MergeOutcome string

const (
	MergeCompleted MergeOutcome = "merged"
	MergeSkipped   MergeOutcome = "skipped"
	MergeConflict  MergeOutcome = "conflict"
)

// CartMergeCoordinator moves an anonymous session cart to the user who just
// signed in. The session cart wins: any cart the user had before is discarded.
type CartMergeCoordinator struct {
	cartRepo repositories.CartRepository
	locks    keyedMutex
}

// NewCartMergeCoordinator creates a new CartMergeCoordinator.
func NewCartMergeCoordinator(cartRepo repositories.CartRepository) *CartMergeCoordinator {
	return &CartMergeCoordinator{cartRepo: cartRepo}
}

// MergeOnSignIn must be called once right after a successful sign-in or
// sign-up. Failures are logged and reported only through the outcome; the
// caller's authentication is never affected.
func (m *CartMergeCoordinator) MergeOnSignIn(ctx context.Context, sessionCartID, userID string) MergeOutcome {
	if sessionCartID == "" || userID == "" {
		return MergeSkipped
	}

	unlock := m.locks.lock(userID)
	defer unlock()

	cart, err := m.cartRepo.FindByOwner(ctx, models.CartOwner{SessionCartID: sessionCartID})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return MergeSkipped
		}
		log.Printf("Cart merge for user %s: failed to load session cart: %v", userID, err)
		return MergeConflict
	}

	if err := m.cartRepo.ReassignToUser(ctx, cart.ID, userID); err != nil {
		log.Printf("Cart merge for user %s: cart %s left with its session: %v", userID, cart.ID, err)
		return MergeConflict
	}
	log.Printf("Cart %s merged into user %s", cart.ID, userID)
	return MergeCompleted
}

// keyedMutex hands out one mutex per key and forgets it once nobody holds it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
