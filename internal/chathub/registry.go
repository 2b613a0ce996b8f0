package chathub

import (
	"fmt"
	"strangerchat/backend/internal/models"
	"sync"

	"github.com/samber/lo"
)

// PartnerRegistry is the only owner of the wait queue and the pair map.
// Every exported method is one atomic step; Transaction groups several.
type PartnerRegistry struct {
	mu sync.Mutex

	queue   []models.UserID
	waiting map[models.UserID]struct{}
	pairs   map[models.UserID]models.UserID
}

// RegistryStats is a point-in-time view of the registry sizes.
type RegistryStats struct {
	Waiting int `json:"waiting"`
	Pairs   int `json:"pairs"`
}

// NewPartnerRegistry returns an empty registry.
func NewPartnerRegistry() *PartnerRegistry {
	return &PartnerRegistry{
		waiting: make(map[models.UserID]struct{}),
		pairs:   make(map[models.UserID]models.UserID),
	}
}

// RegistryTx exposes registry operations inside a Transaction. It must not
// be retained after the transaction function returns.
type RegistryTx struct {
	r *PartnerRegistry
}

// Transaction runs fn while holding the registry lock, so its operations are
// observed by other callers as a single step.
func (r *PartnerRegistry) Transaction(fn func(tx *RegistryTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(&RegistryTx{r: r})
}

func (r *PartnerRegistry) Enqueue(u models.UserID) error {
	return r.Transaction(func(tx *RegistryTx) error { return tx.Enqueue(u) })
}

func (r *PartnerRegistry) DequeueOldest() (u models.UserID, ok bool) {
	_ = r.Transaction(func(tx *RegistryTx) error {
		u, ok = tx.DequeueOldest()
		return nil
	})
	return u, ok
}

func (r *PartnerRegistry) RemoveFromQueue(u models.UserID) (removed bool) {
	_ = r.Transaction(func(tx *RegistryTx) error {
		removed = tx.RemoveFromQueue(u)
		return nil
	})
	return removed
}

func (r *PartnerRegistry) Pair(a, b models.UserID) error {
	return r.Transaction(func(tx *RegistryTx) error { return tx.Pair(a, b) })
}

func (r *PartnerRegistry) Unpair(u models.UserID) (partner models.UserID, ok bool) {
	_ = r.Transaction(func(tx *RegistryTx) error {
		partner, ok = tx.Unpair(u)
		return nil
	})
	return partner, ok
}

func (r *PartnerRegistry) PartnerOf(u models.UserID) (partner models.UserID, ok bool) {
	_ = r.Transaction(func(tx *RegistryTx) error {
		partner, ok = tx.PartnerOf(u)
		return nil
	})
	return partner, ok
}

func (r *PartnerRegistry) IsWaiting(u models.UserID) (waiting bool) {
	_ = r.Transaction(func(tx *RegistryTx) error {
		waiting = tx.IsWaiting(u)
		return nil
	})
	return waiting
}

// Snapshot returns the current queue length and number of pairs.
func (r *PartnerRegistry) Snapshot() RegistryStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RegistryStats{
		Waiting: len(r.queue),
		Pairs:   len(r.pairs) / 2,
	}
}

// Enqueue appends u to the wait queue.
func (tx *RegistryTx) Enqueue(u models.UserID) error {
	if tx.isActive(u) {
		return fmt.Errorf("enqueue %s: %w", u, ErrAlreadyActive)
	}
	tx.r.queue = append(tx.r.queue, u)
	tx.r.waiting[u] = struct{}{}
	return nil
}

// DequeueOldest pops the longest-waiting user.
func (tx *RegistryTx) DequeueOldest() (models.UserID, bool) {
	if len(tx.r.queue) == 0 {
		return "", false
	}
	u := tx.r.queue[0]
	tx.r.queue[0] = ""
	tx.r.queue = tx.r.queue[1:]
	delete(tx.r.waiting, u)
	return u, true
}

// RemoveFromQueue drops u from the wait queue. Removing a user that is not
// waiting is a no-op and reports false.
func (tx *RegistryTx) RemoveFromQueue(u models.UserID) bool {
	if _, ok := tx.r.waiting[u]; !ok {
		return false
	}
	idx := lo.IndexOf(tx.r.queue, u)
	if idx >= 0 {
		tx.r.queue = append(tx.r.queue[:idx], tx.r.queue[idx+1:]...)
	}
	delete(tx.r.waiting, u)
	return true
}

// Pair links a and b symmetrically.
func (tx *RegistryTx) Pair(a, b models.UserID) error {
	if a == b {
		return fmt.Errorf("pair %s with itself: %w", a, ErrInvalidState)
	}
	for _, u := range []models.UserID{a, b} {
		if _, ok := tx.r.pairs[u]; ok {
			return fmt.Errorf("pair %s: already paired: %w", u, ErrInvalidState)
		}
		if _, ok := tx.r.waiting[u]; ok {
			return fmt.Errorf("pair %s: still waiting: %w", u, ErrInvalidState)
		}
	}
	tx.r.pairs[a] = b
	tx.r.pairs[b] = a
	return nil
}

// Unpair removes u's pairing from both sides and returns the former partner.
func (tx *RegistryTx) Unpair(u models.UserID) (models.UserID, bool) {
	partner, ok := tx.r.pairs[u]
	if !ok {
		return "", false
	}
	delete(tx.r.pairs, u)
	delete(tx.r.pairs, partner)
	return partner, true
}

func (tx *RegistryTx) PartnerOf(u models.UserID) (models.UserID, bool) {
	partner, ok := tx.r.pairs[u]
	return partner, ok
}

func (tx *RegistryTx) IsWaiting(u models.UserID) bool {
	_, ok := tx.r.waiting[u]
	return ok
}

func (tx *RegistryTx) isActive(u models.UserID) bool {
	if _, ok := tx.r.pairs[u]; ok {
		return true
	}
	_, ok := tx.r.waiting[u]
	return ok
}
