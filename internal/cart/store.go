package cart

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// Store is the single source of truth for one user's pending purchase intent.
// Mutations are atomic from the caller's point of view, persist the full state
// and republish a snapshot to every subscriber. Persistence failures are
// logged and swallowed: the in-memory state stays authoritative for the
// session even when durability fails.
type Store struct {
	mu           sync.Mutex
	userID       uuid.UUID
	lines        []Line
	buyNow       *Line
	buyNowActive bool
	storage      Storage
	subscribers  map[int]func(Snapshot)
	nextSubID    int
}

// NewStore loads the persisted state for the user. Absent or corrupt state
// yields an empty cart, never an error.
func NewStore(userID uuid.UUID, storage Storage) *Store {
	s := &Store{
		userID:      userID,
		storage:     storage,
		subscribers: make(map[int]func(Snapshot)),
	}

	state, err := storage.Load(context.Background(), userID)
	if err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("cart: failed to load persisted state, starting empty")
		return s
	}

	s.lines = state.Lines
	s.buyNow = state.BuyNow
	s.buyNowActive = state.BuyNowActive

	// A line can never sit at zero or below; drop anything a bad write
	// left behind.
	kept := s.lines[:0]
	for _, l := range s.lines {
		if l.Quantity >= 1 {
			kept = append(kept, l)
		}
	}
	s.lines = kept

	return s
}

// Add merges the item into an existing line with the same identity key, or
// appends a new line. A non-positive quantity counts as one.
func (s *Store) Add(line Line) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}

	s.mu.Lock()
	merged := false
	for i := range s.lines {
		if s.lines[i].Key() == line.Key() {
			s.lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, line)
	}
	s.commitLocked()
}

// Increase bumps the quantity of the line for the product by one.
func (s *Store) Increase(productID uuid.UUID) {
	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity++
			break
		}
	}
	s.commitLocked()
}

// Decrease lowers the quantity of the line for the product by one, with a
// floor at one. Removal is its own command, never a side effect of Decrease.
func (s *Store) Decrease(productID uuid.UUID) {
	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			if s.lines[i].Quantity > 1 {
				s.lines[i].Quantity--
			}
			break
		}
	}
	s.commitLocked()
}

// Remove drops the line for the product unconditionally.
func (s *Store) Remove(productID uuid.UUID) {
	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			break
		}
	}
	s.commitLocked()
}

// Clear empties the cart lines. The buy-now slot is untouched.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.commitLocked()
}

// SetBuyNow replaces the buy-now slot with a single line and marks it active.
// The slot is independent of the cart lines.
func (s *Store) SetBuyNow(line Line) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}

	s.mu.Lock()
	s.buyNow = &line
	s.buyNowActive = true
	s.commitLocked()
}

// ClearBuyNow deactivates and empties the buy-now slot.
func (s *Store) ClearBuyNow() {
	s.mu.Lock()
	s.buyNow = nil
	s.buyNowActive = false
	s.commitLocked()
}

// Snapshot returns an immutable copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a listener called with a fresh snapshot after every
// mutation. The returned function unregisters it; callers must invoke it on
// teardown.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Lines:        make([]Line, len(s.lines)),
		BuyNowActive: s.buyNowActive,
	}
	copy(snap.Lines, s.lines)
	if s.buyNow != nil {
		line := *s.buyNow
		snap.BuyNow = &line
	}
	return snap
}

// commitLocked persists the state and notifies subscribers. It takes over the
// held lock and releases it before invoking listeners, so a listener may call
// back into the store.
func (s *Store) commitLocked() {
	state := State{
		Lines:        s.lines,
		BuyNow:       s.buyNow,
		BuyNowActive: s.buyNowActive,
	}
	if err := s.storage.Save(context.Background(), s.userID, state); err != nil {
		log.Error().Err(err).Stringer("user_id", s.userID).Msg("cart: failed to persist state")
	}

	snap := s.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
