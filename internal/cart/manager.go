package cart

import (
	"sync"

	"github.com/gofrs/uuid"
)

// Manager hands out one Store per user, constructed lazily from storage.
type Manager struct {
	mu      sync.Mutex
	storage Storage
	stores  map[uuid.UUID]*Store
}

func NewManager(storage Storage) *Manager {
	return &Manager{
		storage: storage,
		stores:  make(map[uuid.UUID]*Store),
	}
}

// ForUser returns the user's store, loading persisted state on first use.
func (m *Manager) ForUser(userID uuid.UUID) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, ok := m.stores[userID]
	if !ok {
		store = NewStore(userID, m.storage)
		m.stores[userID] = store
	}
	return store
}
