package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sablier-labs/merkle-api-go/pkg/campaign"
	"github.com/sablier-labs/merkle-api-go/pkg/persistence"
)

// MemoryStore is an in-memory implementation of ICampaignStore, intended for
// tests and local development.
//
// Campaigns are stored in their serialized form and rebuilt on load, so the
// memory backend exercises the same serialization and integrity checks as the
// durable ones. Thread-safe using sync.RWMutex.
type MemoryStore struct {
	mu sync.RWMutex

	// Serialized campaigns: id -> StoredCampaign JSON
	campaigns map[string][]byte

	closed bool
}

// NewMemoryStore creates a new in-memory campaign store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		campaigns: make(map[string][]byte),
	}
}

// SaveCampaign persists a campaign.
func (m *MemoryStore) SaveCampaign(c *campaign.Campaign) error {
	if c == nil {
		return fmt.Errorf("cannot save nil Campaign")
	}

	data, err := persistence.MarshalCampaign(c)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("campaign store is closed")
	}

	m.campaigns[c.ID] = data
	return nil
}

// LoadCampaign retrieves a campaign by id.
func (m *MemoryStore) LoadCampaign(id string) (*campaign.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("campaign store is closed")
	}

	data, exists := m.campaigns[id]
	if !exists {
		return nil, nil // Not found is not an error
	}

	return persistence.UnmarshalCampaign(data)
}

// DeleteCampaign removes a campaign.
func (m *MemoryStore) DeleteCampaign(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("campaign store is closed")
	}

	delete(m.campaigns, id)
	return nil
}

// ListCampaignIDs returns all campaign ids sorted ascending.
func (m *MemoryStore) ListCampaignIDs() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("campaign store is closed")
	}

	ids := make([]string, 0, len(m.campaigns))
	for id := range m.campaigns {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, nil
}

// Close shuts down the store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// HealthCheck verifies the store is operational.
func (m *MemoryStore) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("campaign store is closed")
	}

	return nil
}
