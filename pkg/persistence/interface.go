package persistence

import "github.com/sablier-labs/merkle-api-go/pkg/campaign"

// ICampaignStore defines the interface for persisting campaigns. All
// implementations must be thread-safe: campaign reads are concurrent and
// unsynchronized once a campaign is built.
//
// Campaigns are immutable aggregates, so the store is save-once/read-many: a
// correction requires saving a new campaign with a new id, never overwriting
// a tree in place.
type ICampaignStore interface {
	// SaveCampaign persists a fully built campaign indexed by its id.
	// Returns error only on storage failure.
	SaveCampaign(c *campaign.Campaign) error

	// LoadCampaign retrieves a campaign by id, rebuilding its tree from the
	// persisted recipient list and verifying the recomputed root against the
	// stored one. Returns nil if the campaign doesn't exist, error on storage
	// failure or integrity mismatch.
	LoadCampaign(id string) (*campaign.Campaign, error)

	// DeleteCampaign removes a campaign by id.
	// Idempotent - returns nil if the campaign doesn't exist.
	DeleteCampaign(id string) error

	// ListCampaignIDs returns the ids of all persisted campaigns sorted
	// ascending. Returns empty slice if none exist.
	ListCampaignIDs() ([]string, error)

	// Close cleanly shuts down the store.
	// Idempotent - safe to call multiple times.
	// After Close(), all other operations should return errors.
	Close() error

	// HealthCheck verifies the store is operational.
	// Returns nil if healthy, error describing the problem if not.
	HealthCheck() error
}
