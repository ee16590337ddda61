package persistence

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sablier-labs/merkle-api-go/pkg/campaign"
)

// MarshalCampaign serializes a campaign to JSON bytes in the StoredCampaign
// layout.
func MarshalCampaign(c *campaign.Campaign) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("cannot marshal nil Campaign")
	}

	leaves := make([]string, len(c.Leaves()))
	for i, leaf := range c.Leaves() {
		leaves[i] = hex.EncodeToString(leaf[:])
	}

	sc := StoredCampaign{
		ID:         c.ID,
		Chain:      c.Chain,
		Root:       c.RootHex(),
		CreatedAt:  c.CreatedAt.Unix(),
		Recipients: c.Recipients,
		Leaves:     leaves,
	}

	data, err := json.Marshal(sc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Campaign to JSON: %w", err)
	}
	return data, nil
}

// UnmarshalCampaign deserializes a campaign from JSON bytes. The tree is
// rebuilt from the recipient list and the recomputed root must equal the
// stored root; a record that cannot reproduce its own commitment is rejected
// rather than loaded.
func UnmarshalCampaign(data []byte) (*campaign.Campaign, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var sc StoredCampaign
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to StoredCampaign: %w", err)
	}

	rootBytes, err := hex.DecodeString(sc.Root)
	if err != nil || len(rootBytes) != 32 {
		return nil, fmt.Errorf("stored campaign %s has malformed root %q", sc.ID, sc.Root)
	}
	var root [32]byte
	copy(root[:], rootBytes)

	if len(sc.Leaves) != len(sc.Recipients) {
		return nil, fmt.Errorf("stored campaign %s has %d leaves for %d recipients", sc.ID, len(sc.Leaves), len(sc.Recipients))
	}

	c, err := campaign.Restore(sc.ID, sc.Chain, sc.Recipients, time.Unix(sc.CreatedAt, 0).UTC(), root)
	if err != nil {
		return nil, err
	}
	return c, nil
}
