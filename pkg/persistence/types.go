package persistence

import (
	"github.com/sablier-labs/merkle-api-go/pkg/campaign"
	"github.com/sablier-labs/merkle-api-go/pkg/chain"
)

// StoredCampaign is the persisted layout of one campaign. It carries the full
// recipient list plus the ordered leaf hashes: the root alone is insufficient
// to serve proofs, so it is never the only persisted artifact.
type StoredCampaign struct {
	ID         string               `json:"id"`
	Chain      chain.Tag            `json:"chain"`
	Root       string               `json:"root"` // lowercase hex, 32 bytes
	CreatedAt  int64                `json:"created_at"`
	Recipients []campaign.Recipient `json:"recipients"`
	Leaves     []string             `json:"leaves"` // lowercase hex leaf hashes, campaign order
}
