package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sablier-labs/merkle-api-go/pkg/campaign"
	"github.com/sablier-labs/merkle-api-go/pkg/chain"
	"github.com/sablier-labs/merkle-api-go/pkg/persistence"
)

var _ persistence.ICampaignStore = (*MemoryStore)(nil)

func testCampaign(t *testing.T, seed string) *campaign.Campaign {
	t.Helper()

	recipients := make([]campaign.Recipient, 3)
	for i := range recipients {
		raw := chain.Evm.Hash([]byte(seed + fmt.Sprintf("-%d", i)))
		recipients[i] = campaign.Recipient{
			Address: chain.Evm.FormatAddress(raw[:20]),
			Amount:  uint64(100 * (i + 1)),
		}
	}

	c, err := campaign.Create(recipients, chain.TagEvm, campaign.CreateOptions{})
	require.NoError(t, err)
	return c
}

func TestSaveAndLoad(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	c := testCampaign(t, "a")
	require.NoError(t, store.SaveCampaign(c))

	loaded, err := store.LoadCampaign(c.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, c.ID, loaded.ID)
	assert.Equal(t, c.Root(), loaded.Root())
}

func TestLoadMissing(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	loaded, err := store.LoadCampaign("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSaveNil(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	require.Error(t, store.SaveCampaign(nil))
}

func TestDelete(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	c := testCampaign(t, "a")
	require.NoError(t, store.SaveCampaign(c))
	require.NoError(t, store.DeleteCampaign(c.ID))

	loaded, err := store.LoadCampaign(c.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting an absent campaign is idempotent.
	require.NoError(t, store.DeleteCampaign(c.ID))
}

func TestListCampaignIDs(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ids, err := store.ListCampaignIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)

	a := testCampaign(t, "a")
	b := testCampaign(t, "b")
	require.NoError(t, store.SaveCampaign(a))
	require.NoError(t, store.SaveCampaign(b))

	ids, err = store.ListCampaignIDs()
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Contains(t, ids, a.ID)
	assert.Contains(t, ids, b.ID)
	assert.True(t, ids[0] < ids[1], "ids must be sorted")
}

func TestClosedStore(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Close())

	require.Error(t, store.SaveCampaign(testCampaign(t, "a")))
	_, err := store.LoadCampaign("x")
	require.Error(t, err)
	require.Error(t, store.HealthCheck())
}

func TestHealthCheck(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.HealthCheck())
}

func TestConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	c := testCampaign(t, "shared")
	require.NoError(t, store.SaveCampaign(c))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loaded, err := store.LoadCampaign(c.ID)
			assert.NoError(t, err)
			assert.NotNil(t, loaded)
		}()
	}
	wg.Wait()
}
