package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sablier-labs/merkle-api-go/pkg/campaign"
	"github.com/sablier-labs/merkle-api-go/pkg/chain"
	"github.com/sablier-labs/merkle-api-go/pkg/config"
	"github.com/sablier-labs/merkle-api-go/pkg/persistence/memory"
)

func newTestServer(t *testing.T, cfg *config.ServerConfig) *Server {
	t.Helper()

	if cfg == nil {
		cfg = &config.ServerConfig{Port: 8080, Persistence: config.PersistenceMemory}
	}
	store := memory.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	return NewServer(store, cfg, zap.NewNop())
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.GetHandler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func testRecipients(n int) []campaign.Recipient {
	recipients := make([]campaign.Recipient, n)
	for i := range recipients {
		raw := chain.Evm.Hash([]byte(fmt.Sprintf("api-recipient-%d", i)))
		recipients[i] = campaign.Recipient{
			Address: chain.Evm.FormatAddress(raw[:20]),
			Amount:  uint64(100 * (i + 1)),
		}
	}
	return recipients
}

func createTestCampaign(t *testing.T, s *Server, n int) (campaignResponse, []campaign.Recipient) {
	t.Helper()

	recipients := testRecipients(n)
	rec := doJSON(t, s, http.MethodPost, "/api/campaigns", createCampaignRequest{
		Chain:      "evm",
		Recipients: recipients,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[campaignResponse](t, rec), recipients
}

func TestCreateCampaign(t *testing.T) {
	s := newTestServer(t, nil)

	resp, _ := createTestCampaign(t, s, 4)

	assert.NotEmpty(t, resp.CampaignID)
	assert.Equal(t, "evm", resp.Chain)
	assert.Len(t, resp.Root, 64)
	assert.Equal(t, 4, resp.LeafCount)
	assert.Equal(t, uint64(100+200+300+400), resp.TotalAmount)
}

func TestCreateCampaignErrors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name     string
		req      createCampaignRequest
		wantCode string
	}{
		{
			name:     "unsupported chain",
			req:      createCampaignRequest{Chain: "cosmos", Recipients: testRecipients(1)},
			wantCode: "UnsupportedChain",
		},
		{
			name:     "empty recipients",
			req:      createCampaignRequest{Chain: "evm"},
			wantCode: "EmptyRecipientList",
		},
		{
			name: "invalid address",
			req: createCampaignRequest{Chain: "evm", Recipients: []campaign.Recipient{
				{Address: "nope", Amount: 1},
			}},
			wantCode: "InvalidAddress",
		},
		{
			name: "duplicate address",
			req: createCampaignRequest{Chain: "evm", Recipients: []campaign.Recipient{
				{Address: "0x0000000000000000000000000000000000000001", Amount: 1},
				{Address: "0x0000000000000000000000000000000000000001", Amount: 2},
			}},
			wantCode: "DuplicateAddress",
		},
		{
			name: "amount overflow",
			req: createCampaignRequest{Chain: "evm", Recipients: []campaign.Recipient{
				{Address: "0x0000000000000000000000000000000000000001", Amount: math.MaxUint64},
				{Address: "0x0000000000000000000000000000000000000002", Amount: 1},
			}},
			wantCode: "AmountOverflow",
		},
		{
			name: "checksum mismatch",
			req: createCampaignRequest{Chain: "evm", Recipients: []campaign.Recipient{
				{Address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1Beaed", Amount: 1},
			}},
			wantCode: "ChecksumMismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/campaigns", tt.req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantCode, decodeBody[errorResponse](t, rec).Code)
		})
	}
}

func TestCreateCampaignRecipientLimit(t *testing.T) {
	s := newTestServer(t, &config.ServerConfig{
		Port:          8080,
		Persistence:   config.PersistenceMemory,
		MaxRecipients: 2,
	})

	rec := doJSON(t, s, http.MethodPost, "/api/campaigns", createCampaignRequest{
		Chain:      "evm",
		Recipients: testRecipients(3),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "TooManyRecipients", decodeBody[errorResponse](t, rec).Code)
}

func TestCreateCampaignFromCSV(t *testing.T) {
	s := newTestServer(t, nil)

	csv := strings.Join([]string{
		"address,amount",
		"0x0000000000000000000000000000000000000001,1.5",
		"0x0000000000000000000000000000000000000002,2",
	}, "\n")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("data", "recipients.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/campaigns/csv?chain=evm&decimals=2", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.GetHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeBody[campaignResponse](t, rec)
	assert.Equal(t, 2, resp.LeafCount)
	assert.Equal(t, uint64(350), resp.TotalAmount)
}

func TestCreateCampaignFromCSVReportsRowErrors(t *testing.T) {
	s := newTestServer(t, nil)

	csv := strings.Join([]string{
		"address,amount",
		"not-an-address,1",
		"0x0000000000000000000000000000000000000001,0",
	}, "\n")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("data", "recipients.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/campaigns/csv?chain=evm&decimals=0", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.GetHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[errorResponse](t, rec)
	assert.Equal(t, "InvalidCsv", resp.Code)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, 2, resp.Rows[0].Row)
	assert.Equal(t, 3, resp.Rows[1].Row)
}

func TestEligibility(t *testing.T) {
	s := newTestServer(t, nil)
	created, recipients := createTestCampaign(t, s, 5)

	rec := doJSON(t, s, http.MethodGet,
		"/api/campaigns/"+created.CampaignID+"/eligibility?address="+recipients[2].Address, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[eligibilityResponse](t, rec)
	require.True(t, resp.Eligible)
	assert.Equal(t, 2, resp.Index)
	assert.Equal(t, recipients[2].Address, resp.Address)
	assert.Equal(t, recipients[2].Amount, resp.Amount)
	assert.NotEmpty(t, resp.Proof)
	assert.Equal(t, created.Root, resp.Root)
}

func TestEligibilityMiss(t *testing.T) {
	s := newTestServer(t, nil)
	created, _ := createTestCampaign(t, s, 3)

	rec := doJSON(t, s, http.MethodGet,
		"/api/campaigns/"+created.CampaignID+"/eligibility?address=0x00000000000000000000000000000000000000ff", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[eligibilityResponse](t, rec)
	assert.False(t, resp.Eligible)
	assert.Empty(t, resp.Proof)
}

func TestEligibilityErrors(t *testing.T) {
	s := newTestServer(t, nil)
	created, _ := createTestCampaign(t, s, 3)

	// Unknown campaign
	rec := doJSON(t, s, http.MethodGet,
		"/api/campaigns/no-such-id/eligibility?address=0x0000000000000000000000000000000000000001", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CampaignNotFound", decodeBody[errorResponse](t, rec).Code)

	// Missing address parameter
	rec = doJSON(t, s, http.MethodGet, "/api/campaigns/"+created.CampaignID+"/eligibility", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed address
	rec = doJSON(t, s, http.MethodGet,
		"/api/campaigns/"+created.CampaignID+"/eligibility?address=garbage", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidAddress", decodeBody[errorResponse](t, rec).Code)
}

func TestRecipientsPagination(t *testing.T) {
	s := newTestServer(t, nil)
	created, recipients := createTestCampaign(t, s, 7)

	rec := doJSON(t, s, http.MethodGet,
		"/api/campaigns/"+created.CampaignID+"/recipients?page=2&pageSize=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[recipientsResponse](t, rec)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 3, resp.PageSize)
	assert.Equal(t, 7, resp.Total)
	require.Len(t, resp.Recipients, 3)
	assert.Equal(t, recipients[3].Address, resp.Recipients[0].Address)

	// Past the end yields an empty page, not an error.
	rec = doJSON(t, s, http.MethodGet,
		"/api/campaigns/"+created.CampaignID+"/recipients?page=100&pageSize=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[recipientsResponse](t, rec).Recipients)

	// Invalid pagination parameters
	rec = doJSON(t, s, http.MethodGet,
		"/api/campaigns/"+created.CampaignID+"/recipients?page=0", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// A page number near MaxInt must yield an empty page, not an arithmetic
	// overflow into a slice-bounds panic.
	rec = doJSON(t, s, http.MethodGet,
		"/api/campaigns/"+created.CampaignID+"/recipients?page=9223372036854775807&pageSize=500", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[recipientsResponse](t, rec).Recipients)
}

func TestValidity(t *testing.T) {
	s := newTestServer(t, nil)
	created, recipients := createTestCampaign(t, s, 6)

	elig := doJSON(t, s, http.MethodGet,
		"/api/campaigns/"+created.CampaignID+"/eligibility?address="+recipients[1].Address, nil)
	require.Equal(t, http.StatusOK, elig.Code)
	proof := decodeBody[eligibilityResponse](t, elig)

	req := validityRequest{
		Chain:   "evm",
		Root:    created.Root,
		Index:   uint64(proof.Index),
		Address: proof.Address,
		Amount:  proof.Amount,
		Proof:   proof.Proof,
	}

	rec := doJSON(t, s, http.MethodPost, "/api/validity", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeBody[validityResponse](t, rec).Valid)

	// A tampered amount yields a clean false verdict.
	bad := req
	bad.Amount++
	rec = doJSON(t, s, http.MethodPost, "/api/validity", bad)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[validityResponse](t, rec).Valid)

	// Malformed root is the caller's fault.
	bad = req
	bad.Root = "zz"
	rec = doJSON(t, s, http.MethodPost, "/api/validity", bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed proof element likewise.
	bad = req
	bad.Proof = []string{"zz"}
	rec = doJSON(t, s, http.MethodPost, "/api/validity", bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerAuth(t *testing.T) {
	s := newTestServer(t, &config.ServerConfig{
		Port:        8080,
		Persistence: config.PersistenceMemory,
		BearerToken: "secret-token",
	})

	// Unauthenticated request is rejected.
	rec := doJSON(t, s, http.MethodPost, "/api/campaigns", createCampaignRequest{
		Chain:      "evm",
		Recipients: testRecipients(2),
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong token is rejected.
	body, err := json.Marshal(createCampaignRequest{Chain: "evm", Recipients: testRecipients(2)})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/campaigns", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer wrong")
	wrongRec := httptest.NewRecorder()
	s.GetHandler().ServeHTTP(wrongRec, req)
	require.Equal(t, http.StatusUnauthorized, wrongRec.Code)

	// Correct token is accepted.
	req = httptest.NewRequest(http.MethodPost, "/api/campaigns", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret-token")
	okRec := httptest.NewRecorder()
	s.GetHandler().ServeHTTP(okRec, req)
	require.Equal(t, http.StatusCreated, okRec.Code)

	// The health probe stays open.
	rec = doJSON(t, s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
