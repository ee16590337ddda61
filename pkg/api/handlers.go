package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sablier-labs/merkle-api-go/pkg/campaign"
	"github.com/sablier-labs/merkle-api-go/pkg/chain"
	"github.com/sablier-labs/merkle-api-go/pkg/ingest"
	"github.com/sablier-labs/merkle-api-go/pkg/merkle"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500

	// CSV uploads are rejected beyond this size before any parsing happens.
	maxCSVUploadBytes = 32 << 20
)

type createCampaignRequest struct {
	Chain      string               `json:"chain"`
	Recipients []campaign.Recipient `json:"recipients"`
}

type campaignResponse struct {
	CampaignID  string `json:"campaignId"`
	Chain       string `json:"chain"`
	Root        string `json:"root"`
	LeafCount   int    `json:"leafCount"`
	TotalAmount uint64 `json:"totalAmount"`
	CreatedAt   string `json:"createdAt"`
}

type eligibilityResponse struct {
	Eligible bool                      `json:"eligible"`
	Index    int                       `json:"index,omitempty"`
	Address  string                    `json:"address,omitempty"`
	Amount   uint64                    `json:"amount,omitempty"`
	Vesting  *campaign.VestingSchedule `json:"vesting,omitempty"`
	Proof    []string                  `json:"proof,omitempty"`
	Root     string                    `json:"root"`
}

type recipientsResponse struct {
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	Total      int                  `json:"total"`
	Recipients []campaign.Recipient `json:"recipients"`
}

type validityRequest struct {
	Chain   string                    `json:"chain"`
	Root    string                    `json:"root"`
	Index   uint64                    `json:"index"`
	Address string                    `json:"address"`
	Amount  uint64                    `json:"amount"`
	Vesting *campaign.VestingSchedule `json:"vesting,omitempty"`
	Proof   []string                  `json:"proof"`
}

type validityResponse struct {
	Valid bool `json:"valid"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Rows    []ingest.RowError `json:"rows,omitempty"`
}

// handleCreateCampaign creates a campaign from a JSON recipient list.
func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BadRequest", Message: "invalid JSON body"})
		return
	}

	c, err := campaign.Create(req.Recipients, chain.Tag(req.Chain), campaign.CreateOptions{
		MaxRecipients: s.cfg.MaxRecipients,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.SaveCampaign(c); err != nil {
		s.logger.Sugar().Errorw("Failed to save campaign", "campaignId", c.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "Internal", Message: "failed to persist campaign"})
		return
	}

	s.logger.Sugar().Infow("Campaign created",
		"campaignId", c.ID, "chain", c.Chain, "leafCount", c.LeafCount(), "root", c.RootHex())

	writeJSON(w, http.StatusCreated, newCampaignResponse(c))
}

// handleCreateCampaignCSV creates a campaign from an uploaded CSV file. The
// chain tag and token decimal count come from query parameters; the file is
// the "data" part of the multipart form.
func (s *Server) handleCreateCampaignCSV(w http.ResponseWriter, r *http.Request) {
	tag := chain.Tag(r.URL.Query().Get("chain"))
	codec, err := chain.FromTag(tag)
	if err != nil {
		s.writeError(w, err)
		return
	}

	decimals := 0
	if raw := r.URL.Query().Get("decimals"); raw != "" {
		decimals, err = strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BadRequest", Message: "decimals must be an integer"})
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCSVUploadBytes)
	file, _, err := r.FormFile("data")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BadRequest", Message: "missing csv file in `data` form field"})
		return
	}
	defer file.Close()

	result, err := ingest.ParseCSV(file, codec, decimals)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BadRequest", Message: err.Error()})
		return
	}
	if len(result.Errors) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "InvalidCsv",
			Message: fmt.Sprintf("csv validation failed with %d error(s)", len(result.Errors)),
			Rows:    result.Errors,
		})
		return
	}

	c, err := campaign.Create(result.Recipients, tag, campaign.CreateOptions{
		MaxRecipients: s.cfg.MaxRecipients,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.SaveCampaign(c); err != nil {
		s.logger.Sugar().Errorw("Failed to save campaign", "campaignId", c.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "Internal", Message: "failed to persist campaign"})
		return
	}

	s.logger.Sugar().Infow("Campaign created from csv",
		"campaignId", c.ID, "chain", c.Chain, "leafCount", c.LeafCount(), "root", c.RootHex())

	writeJSON(w, http.StatusCreated, newCampaignResponse(c))
}

// handleEligibility answers whether an address is a recipient of the campaign
// and, if so, returns its claim data and merkle proof.
func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCampaign(w, r.PathValue("id"))
	if !ok {
		return
	}

	address := r.URL.Query().Get("address")
	if address == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BadRequest", Message: "missing `address` query parameter"})
		return
	}

	result, err := c.Lookup(address)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := eligibilityResponse{
		Eligible: result.Eligible,
		Root:     c.RootHex(),
	}
	if result.Eligible {
		resp.Index = result.Index
		resp.Address = result.Address
		resp.Amount = result.Amount
		resp.Vesting = result.Vesting
		resp.Proof = encodeProof(result.Proof)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRecipients returns one page of the campaign's recipient list in leaf
// order.
func (s *Server) handleRecipients(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCampaign(w, r.PathValue("id"))
	if !ok {
		return
	}

	page, pageSize, err := parsePagination(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BadRequest", Message: err.Error()})
		return
	}

	// Clamp before multiplying so a huge page number cannot overflow into a
	// negative slice bound.
	total := len(c.Recipients)
	start := total
	if page-1 <= total/pageSize {
		start = (page - 1) * pageSize
		if start > total {
			start = total
		}
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, recipientsResponse{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		Recipients: c.Recipients[start:end],
	})
}

// handleValidity verifies a caller-supplied proof against a root without any
// stored campaign.
func (s *Server) handleValidity(w http.ResponseWriter, r *http.Request) {
	var req validityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BadRequest", Message: "invalid JSON body"})
		return
	}

	root, err := parseHash(req.Root)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BadRequest", Message: fmt.Sprintf("invalid root: %v", err)})
		return
	}

	proof := make([][32]byte, len(req.Proof))
	for i, p := range req.Proof {
		proof[i], err = parseHash(p)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BadRequest", Message: fmt.Sprintf("invalid proof element %d: %v", i, err)})
			return
		}
	}

	valid, err := campaign.CheckValidity(root, campaign.LeafData{
		Index:   req.Index,
		Address: req.Address,
		Amount:  req.Amount,
		Vesting: req.Vesting,
	}, proof, chain.Tag(req.Chain))
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, validityResponse{Valid: valid})
}

// handleHealth reports liveness of the server and its store.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.HealthCheck(); err != nil {
		s.logger.Sugar().Warnw("Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadCampaign fetches a campaign by id and writes the 404 itself when the id
// is unknown. The bool reports whether the caller should proceed.
func (s *Server) loadCampaign(w http.ResponseWriter, id string) (*campaign.Campaign, bool) {
	c, err := s.store.LoadCampaign(id)
	if err != nil {
		s.logger.Sugar().Errorw("Failed to load campaign", "campaignId", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "Internal", Message: "failed to load campaign"})
		return nil, false
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "CampaignNotFound", Message: fmt.Sprintf("campaign %s not found", id)})
		return nil, false
	}
	return c, true
}

func newCampaignResponse(c *campaign.Campaign) campaignResponse {
	return campaignResponse{
		CampaignID:  c.ID,
		Chain:       string(c.Chain),
		Root:        c.RootHex(),
		LeafCount:   c.LeafCount(),
		TotalAmount: c.TotalAmount(),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

// writeError maps the engine's error taxonomy onto HTTP statuses. Input
// validation failures are the caller's fault; everything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := "Internal"
	status := http.StatusInternalServerError

	var dup *campaign.DuplicateAddressError
	switch {
	case errors.Is(err, chain.ErrUnsupportedChain):
		code, status = "UnsupportedChain", http.StatusBadRequest
	case errors.Is(err, chain.ErrChecksumMismatch):
		code, status = "ChecksumMismatch", http.StatusBadRequest
	case errors.Is(err, chain.ErrInvalidAddress):
		code, status = "InvalidAddress", http.StatusBadRequest
	case errors.As(err, &dup):
		code, status = "DuplicateAddress", http.StatusBadRequest
	case errors.Is(err, campaign.ErrTooManyRecipients):
		code, status = "TooManyRecipients", http.StatusBadRequest
	case errors.Is(err, campaign.ErrTotalAmountOverflow):
		code, status = "AmountOverflow", http.StatusBadRequest
	case errors.Is(err, merkle.ErrEmptyTree):
		code, status = "EmptyRecipientList", http.StatusBadRequest
	default:
		s.logger.Sugar().Errorw("Request failed", "error", err)
		writeJSON(w, status, errorResponse{Code: code, Message: "internal error"})
		return
	}

	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func parsePagination(r *http.Request) (page, pageSize int, err error) {
	page, pageSize = 1, defaultPageSize

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("page must be a positive integer")
		}
	}
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 || pageSize > maxPageSize {
			return 0, 0, fmt.Errorf("pageSize must be between 1 and %d", maxPageSize)
		}
	}
	return page, pageSize, nil
}

// parseHash decodes a 32-byte hash from hex, with or without a 0x prefix.
func parseHash(s string) ([32]byte, error) {
	var out [32]byte
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("not valid hex")
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func encodeProof(proof [][32]byte) []string {
	out := make([]string, len(proof))
	for i, h := range proof {
		out[i] = hex.EncodeToString(h[:])
	}
	return out
}
