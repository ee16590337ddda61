// Package api exposes the campaign engine over HTTP.
//
// Routes:
//
//	POST /api/campaigns                       create a campaign from a JSON recipient list
//	POST /api/campaigns/csv                   create a campaign from an uploaded CSV file
//	GET  /api/campaigns/{id}/eligibility      eligibility + proof for one address
//	GET  /api/campaigns/{id}/recipients       paginated recipient listing
//	POST /api/validity                        standalone proof verification against a root
//	GET  /api/health                          liveness probe
//
// All routes except the health probe are guarded by a static bearer token
// when one is configured. The API layer owns wire encoding (hex roots and
// proofs, JSON bodies) and the mapping from the engine's error taxonomy to
// HTTP status codes; it holds no tree logic of its own.
package api

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/sablier-labs/merkle-api-go/pkg/config"
	"github.com/sablier-labs/merkle-api-go/pkg/persistence"
)

// Server handles HTTP requests for campaign creation and queries.
type Server struct {
	store      persistence.ICampaignStore
	cfg        *config.ServerConfig
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer creates a new server instance.
func NewServer(store persistence.ICampaignStore, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	s := &Server{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}

	mux := http.NewServeMux()

	// Campaign creation
	mux.HandleFunc("POST /api/campaigns", s.withAuth(s.handleCreateCampaign))
	mux.HandleFunc("POST /api/campaigns/csv", s.withAuth(s.handleCreateCampaignCSV))

	// Campaign queries
	mux.HandleFunc("GET /api/campaigns/{id}/eligibility", s.withAuth(s.handleEligibility))
	mux.HandleFunc("GET /api/campaigns/{id}/recipients", s.withAuth(s.handleRecipients))

	// Standalone proof verification
	mux.HandleFunc("POST /api/validity", s.withAuth(s.handleValidity))

	// Liveness probe, unguarded
	mux.HandleFunc("GET /api/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	go func() {
		s.logger.Sugar().Infow("Starting HTTP server", "port", s.cfg.Port)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Sugar().Errorw("HTTP server error", "error", err)
		}
	}()
	return nil
}

// Stop stops the HTTP server.
func (s *Server) Stop() error {
	return s.httpServer.Close()
}

// GetHandler returns the HTTP handler (for testing).
func (s *Server) GetHandler() http.Handler {
	return s.httpServer.Handler
}

// withAuth enforces the static bearer token when one is configured.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.BearerToken != "" {
			if r.Header.Get("Authorization") != "Bearer "+s.cfg.BearerToken {
				writeJSON(w, http.StatusUnauthorized, errorResponse{
					Code:    "Unauthorized",
					Message: "bad authentication provided",
				})
				return
			}
		}
		next(w, r)
	}
}
