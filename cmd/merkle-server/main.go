package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/sablier-labs/merkle-api-go/pkg/api"
	"github.com/sablier-labs/merkle-api-go/pkg/config"
	"github.com/sablier-labs/merkle-api-go/pkg/logger"
	"github.com/sablier-labs/merkle-api-go/pkg/persistence"
	"github.com/sablier-labs/merkle-api-go/pkg/persistence/badger"
	"github.com/sablier-labs/merkle-api-go/pkg/persistence/memory"
	"github.com/sablier-labs/merkle-api-go/pkg/persistence/redis"
)

func main() {
	app := &cli.App{
		Name:  "merkle-server",
		Usage: "Airdrop merkle distribution API server",
		Description: `HTTP service for airdrop campaigns backed by merkle commitments.

Creates campaigns from recipient lists (JSON or CSV), computes the merkle
root to publish on-chain, and serves eligibility and proof queries for
EVM and Solana campaigns.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   8080,
				Usage:   "HTTP server port",
				EnvVars: []string{config.EnvPort},
			},
			&cli.StringFlag{
				Name:    "persistence",
				Value:   string(config.PersistenceMemory),
				Usage:   "Campaign store backend: memory, badger, redis",
				EnvVars: []string{config.EnvPersistenceType},
			},
			&cli.StringFlag{
				Name:    "badger-path",
				Usage:   "Data directory for the badger backend",
				EnvVars: []string{config.EnvBadgerPath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis server address (host:port) for the redis backend",
				EnvVars: []string{config.EnvRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{config.EnvRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number (0-15)",
				EnvVars: []string{config.EnvRedisDB},
			},
			&cli.IntFlag{
				Name:    "max-recipients",
				Usage:   "Maximum recipients per campaign (0 uses the engine default)",
				EnvVars: []string{config.EnvMaxRecipients},
			},
			&cli.StringFlag{
				Name:    "bearer-token",
				Usage:   "Static bearer token guarding all API routes except the health probe",
				EnvVars: []string{config.EnvBearerToken},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvVerbose},
			},
		},
		Action: runServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runServer(c *cli.Context) error {
	cfg := &config.ServerConfig{
		Port:          c.Int("port"),
		Persistence:   config.PersistenceType(c.String("persistence")),
		BadgerPath:    c.String("badger-path"),
		RedisAddress:  c.String("redis-address"),
		RedisPassword: c.String("redis-password"),
		RedisDB:       c.Int("redis-db"),
		MaxRecipients: c.Int("max-recipients"),
		BearerToken:   c.String("bearer-token"),
		Verbose:       c.Bool("verbose"),
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Verbose})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer l.Sync() //nolint:errcheck

	store, err := buildStore(cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize campaign store: %w", err)
	}
	defer store.Close() //nolint:errcheck

	server := api.NewServer(store, cfg, l)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	l.Sugar().Infow("Merkle API server running",
		"port", cfg.Port, "persistence", cfg.Persistence)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	l.Sugar().Infow("Shutting down")
	return server.Stop()
}

func buildStore(cfg *config.ServerConfig, l *zap.Logger) (persistence.ICampaignStore, error) {
	switch cfg.Persistence {
	case config.PersistenceMemory:
		return memory.NewMemoryStore(), nil
	case config.PersistenceBadger:
		return badger.NewBadgerStore(cfg.BadgerPath, l)
	case config.PersistenceRedis:
		return redis.NewRedisStore(&redis.RedisConfig{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, l)
	default:
		return nil, fmt.Errorf("unsupported persistence type %q", cfg.Persistence)
	}
}
