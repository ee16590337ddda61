package config

import "fmt"

// Environment variable names for Merkle API server configuration
const (
	EnvPort            = "MERKLE_API_PORT"
	EnvPersistenceType = "MERKLE_API_PERSISTENCE"
	EnvBadgerPath      = "MERKLE_API_BADGER_PATH"
	EnvRedisAddress    = "MERKLE_API_REDIS_ADDRESS"
	EnvRedisPassword   = "MERKLE_API_REDIS_PASSWORD"
	EnvRedisDB         = "MERKLE_API_REDIS_DB"
	EnvMaxRecipients   = "MERKLE_API_MAX_RECIPIENTS"
	EnvBearerToken     = "MERKLE_API_BEARER_TOKEN"
	EnvVerbose         = "MERKLE_API_VERBOSE"
)

// PersistenceType selects the campaign store backend.
type PersistenceType string

const (
	PersistenceMemory PersistenceType = "memory"
	PersistenceBadger PersistenceType = "badger"
	PersistenceRedis  PersistenceType = "redis"
)

func (p PersistenceType) String() string {
	return string(p)
}

// ServerConfig represents the complete configuration for a merkle API server
type ServerConfig struct {
	Port int `json:"port"`

	// Persistence selection
	Persistence PersistenceType `json:"persistence"`
	BadgerPath  string          `json:"badger_path"`

	RedisAddress  string `json:"redis_address"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	// MaxRecipients caps campaign creation input size; 0 uses the engine
	// default.
	MaxRecipients int `json:"max_recipients"`

	// BearerToken, when non-empty, guards all /api routes except the health
	// probe.
	BearerToken string `json:"bearer_token,omitempty"`

	// Operational settings
	Verbose bool `json:"verbose"`
}

// Validate validates the server configuration and fills in backend-specific
// requirements.
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1-65535, got %d", c.Port)
	}

	switch c.Persistence {
	case PersistenceMemory:
		// nothing to validate
	case PersistenceBadger:
		if c.BadgerPath == "" {
			return fmt.Errorf("badger persistence requires %s", EnvBadgerPath)
		}
	case PersistenceRedis:
		if c.RedisAddress == "" {
			return fmt.Errorf("redis persistence requires %s", EnvRedisAddress)
		}
		if c.RedisDB < 0 || c.RedisDB > 15 {
			return fmt.Errorf("redis db must be between 0-15, got %d", c.RedisDB)
		}
	default:
		return fmt.Errorf("unsupported persistence type %q. Supported: %s, %s, %s",
			c.Persistence, PersistenceMemory, PersistenceBadger, PersistenceRedis)
	}

	if c.MaxRecipients < 0 {
		return fmt.Errorf("max recipients cannot be negative, got %d", c.MaxRecipients)
	}

	return nil
}
