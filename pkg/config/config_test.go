package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() *ServerConfig {
	return &ServerConfig{
		Port:        8080,
		Persistence: PersistenceMemory,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidatePort(t *testing.T) {
	cfg := validConfig()
	cfg.Port = 0
	require.Error(t, cfg.Validate())

	cfg.Port = 70000
	require.Error(t, cfg.Validate())
}

func TestValidatePersistence(t *testing.T) {
	cfg := validConfig()
	cfg.Persistence = "cassandra"
	require.Error(t, cfg.Validate())

	cfg.Persistence = PersistenceBadger
	require.Error(t, cfg.Validate(), "badger requires a data path")
	cfg.BadgerPath = "/tmp/campaigns"
	require.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.Persistence = PersistenceRedis
	require.Error(t, cfg.Validate(), "redis requires an address")
	cfg.RedisAddress = "localhost:6379"
	require.NoError(t, cfg.Validate())

	cfg.RedisDB = 16
	require.Error(t, cfg.Validate())
}

func TestValidateMaxRecipients(t *testing.T) {
	cfg := validConfig()
	cfg.MaxRecipients = -1
	require.Error(t, cfg.Validate())

	cfg.MaxRecipients = 0
	require.NoError(t, cfg.Validate())
}
