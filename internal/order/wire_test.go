package order

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wishlist/internal/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, StoreDriver: config.StoreMemory},
		Redis:  config.RedisConfig{IdempotencyTTL: time.Hour},
		Notification: config.NotificationConfig{
			Timeout:  time.Second,
			Timezone: "Europe/Moscow",
		},
	}
}

func TestNewModule_Memory(t *testing.T) {
	m, err := NewModule(context.Background(), memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, m.Controller)
	assert.Nil(t, m.provider)
	assert.Nil(t, m.rdb)

	assert.NoError(t, m.Close(context.Background()))
}

func TestNewModule_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.Redis.Addr = mr.Addr()

	m, err := NewModule(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, m.rdb)

	assert.NoError(t, m.Close(context.Background()))
}

func TestNewModule_RedisDownStillStarts(t *testing.T) {
	cfg := memoryConfig()
	cfg.Redis.Addr = "127.0.0.1:1"

	m, err := NewModule(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, m.rdb)
}

func TestNewModule_BadTimezone(t *testing.T) {
	cfg := memoryConfig()
	cfg.Notification.Endpoint = "http://relay.local/send"
	cfg.Notification.Recipient = "me@example.com"
	cfg.Notification.Timezone = "Mars/Olympus"

	_, err := NewModule(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
