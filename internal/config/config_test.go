package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, uint16(8080), cfg.HTTP.Port)
	assert.Equal(t, 30, cfg.Billing.NetDays)
	assert.Equal(t, time.Minute, cfg.Billing.SweepInterval)
	assert.Equal(t, 16, cfg.Broadcast.QueueSize)
	assert.Equal(t, uint(3), cfg.Retry.MaxAttempts)
	assert.Equal(t, "sponsorhub", cfg.Psql.Addr.Path[1:])
}

func TestLoadRejectsBadDriver(t *testing.T) {
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := Load()
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("AUTH_ALLOW_ANONYMOUS_ADMIN", "true")
	t.Setenv("STORE_DRIVER", "memory")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Auth.AllowAnonymousAdmin)
}
