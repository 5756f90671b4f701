package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/agora/internal/config"
	"github.com/prn-tf/agora/internal/domain"
)

func TestFactory_OpenSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "agora.db"),
	}

	f := NewFactory(cfg, zerolog.Nop())
	assert.True(t, f.IsEmbedded())
	assert.Equal(t, "sqlite", f.Driver())

	store, err := f.Open(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Database.Health(ctx))

	user := domain.NewUser("u-1", "kay", "kay@x.com", "digest")
	require.NoError(t, store.Repos.User.Create(ctx, user))

	provider, release, err := store.Migrator()
	require.NoError(t, err)
	defer func() { assert.NoError(t, release()) }()

	version, err := provider.GetDBVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestFactory_UnsupportedDriver(t *testing.T) {
	_, err := NewFactory(config.DatabaseConfig{Driver: "mongodb"}, zerolog.Nop()).Open(context.Background())
	assert.Error(t, err)
}
