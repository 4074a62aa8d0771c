package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/nexus-console/internal/config"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "nexus_user")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "nexus_user", `{"id":"1"}`))
	require.NoError(t, s.Set(ctx, "nexus_lang", "hi"))

	v, ok, err := s.Get(ctx, "nexus_user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"1"}`, v)

	require.NoError(t, s.Remove(ctx, "nexus_user"))
	require.NoError(t, s.Remove(ctx, "nexus_user"))

	_, ok, err = s.Get(ctx, "nexus_user")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err = s.Get(ctx, "nexus_lang")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hi", v)
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseStorage(t, NewFileStorage(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStorageSharesStateAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	require.NoError(t, NewFileStorage(path).Set(ctx, "nexus_lang", "hi"))
	v, ok, err := NewFileStorage(path).Get(ctx, "nexus_lang")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hi", v)
}

func TestFileStorageToleratesCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	s := NewFileStorage(path)
	_, ok, err := s.Get(ctx, "nexus_user")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.Set(ctx, "nexus_lang", "en"))
}

func TestNewStorageSelectsDriver(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: DriverMemory}}
	s, closeFn, err := NewStorage(cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &MemoryStorage{}, s)

	cfg.Storage.Driver = "floppy"
	_, _, err = NewStorage(cfg, zap.NewNop())
	assert.Error(t, err)
}

// Runs only when a Redis server is provided, e.g. NEXUS_TEST_REDIS=127.0.0.1:6379.
func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("NEXUS_TEST_REDIS")
	if addr == "" {
		t.Skip("NEXUS_TEST_REDIS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	s := NewRedisStorage(client, "test-"+time.Now().Format("150405.000"), time.Minute)
	exerciseStorage(t, s)

	ctx := context.Background()
	revocations := NewRedisRevocations(client)
	id := "tok-" + time.Now().Format("150405.000")
	require.NoError(t, revocations.Revoke(ctx, id, time.Now().Add(time.Minute)))
	revoked, err := revocations.IsRevoked(ctx, id)
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = revocations.IsRevoked(ctx, id+"-other")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "0001_init.sql", files[0])
	assert.IsIncreasing(t, files)
}

func TestPostgresWithoutDSNIsDisabled(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, pg.Enabled())
	pg.Close()
}
