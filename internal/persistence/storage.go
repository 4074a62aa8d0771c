package persistence

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/nexus-console/internal/config"
)

// Storage is the durable key/value area the session survives restarts in.
// Get reports ok=false for an absent key.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Storage drivers accepted by NewStorage.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// NewStorage builds the driver selected by cfg.Storage.Driver. The returned
// closer releases driver resources and is never nil.
func NewStorage(cfg *config.Config, logger *zap.Logger) (Storage, func(), error) {
	switch cfg.Storage.Driver {
	case DriverMemory:
		return NewMemoryStorage(), func() {}, nil
	case DriverFile, "":
		return NewFileStorage(cfg.Storage.FilePath), func() {}, nil
	case DriverRedis:
		r := NewRedis(cfg.Redis, logger)
		return NewRedisStorage(r.Client, cfg.Storage.Namespace, cfg.Storage.TTL()), r.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// MemoryStorage keeps values for the life of the process.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage returns an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
