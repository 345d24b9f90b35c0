// Package blobstore is a small key-value store for serialized values.
// It stands in for the browser storage the favourites list is mirrored to.
package blobstore

import (
	"context"
	stderrors "errors"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/glefebvre/moviesearch/internal/config"
	"github.com/glefebvre/moviesearch/internal/database"
	"github.com/glefebvre/moviesearch/internal/errors"
	"github.com/glefebvre/moviesearch/internal/models"
)

// Store reads and writes whole values by key. Writes replace the previous
// value; there is no partial-write protection.
type Store interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Open returns the store selected by cfg.Storage.Driver
func Open(cfg *config.Config) (Store, error) {
	if cfg.Storage.Driver == "memory" {
		return NewMemory(), nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseConnection, "failed to open blob store").
			WithContext("driver", cfg.Storage.Driver)
	}
	return NewGorm(db), nil
}

// GormStore keeps blobs in the blobs table
type GormStore struct {
	db *gorm.DB
}

// NewGorm wraps an already migrated database handle
func NewGorm(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get returns the value stored under key
func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var blob models.Blob
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&blob).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.DatabaseError("failed to read blob", err).WithContext("key", key)
	}
	return blob.Value, true, nil
}

// Set upserts the value stored under key
func (s *GormStore) Set(ctx context.Context, key, value string) error {
	blob := models.Blob{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&blob).Error
	if err != nil {
		return errors.DatabaseError("failed to write blob", err).WithContext("key", key)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *GormStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.Blob{}).Error; err != nil {
		return errors.DatabaseError("failed to delete blob", err).WithContext("key", key)
	}
	return nil
}

// Ping checks the database connection
func (s *GormStore) Ping(ctx context.Context) error {
	return database.HealthCheck(s.db.WithContext(ctx))
}

// Close closes the underlying database
func (s *GormStore) Close() error {
	return database.Close(s.db)
}

// MemoryStore is a process-local Store
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store
func NewMemory() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value stored under key
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete removes key
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Ping always succeeds
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op
func (m *MemoryStore) Close() error { return nil }
