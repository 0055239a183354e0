package gorm

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nutrismart/planner/internal/ports/outbound"
)

// DocumentStore implements outbound.KeyValueStore on a SQL table
type DocumentStore struct {
	db *gorm.DB
}

// NewDocumentStore creates a store over an open database
func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Get retrieves a value
func (s *DocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	var model DocumentModel

	result := s.db.WithContext(ctx).First(&model, "doc_key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrKeyNotFound
		}
		return nil, result.Error
	}

	return []byte(model.Value), nil
}

// Set upserts a value
func (s *DocumentStore) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC()
	model := DocumentModel{
		Key:       key,
		Value:     datatypes.JSON(value),
		CreatedAt: now,
		UpdatedAt: now,
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&DocumentModel{}, "doc_key = ?", key).Error
}

// Ping checks the underlying connection
func (s *DocumentStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Keys returns every stored key in order. Only tests and debugging use it;
// the KeyValueStore contract has no listing.
func (s *DocumentStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).Model(&DocumentModel{}).Order("doc_key").Pluck("doc_key", &keys).Error
	return keys, err
}
