// Package storage maps the planner's collections onto key-value documents.
// Each collection is one JSON value under a fixed key and every write
// replaces the whole value.
package storage

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/ports/outbound"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

// Keys of the top-level collections
const (
	KeyProfiles        = "nutrismart-profiles"
	KeyActiveProfileID = "nutrismart-activeProfileId"
	KeyWeeklyPlans     = "nutrismart-weeklyPlans"
	KeyGroceryList     = "nutrismart-groceryList"
	KeyChatMessages    = "nutrismart-chatMessages"

	progressKeyPrefix = "nutrismart-progress-"
)

// ProgressKey is the per-profile key of a progress history
func ProgressKey(profileID string) string {
	return progressKeyPrefix + profileID
}

// Documents reads and writes JSON documents through a KeyValueStore
type Documents struct {
	store  outbound.KeyValueStore
	logger *zap.Logger
}

// NewDocuments wraps a store
func NewDocuments(store outbound.KeyValueStore, logger *zap.Logger) *Documents {
	return &Documents{store: store, logger: logger.Named("documents")}
}

// Load decodes the document under key into dest. It reports false when the
// key is absent or the stored value cannot be decoded; an undecodable value
// is logged and treated as absent.
func (d *Documents) Load(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := d.store.Get(ctx, key)
	if errors.Is(err, outbound.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewStorageError("read", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		d.logger.Warn("Discarding undecodable document",
			zap.String("key", key),
			zap.Error(err),
		)
		return false, nil
	}
	return true, nil
}

// Save encodes value and overwrites the document under key
func (d *Documents) Save(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperrors.NewStorageError("encode", key, err)
	}
	if err := d.store.Set(ctx, key, raw); err != nil {
		return apperrors.NewStorageError("write", key, err)
	}
	return nil
}

// Remove deletes the document under key; removing an absent key is not an error
func (d *Documents) Remove(ctx context.Context, key string) error {
	err := d.store.Delete(ctx, key)
	if err != nil && !errors.Is(err, outbound.ErrKeyNotFound) {
		return apperrors.NewStorageError("delete", key, err)
	}
	return nil
}
