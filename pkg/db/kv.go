package db

import (
	"context"
	"errors"
	"time"

	"github.com/freshcart/storefront/pkg/db/models"
	"github.com/freshcart/storefront/pkg/kvstore"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVStore persists kvstore entries in the kv_entries table.
type KVStore struct {
	db *gorm.DB
}

var _ kvstore.Store = (*KVStore)(nil)

// NewKVStore binds a key-value store to the client's connection.
func NewKVStore(c *Client) *KVStore {
	return &KVStore{db: c.DB()}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).
		Where(keyEquals(key)).
		Take(&entry).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", kvstore.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

// Set upserts the value; the previous value is overwritten.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	entry := models.KVEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).
		Error
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).
		Where(keyEquals(key)).
		Delete(&models.KVEntry{}).
		Error
}

func (s *KVStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func keyEquals(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}
