package gorm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm/logger"

	gormstore "github.com/nutrismart/planner/internal/infrastructure/persistence/gorm"
	"github.com/nutrismart/planner/internal/infrastructure/persistence/sqlite"
	"github.com/nutrismart/planner/internal/ports/outbound"
)

type DocumentStoreTestSuite struct {
	suite.Suite
	store *gormstore.DocumentStore
	ctx   context.Context
}

func (s *DocumentStoreTestSuite) SetupTest() {
	db, err := sqlite.SetupDatabase("", logger.Silent)
	s.Require().NoError(err)
	s.T().Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s.store = gormstore.NewDocumentStore(db)
	s.ctx = context.Background()
}

func (s *DocumentStoreTestSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, "nutrismart-plans")
	s.ErrorIs(err, outbound.ErrKeyNotFound)
}

func (s *DocumentStoreTestSuite) TestSetThenGet() {
	s.Require().NoError(s.store.Set(s.ctx, "nutrismart-plans", []byte(`[{"userId":"u1"}]`)))

	value, err := s.store.Get(s.ctx, "nutrismart-plans")
	s.Require().NoError(err)
	s.JSONEq(`[{"userId":"u1"}]`, string(value))
}

func (s *DocumentStoreTestSuite) TestSetOverwrites() {
	s.Require().NoError(s.store.Set(s.ctx, "k", []byte(`{"v":1}`)))
	s.Require().NoError(s.store.Set(s.ctx, "k", []byte(`{"v":2}`)))

	value, err := s.store.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.JSONEq(`{"v":2}`, string(value))

	keys, err := s.store.Keys(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"k"}, keys)
}

func (s *DocumentStoreTestSuite) TestDelete() {
	s.Require().NoError(s.store.Set(s.ctx, "a", []byte(`[]`)))
	s.Require().NoError(s.store.Set(s.ctx, "b", []byte(`[]`)))

	s.Require().NoError(s.store.Delete(s.ctx, "a"))
	s.NoError(s.store.Delete(s.ctx, "missing"))

	_, err := s.store.Get(s.ctx, "a")
	s.ErrorIs(err, outbound.ErrKeyNotFound)
	keys, err := s.store.Keys(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"b"}, keys)
}

func (s *DocumentStoreTestSuite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}

func TestDocumentStoreTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentStoreTestSuite))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, sqlite.ParseLogLevel("silent"))
	assert.Equal(t, logger.Info, sqlite.ParseLogLevel("debug"))
	assert.Equal(t, logger.Warn, sqlite.ParseLogLevel(""))
	require.Equal(t, logger.Error, sqlite.ParseLogLevel("error"))
}
