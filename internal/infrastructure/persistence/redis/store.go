// Package redis provides a Redis-backed key-value store
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/infrastructure/config"
	"github.com/nutrismart/planner/internal/ports/outbound"
)

// ErrCircuitOpen is returned while the breaker rejects calls
var ErrCircuitOpen = errors.New("redis circuit breaker is open")

// Store implements outbound.KeyValueStore. Documents are stored as plain
// string values without expiry.
type Store struct {
	client  redis.UniversalClient
	prefix  string
	breaker *CircuitBreaker
	logger  *zap.Logger
}

// NewStore connects to Redis and verifies the connection
func NewStore(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Store, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{cfg.Addr()},
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  10 * time.Second,
	})

	store := NewStoreWithClient(client, cfg.KeyPrefix, logger)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis store initialized",
		zap.String("addr", cfg.Addr()),
		zap.Int("database", cfg.Database),
	)
	return store, nil
}

// NewStoreWithClient wraps an existing client
func NewStoreWithClient(client redis.UniversalClient, prefix string, logger *zap.Logger) *Store {
	return &Store{
		client:  client,
		prefix:  prefix,
		breaker: NewCircuitBreaker(5, 30*time.Second),
		logger:  logger.Named("redis-store"),
	}
}

// Get retrieves a value
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if !s.breaker.AllowRequest() {
		return nil, ErrCircuitOpen
	}

	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		s.breaker.RecordSuccess()
		return nil, outbound.ErrKeyNotFound
	}
	if err != nil {
		s.breaker.RecordFailure()
		s.logger.Error("Redis GET failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	s.breaker.RecordSuccess()
	return value, nil
}

// Set stores a value, replacing any previous one
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if !s.breaker.AllowRequest() {
		return ErrCircuitOpen
	}

	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		s.breaker.RecordFailure()
		s.logger.Error("Redis SET failed", zap.String("key", key), zap.Error(err))
		return err
	}

	s.breaker.RecordSuccess()
	return nil
}

// Delete removes a key
func (s *Store) Delete(ctx context.Context, key string) error {
	if !s.breaker.AllowRequest() {
		return ErrCircuitOpen
	}

	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		s.breaker.RecordFailure()
		s.logger.Error("Redis DEL failed", zap.String("key", key), zap.Error(err))
		return err
	}

	s.breaker.RecordSuccess()
	return nil
}

// Ping checks the connection. It bypasses the breaker so readiness reflects
// the server rather than recent history.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}
