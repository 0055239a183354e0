// Package postgres provides PostgreSQL database connection and management
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nutrismart/planner/internal/infrastructure/config"
	"github.com/nutrismart/planner/internal/infrastructure/persistence/migrations"
)

// ConnectionManager owns the PostgreSQL pool behind the document store
type ConnectionManager struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	logger *zap.Logger
}

// NewConnectionManager migrates the schema, when enabled, and opens a pooled
// GORM connection over pgx
func NewConnectionManager(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (*ConnectionManager, error) {
	log = log.Named("postgres")

	if cfg.RunMigrations {
		if err := runMigrations(cfg.PostgresDSN, log); err != nil {
			return nil, err
		}
	}

	sqlDB, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 newGORMLogger(log, cfg.LogLevel),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Database connection manager initialized",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		zap.Bool("migrations", cfg.RunMigrations),
	)

	return &ConnectionManager{db: db, sqlDB: sqlDB, logger: log}, nil
}

// runMigrations uses a dedicated handle because the migrator closes it
func runMigrations(dsn string, log *zap.Logger) error {
	migrationDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}

	migrator, err := migrations.New(migrationDB, log)
	if err != nil {
		_ = migrationDB.Close()
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	return migrator.Up()
}

// GetDB returns the GORM handle
func (cm *ConnectionManager) GetDB() *gorm.DB {
	return cm.db
}

// SQLDB returns the pooled database/sql handle
func (cm *ConnectionManager) SQLDB() *sql.DB {
	return cm.sqlDB
}

// HealthCheck pings the database
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	if err := cm.sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close closes the pool
func (cm *ConnectionManager) Close() error {
	if err := cm.sqlDB.Close(); err != nil {
		cm.logger.Error("Failed to close database", zap.Error(err))
		return err
	}
	return nil
}

func newGORMLogger(log *zap.Logger, level string) logger.Interface {
	logLevel := logger.Warn
	switch level {
	case "silent":
		logLevel = logger.Silent
	case "debug", "info":
		logLevel = logger.Info
	case "error":
		logLevel = logger.Error
	}

	return logger.New(
		&GORMLogWriter{logger: log},
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// GORMLogWriter routes GORM log lines into zap
type GORMLogWriter struct {
	logger *zap.Logger
}

// Printf implements logger.Writer
func (w *GORMLogWriter) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	switch {
	case strings.Contains(msg, "SLOW SQL"):
		w.logger.Warn("GORM slow query", zap.String("message", msg))
	case strings.Contains(msg, "error"), strings.Contains(msg, "ERROR"):
		w.logger.Error("GORM error", zap.String("message", msg))
	default:
		w.logger.Debug("GORM log", zap.String("message", msg))
	}
}
