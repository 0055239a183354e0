// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/application/ai"
	"github.com/nutrismart/planner/internal/application/auth"
	"github.com/nutrismart/planner/internal/application/chat"
	"github.com/nutrismart/planner/internal/application/grocery"
	"github.com/nutrismart/planner/internal/application/planner"
	"github.com/nutrismart/planner/internal/application/profile"
	"github.com/nutrismart/planner/internal/application/progress"
	"github.com/nutrismart/planner/internal/application/storage"
	"github.com/nutrismart/planner/internal/application/suggestions"
	"github.com/nutrismart/planner/internal/infrastructure/ai/gemini"
	"github.com/nutrismart/planner/internal/infrastructure/ai/openai"
	"github.com/nutrismart/planner/internal/infrastructure/config"
	"github.com/nutrismart/planner/internal/infrastructure/http/apiserver"
	"github.com/nutrismart/planner/internal/infrastructure/identity/google"
	"github.com/nutrismart/planner/internal/infrastructure/monitoring"
	gormstore "github.com/nutrismart/planner/internal/infrastructure/persistence/gorm"
	"github.com/nutrismart/planner/internal/infrastructure/persistence/memory"
	"github.com/nutrismart/planner/internal/infrastructure/persistence/postgres"
	redisstore "github.com/nutrismart/planner/internal/infrastructure/persistence/redis"
	"github.com/nutrismart/planner/internal/infrastructure/persistence/sqlite"
	"github.com/nutrismart/planner/internal/infrastructure/security"
	"github.com/nutrismart/planner/internal/ports/outbound"
	"github.com/nutrismart/planner/pkg/healthcheck"
	"github.com/nutrismart/planner/pkg/logger"
)

// ConfigPath is the config file to load; empty searches the default locations
type ConfigPath string

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	ObservabilityModule,
	StorageModule,
	AIModule,
	IdentityModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging. The level follows log_level edits in the
// config file.
var LoggerModule = fx.Options(
	fx.Provide(
		func(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
			return logger.NewWithLevel(logger.Config{
				Level:       cfg.App.LogLevel,
				Format:      cfg.App.LogFormat,
				Development: cfg.App.Debug,
			})
		},
	),
	fx.Invoke(func(cfg *config.Config, level zap.AtomicLevel, log *zap.Logger) {
		cfg.Watch(func(name string) {
			level.SetLevel(logger.ParseLevel(name))
			log.Info("Log level changed", zap.String("level", name))
		})
	}),
)

// ObservabilityModule provides metrics, tracing and health checks. The
// telemetry providers are installed globally, so they are invoked eagerly.
var ObservabilityModule = fx.Options(
	fx.Provide(
		monitoring.NewMetricsCollector,
		NewTelemetry,
		func(cfg *config.Config, log *zap.Logger) *healthcheck.HealthCheck {
			health := healthcheck.New(cfg.App.Version, log.Named("health"))
			health.SetTimeout(cfg.Monitoring.HealthTimeout)
			return health
		},
	),
	fx.Invoke(func(*monitoring.Telemetry) {}),
)

// StorageModule provides the key-value store and the JSON document layer
var StorageModule = fx.Provide(
	NewKeyValueStore,
	storage.NewDocuments,
)

// AIModule provides the model client and the gateway in front of it
var AIModule = fx.Provide(
	NewModelClient,
	func(client outbound.ModelClient, metrics *monitoring.MetricsCollector, log *zap.Logger) *ai.Gateway {
		return ai.NewGateway(client, log, ai.WithRecorder(metrics))
	},
)

// IdentityModule provides Google sign-in and session tokens
var IdentityModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) outbound.IdentityProvider {
		return google.NewProvider(google.Config{
			UserInfoURL: cfg.Auth.GoogleUserInfoURL,
			RevokeURL:   cfg.Auth.GoogleRevokeURL,
		}, log)
	},
	NewTokenManager,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	security.NewValidationService,
	NewServices,
)

// HTTPModule provides the HTTP server
var HTTPModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger, services apiserver.Services, validation *security.ValidationService,
		metrics *monitoring.MetricsCollector, health *healthcheck.HealthCheck) (*apiserver.Server, error) {
		return apiserver.NewServer(cfg, log, services, validation, metrics, health)
	},
)

// LifecycleModule registers health checks and starts the server
var LifecycleModule = fx.Invoke(
	RegisterHealthChecks,
	RegisterLifecycleHooks,
)

// NewTelemetry installs the OpenTelemetry providers and flushes them on stop
func NewTelemetry(lc fx.Lifecycle, cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) (*monitoring.Telemetry, error) {
	telemetry, err := monitoring.NewTelemetry(context.Background(), monitoring.TelemetryConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		TracingEnabled: cfg.Monitoring.EnableTracing,
		OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
		OTLPInsecure:   cfg.Monitoring.OTLPInsecure,
		SamplingRate:   cfg.Monitoring.SamplingRate,
		MetricsEnabled: cfg.Monitoring.EnableMetrics,
	}, metrics, log)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{OnStop: telemetry.Shutdown})
	return telemetry, nil
}

// NewKeyValueStore opens the backend selected by storage.driver
func NewKeyValueStore(lc fx.Lifecycle, cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) (outbound.KeyValueStore, error) {
	ctx := context.Background()

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewStore(), nil

	case config.DriverSQLite:
		db, err := sqlite.SetupDatabase(cfg.Storage.SQLitePath, sqlite.ParseLogLevel(cfg.Storage.LogLevel))
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		metrics.RegisterDBStats(sqlDB, config.DriverSQLite)
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return sqlDB.Close() }})

		log.Info("Connected to SQLite database", zap.String("path", cfg.Storage.SQLitePath))
		return gormstore.NewDocumentStore(db), nil

	case config.DriverPostgres:
		cm, err := postgres.NewConnectionManager(ctx, cfg.Storage, log)
		if err != nil {
			return nil, err
		}
		metrics.RegisterDBStats(cm.SQLDB(), config.DriverPostgres)
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return cm.Close() }})
		return gormstore.NewDocumentStore(cm.GetDB()), nil

	case config.DriverRedis:
		store, err := redisstore.NewStore(ctx, cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return store.Close() }})
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// NewModelClient builds the configured provider's client. Without a
// credential it returns a nil client and the gateway answers with fallbacks.
func NewModelClient(cfg *config.Config, log *zap.Logger) (outbound.ModelClient, error) {
	if !cfg.AIConfigured() {
		log.Warn("No AI credential configured, AI features are disabled",
			zap.String("provider", cfg.AI.Provider))
		return nil, nil
	}

	switch cfg.AI.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(context.Background(), gemini.Config{
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		}, log)
		if err != nil {
			return nil, err
		}
		return client, nil

	case config.ProviderOpenAI, config.ProviderOllama:
		client, err := openai.NewClient(openai.Config{
			Provider:    cfg.AI.Provider,
			APIKey:      cfg.AI.APIKey,
			BaseURL:     cfg.AI.BaseURL,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
			Timeout:     cfg.AI.Timeout,
		}, log)
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.AI.Provider)
	}
}

// NewTokenManager signs session tokens. Outside production a missing secret
// is replaced by a random one, so sessions end with the process.
func NewTokenManager(cfg *config.Config, log *zap.Logger) (*security.TokenManager, error) {
	secret := cfg.Auth.SessionSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		log.Warn("auth.session_secret not set, using an ephemeral secret")
	}
	return security.NewTokenManager(secret, cfg.Auth.SessionTTL)
}

// NewServices wires the application services over one document store
func NewServices(
	docs *storage.Documents,
	gateway *ai.Gateway,
	identity outbound.IdentityProvider,
	tokens *security.TokenManager,
	validation *security.ValidationService,
	log *zap.Logger,
) apiserver.Services {
	profiles := profile.NewService(docs, validation, log)
	plans := planner.NewService(docs, profiles, gateway, log)

	return apiserver.Services{
		Profiles:    profiles,
		Plans:       plans,
		Grocery:     grocery.NewService(docs, plans, log),
		Progress:    progress.NewService(docs, profiles, validation, log),
		Suggestions: suggestions.NewService(profiles, gateway, log),
		Chat:        chat.NewService(docs, profiles, gateway, validation, log),
		Auth:        auth.NewService(identity, tokens, log),
	}
}

// RegisterHealthChecks adds the store and model provider checks. A missing
// or failing model provider only degrades the service.
func RegisterHealthChecks(health *healthcheck.HealthCheck, store outbound.KeyValueStore, gateway *ai.Gateway) {
	health.Register("store", healthcheck.NewPingChecker(store.Ping))
	health.Register("ai", healthcheck.NewCustomChecker("ai", func(ctx context.Context) (healthcheck.Status, string, interface{}) {
		if !gateway.Configured() {
			return healthcheck.StatusDegraded, "no model credential configured", nil
		}
		if err := gateway.HealthCheck(ctx); err != nil {
			return healthcheck.StatusDegraded, err.Error(), nil
		}
		return healthcheck.StatusHealthy, "", nil
	}))
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	server *apiserver.Server,
) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting NutriSmart planner",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("storage", cfg.Storage.Driver),
				zap.String("ai_provider", cfg.AI.Provider),
			)

			go func() {
				if err := server.Start(runCtx); err != nil {
					log.Error("HTTP server failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping NutriSmart planner")
			cancel()
			err := server.Shutdown(ctx)
			_ = log.Sync()
			return err
		},
	})
}
