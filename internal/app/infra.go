package app

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/hospintel/hospintel_backend/config"
	"github.com/hospintel/hospintel_backend/internal/store"
	"github.com/hospintel/hospintel_backend/pkg/email"
	"github.com/hospintel/hospintel_backend/pkg/logs"
	"github.com/hospintel/hospintel_backend/pkg/observability"
	redispkg "github.com/hospintel/hospintel_backend/pkg/redis"
	"github.com/hospintel/hospintel_backend/pkg/sms"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideStore),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideNatsClient),
)

// ProvideLogger hands services the process logger. Commands install it with
// logs.New before fx starts; a bare graph gets one built here.
func ProvideLogger(cfg *config.Config) *slog.Logger {
	if installed.Load() {
		return slog.Default()
	}
	logger := logs.New(cfg)
	UseLogger(logger)
	return logger
}

var installed atomic.Bool

// UseLogger installs logger as the process default.
func UseLogger(logger *slog.Logger) {
	slog.SetDefault(logger)
	installed.Store(true)
}

// ProvideRedis connects only when an address is configured. A nil client
// means every redis-backed feature falls back to process memory.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*goredis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	rdb, err := redispkg.New(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideStore(lc fx.Lifecycle, cfg *config.Config, rdb *goredis.Client, log *slog.Logger) (*store.Adapter, error) {
	var client goredis.UniversalClient
	if rdb != nil {
		client = rdb
	}
	backend, err := store.Open(context.Background(), cfg.Storage, client)
	if err != nil {
		return nil, err
	}
	adapter := store.NewAdapter(backend, log)
	slog.Info("record store ready", "driver", cfg.Storage.Driver)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing record store")
			return adapter.Close()
		},
	})
	return adapter, nil
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if !cfg.Nats.Enabled {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL, nats.Name(cfg.Nats.Name))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
