package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/hospintel/hospintel_backend/config"
	"github.com/hospintel/hospintel_backend/internal/events"
	"github.com/hospintel/hospintel_backend/internal/service/admin"
	"github.com/hospintel/hospintel_backend/internal/service/submission"
	"github.com/hospintel/hospintel_backend/internal/store"
	"github.com/hospintel/hospintel_backend/pkg/email"
	"github.com/hospintel/hospintel_backend/pkg/observability"
	"github.com/hospintel/hospintel_backend/pkg/sms"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideSubmissionRecorder,
		ProvideGateway,
		ProvideSessionStore,
		ProvideAdminService,
	),
)

func ProvideSubmissionRecorder() *observability.SubmissionRecorder {
	return observability.NewSubmissionRecorder()
}

type GatewayParams struct {
	fx.In

	Lc      fx.Lifecycle
	Cfg     *config.Config
	Store   *store.Adapter
	Redis   *goredis.Client
	NC      *nats.Conn
	Email   *email.Client
	SMS     *sms.Client
	Metrics *observability.SubmissionRecorder
	Log     *slog.Logger
}

// ProvideGateway publishes stored records to NATS when the bus is enabled;
// otherwise the gateway sends notifications itself.
func ProvideGateway(p GatewayParams) (*submission.Gateway, error) {
	sc := submission.FromCentralConfig(p.Cfg.Submission)

	var notifier submission.Notifier
	if p.NC != nil {
		notifier = events.NewPublisher(p.NC)
	} else {
		n, err := directNotifier(p.Cfg, p.Email, p.SMS)
		if err != nil {
			return nil, err
		}
		notifier = n
	}

	fwd := submission.NewHTTPForwarder(sc)
	if !fwd.Configured() {
		p.Log.Warn("submission endpoint not configured, all submissions are stored locally")
	}

	gw := submission.New(p.Store, fwd, notifier, p.Metrics, p.Log)
	if p.Redis != nil {
		gw.WithReplays(submission.NewRedisReplays(p.Redis, sc.ReplayTTL))
	} else {
		gw.WithReplays(submission.NewMemoryReplays(sc.ReplayTTL))
	}
	p.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			gw.Wait()
			return nil
		},
	})
	return gw, nil
}

// directNotifier sends email and SMS alerts for a stored record.
func directNotifier(cfg *config.Config, mail *email.Client, text *sms.Client) (submission.Notifier, error) {
	smsNotifier, err := submission.NewSMSNotifier(text, cfg.SMS.NotifyTo, cfg.SMS.Region)
	if err != nil {
		return nil, err
	}
	return submission.Notifiers{
		submission.NewEmailNotifier(mail, cfg.Submission.NotifyTo),
		smsNotifier,
	}, nil
}

func ProvideSessionStore(cfg *config.Config, rdb *goredis.Client) admin.SessionStore {
	if cfg.Admin.SessionBackend == "redis" && rdb != nil {
		return admin.NewRedisSessions(rdb)
	}
	return admin.NewMemorySessions()
}

func ProvideAdminService(cfg *config.Config, sessions admin.SessionStore, st *store.Adapter, log *slog.Logger) (*admin.Service, error) {
	svc, err := admin.New(admin.FromCentralConfig(cfg.Admin), sessions, st, log)
	if err != nil {
		return nil, err
	}
	if !svc.Enabled() {
		log.Warn("admin.passphrase_digest is empty, admin login is disabled")
	}
	return svc, nil
}
