package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/hospintel/hospintel_backend/config"
	"github.com/hospintel/hospintel_backend/internal/events"
	"github.com/hospintel/hospintel_backend/internal/service/submission"
	"github.com/hospintel/hospintel_backend/pkg/email"
	"github.com/hospintel/hospintel_backend/pkg/sms"
)

// WorkerModule registers the NATS event workers. It is a no-op when the bus
// is disabled.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc    fx.Lifecycle
	Cfg   *config.Config
	NC    *nats.Conn
	Email *email.Client
	SMS   *sms.Client
}

func RegisterWorkers(p WorkerParams) error {
	if p.NC == nil {
		return nil
	}
	notifier, err := directNotifier(p.Cfg, p.Email, p.SMS)
	if err != nil {
		return err
	}

	var sub *nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			sub, err = p.NC.QueueSubscribe(events.SubjectRecordStoredAll, events.QueueNotifiers, notificationWorker(notifier))
			if err != nil {
				return err
			}
			slog.Info("notification_worker: subscribed", "subject", events.SubjectRecordStoredAll)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if sub == nil {
				return nil
			}
			return sub.Unsubscribe()
		},
	})
	return nil
}

// notificationWorker sends alerts for every stored record event it receives.
func notificationWorker(n submission.Notifier) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ev, err := events.DecodeRecordStored(msg)
		if err != nil {
			slog.Warn("notification_worker: dropping event", "subject", msg.Subject, "err", err)
			return
		}
		if err := n.Notify(context.Background(), ev.Store, ev.Record); err != nil {
			var disabled email.ErrDisabled
			if errors.As(err, &disabled) {
				return
			}
			slog.Warn("notification_worker: send failed", "id", ev.Record.ID, "err", err)
		}
	}
}
