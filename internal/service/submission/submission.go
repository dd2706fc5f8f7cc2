// Package submission delivers captured form payloads: remote collector
// first, local store as the fallback.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hospintel/hospintel_backend/config"
	"github.com/hospintel/hospintel_backend/internal/model"
	"github.com/hospintel/hospintel_backend/internal/store"
	"github.com/hospintel/hospintel_backend/pkg/observability"
	"github.com/hospintel/hospintel_backend/pkg/reqctx"
)

const (
	MsgReceived  = "Thank you. Your submission has been received."
	MsgReplayed  = "This submission was already received."
	MsgQuotaFull = "We could not save your submission because storage is full. Please try again later or email us directly."
	MsgFailed    = "We could not save your submission right now. Please try again later or email us directly."
)

// idempotencyNamespace scopes UUIDv5 ids derived from Idempotency-Key values.
var idempotencyNamespace = uuid.MustParse("6f1c2a0e-3d4b-5e6f-8a9b-0c1d2e3f4a5b")

type Delivery string

const (
	DeliveryRemote Delivery = observability.DeliveryRemote
	DeliveryLocal  Delivery = observability.DeliveryLocal
	DeliveryFailed Delivery = observability.DeliveryFailed
)

// Config controls remote delivery.
type Config struct {
	Endpoint  string
	Latency   time.Duration
	Timeout   time.Duration
	NotifyTo  []string
	ReplayTTL time.Duration
}

func FromCentralConfig(c config.SubmissionConfig) Config {
	return Config{
		Endpoint:  c.Endpoint,
		Latency:   time.Duration(c.SimulatedLatencyMs) * time.Millisecond,
		Timeout:   time.Duration(c.TimeoutSeconds) * time.Second,
		NotifyTo:  c.NotifyTo,
		ReplayTTL: time.Duration(c.ReplayTTLSeconds) * time.Second,
	}
}

// Submission is one form post as received from a client.
type Submission struct {
	Payload model.Payload
	// Source names the form; empty means the kind's default.
	Source string
	// IdempotencyKey, when set, makes retries of the same post return the
	// first stored record instead of a new one.
	IdempotencyKey string
}

// Result is the outcome of a delivery attempt. Delivery failures are
// reported here, never as errors.
type Result struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Delivery Delivery      `json:"delivery"`
	Replayed bool          `json:"replayed,omitempty"`
	Record   *model.Record `json:"record,omitempty"`
}

type Gateway struct {
	store    *store.Adapter
	fwd      Forwarder
	notifier Notifier
	replays  Replays
	metrics  *observability.SubmissionRecorder
	log      *slog.Logger
	tracer   trace.Tracer

	now   func() time.Time
	newID func() (uuid.UUID, error)

	notifyWG sync.WaitGroup
}

// New builds a Gateway. fwd, notifier and metrics may be nil.
func New(st *store.Adapter, fwd Forwarder, notifier Notifier, metrics *observability.SubmissionRecorder, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{
		store:    st,
		fwd:      fwd,
		notifier: notifier,
		replays:  NewMemoryReplays(DefaultReplayTTL),
		metrics:  metrics,
		log:      log.With("component", "submission"),
		tracer:   otel.Tracer("github.com/hospintel/hospintel_backend/internal/service/submission"),
		now:      time.Now,
		newID:    uuid.NewV7,
	}
}

// WithReplays replaces the in-process replay ledger, typically with one
// shared between instances.
func (g *Gateway) WithReplays(r Replays) *Gateway {
	if r != nil {
		g.replays = r
	}
	return g
}

// Submit validates, stamps and delivers a payload. The returned error is
// non-nil only for invalid input (ErrInvalidPayload).
func (g *Gateway) Submit(ctx context.Context, sub Submission) (Result, error) {
	if sub.Payload == nil {
		return Result{}, fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}
	if err := sub.Payload.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	kind := sub.Payload.Kind()
	storeName := model.StoreFor(kind)
	source := strings.TrimSpace(sub.Source)
	if source == "" {
		source = model.DefaultSource(kind)
	}
	key := strings.TrimSpace(sub.IdempotencyKey)

	ctx, span := g.tracer.Start(ctx, "submission.Submit", trace.WithAttributes(
		attribute.String("submission.kind", string(kind)),
		attribute.String("submission.store", storeName),
	))
	defer span.End()

	log := g.log.With(reqctx.LogAttrs(ctx)...).With("kind", kind, "store", storeName)

	var id string
	if key != "" {
		id = idempotentID(storeName, key)
		if existing, err := g.store.Get(ctx, storeName, id); err == nil {
			log.InfoContext(ctx, "idempotent replay", "id", id)
			return g.replayed(ctx, kind, existing, DeliveryLocal), nil
		}
		forwarded, err := g.replays.Lookup(ctx, id)
		if err != nil {
			log.WarnContext(ctx, "replay lookup failed", "id", id, "error", err)
		}
		if forwarded != nil {
			log.InfoContext(ctx, "idempotent replay of forwarded submission", "id", id)
			return g.replayed(ctx, kind, forwarded, DeliveryRemote), nil
		}
	} else {
		u, err := g.newID()
		if err != nil {
			// uuid.NewV7 only fails when the system entropy source does.
			span.RecordError(err)
			return g.failed(ctx, kind, err), nil
		}
		id = u.String()
	}

	rec := model.NewRecord(id, sub.Payload, source, g.now())
	rec.IdempotencyKey = key
	span.SetAttributes(attribute.String("submission.id", rec.ID))

	if g.fwd != nil {
		err := g.fwd.Forward(ctx, rec)
		if err == nil {
			log.InfoContext(ctx, "submission forwarded", "id", rec.ID)
			if key != "" {
				if err := g.replays.Remember(ctx, rec); err != nil {
					log.WarnContext(ctx, "replay marker not saved", "id", rec.ID, "error", err)
				}
			}
			g.metrics.Record(ctx, string(kind), observability.DeliveryRemote)
			span.SetAttributes(attribute.String("submission.delivery", string(DeliveryRemote)))
			return Result{Success: true, Message: MsgReceived, Delivery: DeliveryRemote, Record: &rec}, nil
		}
		if errors.Is(err, ErrNotConfigured) {
			log.DebugContext(ctx, "remote endpoint not configured, storing locally")
		} else {
			log.WarnContext(ctx, "remote delivery failed, storing locally", "error", err)
		}
	}

	if err := g.store.Add(ctx, storeName, rec); err != nil {
		if key != "" && errors.Is(err, store.ErrDuplicate) {
			if existing, gerr := g.store.Get(ctx, storeName, id); gerr == nil {
				return g.replayed(ctx, kind, existing, DeliveryLocal), nil
			}
		}
		log.ErrorContext(ctx, "fallback persistence failed", "id", rec.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fallback persistence failed")
		return g.failed(ctx, kind, err), nil
	}

	log.InfoContext(ctx, "submission stored locally", "id", rec.ID)
	g.metrics.Record(ctx, string(kind), observability.DeliveryLocal)
	span.SetAttributes(attribute.String("submission.delivery", string(DeliveryLocal)))
	g.notify(ctx, storeName, rec)

	return Result{Success: true, Message: MsgReceived, Delivery: DeliveryLocal, Record: &rec}, nil
}

// Wait blocks until in-flight notifications finish.
func (g *Gateway) Wait() {
	g.notifyWG.Wait()
}

func (g *Gateway) notify(ctx context.Context, storeName string, rec model.Record) {
	if g.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	g.notifyWG.Add(1)
	go func() {
		defer g.notifyWG.Done()
		if err := g.notifier.Notify(ctx, storeName, rec); err != nil {
			g.log.WarnContext(ctx, "new record notification failed", "id", rec.ID, "error", err)
		}
	}()
}

func (g *Gateway) replayed(ctx context.Context, kind model.Kind, rec *model.Record, d Delivery) Result {
	g.metrics.Record(ctx, string(kind), string(d))
	return Result{Success: true, Message: MsgReplayed, Delivery: d, Replayed: true, Record: rec}
}

func (g *Gateway) failed(ctx context.Context, kind model.Kind, err error) Result {
	g.metrics.Record(ctx, string(kind), observability.DeliveryFailed)
	msg := MsgFailed
	if errors.Is(err, store.ErrQuotaExceeded) {
		msg = MsgQuotaFull
	}
	return Result{Success: false, Message: msg, Delivery: DeliveryFailed}
}

func idempotentID(storeName, key string) string {
	return uuid.NewSHA1(idempotencyNamespace, []byte(storeName+"\x00"+key)).String()
}
