// Package store persists captured records into named stores ("leads",
// "inquiries") behind a pluggable backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hospintel/hospintel_backend/internal/model"
)

// Backend is the storage contract every persistence engine implements.
// Implementations must be safe for concurrent use.
type Backend interface {
	GetAll(ctx context.Context, store string) ([]model.Record, error)
	Get(ctx context.Context, store, id string) (*model.Record, error)
	// Add inserts rec; it returns ErrDuplicate when the id is taken and
	// ErrQuotaExceeded when the store is full.
	Add(ctx context.Context, store string, rec model.Record) error
	// Delete removes a record; it returns ErrNotFound when absent.
	Delete(ctx context.Context, store, id string) error
	Close() error
}

// Adapter is what services use. Reads never fail the caller; writes come
// back as one of the package sentinels.
type Adapter struct {
	backend Backend
	log     *slog.Logger
}

func NewAdapter(b Backend, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{backend: b, log: log.With("component", "store")}
}

// GetAll returns every record in the store in no particular order. Backend
// failures are logged and yield an empty slice.
func (a *Adapter) GetAll(ctx context.Context, store string) []model.Record {
	if !model.IsStore(store) {
		a.log.WarnContext(ctx, "read from unknown store", "store", store)
		return []model.Record{}
	}
	recs, err := a.backend.GetAll(ctx, store)
	if err != nil {
		a.log.ErrorContext(ctx, "failed to read store", "store", store, "error", err)
		return []model.Record{}
	}
	if recs == nil {
		return []model.Record{}
	}
	return recs
}

func (a *Adapter) Get(ctx context.Context, store, id string) (*model.Record, error) {
	if !model.IsStore(store) {
		return nil, ErrUnknownStore
	}
	rec, err := a.backend.Get(ctx, store, id)
	if err != nil {
		return nil, classify(err)
	}
	return rec, nil
}

func (a *Adapter) Add(ctx context.Context, store string, rec model.Record) error {
	if !model.IsStore(store) {
		return ErrUnknownStore
	}
	if err := a.backend.Add(ctx, store, rec); err != nil {
		err = classify(err)
		a.log.WarnContext(ctx, "failed to add record", "store", store, "id", rec.ID, "error", err)
		return err
	}
	return nil
}

// Delete removes a record. Deleting an absent id succeeds.
func (a *Adapter) Delete(ctx context.Context, store, id string) error {
	if !model.IsStore(store) {
		return ErrUnknownStore
	}
	err := a.backend.Delete(ctx, store, id)
	if err == nil || errors.Is(err, ErrNotFound) {
		return nil
	}
	err = classify(err)
	a.log.WarnContext(ctx, "failed to delete record", "store", store, "id", id, "error", err)
	return err
}

func (a *Adapter) Close() error {
	return a.backend.Close()
}

// classify keeps known sentinels and folds everything else into
// ErrUnavailable.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrQuotaExceeded),
		errors.Is(err, ErrUnavailable),
		errors.Is(err, ErrUnknownStore):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
