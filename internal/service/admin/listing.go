package admin

import (
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/hospintel/hospintel_backend/internal/model"
	"github.com/hospintel/hospintel_backend/internal/store"
)

// Listing is a point-in-time snapshot of one store, newest record first.
type Listing struct {
	Store   string         `json:"store"`
	Count   int            `json:"count"`
	Records []model.Record `json:"records"`
}

// resolveStores dedupes names and rejects unknown ones. An empty request
// means every configured store.
func resolveStores(requested, configured []string) ([]string, error) {
	if len(requested) == 0 {
		requested = configured
	}
	names := lo.Uniq(lo.Compact(requested))
	if bad, ok := lo.Find(names, func(n string) bool { return !model.IsStore(n) }); ok {
		return nil, &UnknownStoreError{Name: bad}
	}
	return names, nil
}

type UnknownStoreError struct{ Name string }

func (e *UnknownStoreError) Error() string { return "unknown store " + e.Name }
func (e *UnknownStoreError) Unwrap() error { return store.ErrUnknownStore }

func collect(ctx context.Context, st *store.Adapter, names []string) []Listing {
	return lo.Map(names, func(name string, _ int) Listing {
		recs := st.GetAll(ctx, name)
		slices.SortFunc(recs, func(a, b model.Record) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return strings.Compare(b.ID, a.ID)
		})
		return Listing{Store: name, Count: len(recs), Records: recs}
	})
}
