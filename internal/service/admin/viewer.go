package admin

import (
	"context"
	"sync"

	"github.com/hospintel/hospintel_backend/internal/store"
	"github.com/hospintel/hospintel_backend/pkg/digest"
)

type State int

const (
	Locked State = iota
	Unlocked
)

func (s State) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

// Viewer is a single-operator record browser. It starts Locked and unlocks
// once for the lifetime of the value.
type Viewer struct {
	mu         sync.Mutex
	state      State
	passDigest string
	store      *store.Adapter
	stores     []string
}

func NewViewer(passDigest string, st *store.Adapter, stores []string) *Viewer {
	return &Viewer{passDigest: passDigest, store: st, stores: stores}
}

func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Unlock checks the passphrase against the configured digest. On mismatch
// the viewer stays Locked.
func (v *Viewer) Unlock(_ context.Context, passphrase string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == Unlocked {
		return nil
	}
	if v.passDigest == "" {
		return ErrAdminDisabled
	}
	if !digest.Match(passphrase, v.passDigest) {
		return ErrInvalidPassphrase
	}
	v.state = Unlocked
	return nil
}

// Records re-reads every configured store.
func (v *Viewer) Records(ctx context.Context) ([]Listing, error) {
	if v.State() != Unlocked {
		return nil, ErrLocked
	}
	names, err := resolveStores(nil, v.stores)
	if err != nil {
		return nil, err
	}
	return collect(ctx, v.store, names), nil
}

func (v *Viewer) Delete(ctx context.Context, storeName, id string) error {
	if v.State() != Unlocked {
		return ErrLocked
	}
	return v.store.Delete(ctx, storeName, id)
}
