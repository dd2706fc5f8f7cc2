// Package admin gates read access to captured records behind the
// configured passphrase digest.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hospintel/hospintel_backend/config"
	"github.com/hospintel/hospintel_backend/internal/model"
	"github.com/hospintel/hospintel_backend/internal/store"
	"github.com/hospintel/hospintel_backend/pkg/codes"
	"github.com/hospintel/hospintel_backend/pkg/constants"
	"github.com/hospintel/hospintel_backend/pkg/digest"
	pasetotoken "github.com/hospintel/hospintel_backend/pkg/paseto"
	"github.com/hospintel/hospintel_backend/pkg/reqctx"
)

type Config struct {
	PassphraseDigest string
	SessionTTL       time.Duration
	// TokenKey is the hex v4.local key. Empty generates one per process.
	TokenKey string
	Stores   []string
}

func FromCentralConfig(c config.AdminConfig) Config {
	stores := c.Stores
	if len(stores) == 0 {
		stores = model.Stores()
	}
	return Config{
		PassphraseDigest: strings.ToLower(strings.TrimSpace(c.PassphraseDigest)),
		SessionTTL:       time.Duration(c.SessionTTLMinutes) * time.Minute,
		TokenKey:         c.TokenKey,
		Stores:           stores,
	}
}

// Session is returned on a successful login. ExpiresAt is zero when
// sessions do not expire.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Service is the server-side admin gate used by the HTTP API.
type Service struct {
	cfg      Config
	sessions SessionStore
	tokens   *pasetotoken.Manager
	store    *store.Adapter
	log      *slog.Logger
	now      func() time.Time
}

func New(cfg Config, sessions SessionStore, st *store.Adapter, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "admin")

	key, ephemeral, err := pasetotoken.LoadKey(cfg.TokenKey)
	if err != nil {
		return nil, err
	}
	if ephemeral && cfg.PassphraseDigest != "" {
		log.Warn("admin.token_key not set, bearer tokens will not survive a restart")
	}
	tokens, err := pasetotoken.New(pasetotoken.Config{
		Issuer:   constants.ServiceName,
		Audience: constants.ServiceName + "-admin",
	}, key)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:      cfg,
		sessions: sessions,
		tokens:   tokens,
		store:    st,
		log:      log,
		now:      time.Now,
	}, nil
}

// Enabled reports whether a passphrase digest is configured.
func (s *Service) Enabled() bool {
	return s.cfg.PassphraseDigest != ""
}

// NewViewer returns a fresh Locked viewer over the same stores.
func (s *Service) NewViewer() *Viewer {
	return NewViewer(s.cfg.PassphraseDigest, s.store, s.cfg.Stores)
}

func (s *Service) Login(ctx context.Context, passphrase string) (Session, error) {
	if !s.Enabled() {
		return Session{}, ErrAdminDisabled
	}
	if !digest.Match(passphrase, s.cfg.PassphraseDigest) {
		s.log.WarnContext(ctx, "admin login rejected", reqctx.LogAttrs(ctx)...)
		return Session{}, ErrInvalidPassphrase
	}

	sid, err := codes.GenerateSessionToken()
	if err != nil {
		return Session{}, fmt.Errorf("generate session id: %w", err)
	}
	if err := s.sessions.Save(ctx, sid, s.cfg.SessionTTL); err != nil {
		return Session{}, err
	}

	now := s.now()
	sess := Session{Token: s.tokens.Issue(sid, now, s.cfg.SessionTTL)}
	if s.cfg.SessionTTL > 0 {
		sess.ExpiresAt = now.Add(s.cfg.SessionTTL).UTC()
	}
	s.log.InfoContext(ctx, "admin login", reqctx.LogAttrs(ctx)...)
	return sess, nil
}

// Authorize accepts a bearer token whose session has not been revoked.
func (s *Service) Authorize(ctx context.Context, token string) error {
	sid, ok := s.sessionID(token)
	if !ok {
		return ErrSessionNotFound
	}
	ok, err := s.sessions.Valid(ctx, sid)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// Logout revokes a token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	sid, ok := s.sessionID(token)
	if !ok {
		return nil
	}
	return s.sessions.Delete(ctx, sid)
}

func (s *Service) sessionID(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	claims, err := s.tokens.Verify(token, s.now())
	if err != nil {
		return "", false
	}
	return claims.SessionID, true
}

// Records lists the named stores, or every configured store when none are
// given.
func (s *Service) Records(ctx context.Context, stores ...string) ([]Listing, error) {
	names, err := resolveStores(stores, s.cfg.Stores)
	if err != nil {
		return nil, err
	}
	return collect(ctx, s.store, names), nil
}

func (s *Service) Delete(ctx context.Context, storeName, id string) error {
	if err := s.store.Delete(ctx, storeName, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "record deleted", append(reqctx.LogAttrs(ctx), "store", storeName, "id", id)...)
	return nil
}
