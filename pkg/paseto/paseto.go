// Package pasetotoken issues and verifies v4.local bearer tokens that carry
// an admin session id.
package pasetotoken

import (
	"time"

	paseto "aidanwoods.dev/go-paseto"
)

type Config struct {
	Issuer   string
	Audience string
	Implicit []byte
}

// Claims is what a verified token asserts.
type Claims struct {
	SessionID string
	IssuedAt  time.Time
	// ExpiresAt is zero for tokens issued without a TTL.
	ExpiresAt time.Time
}

type Manager struct {
	cfg   Config
	key   paseto.V4SymmetricKey
	parse paseto.Parser
}

func New(cfg Config, key paseto.V4SymmetricKey) (*Manager, error) {
	if cfg.Issuer == "" {
		return nil, ErrConfig{Msg: "Issuer is required"}
	}
	if cfg.Audience == "" {
		return nil, ErrConfig{Msg: "Audience is required"}
	}

	// Expiry is optional, so it is checked in Verify instead of by a rule.
	p := paseto.NewParserWithoutExpiryCheck()
	p.AddRule(paseto.IssuedBy(cfg.Issuer))
	p.AddRule(paseto.ForAudience(cfg.Audience))

	return &Manager{cfg: cfg, key: key, parse: p}, nil
}

// Issue returns a token for sessionID. A ttl <= 0 omits the expiration.
func (m *Manager) Issue(sessionID string, now time.Time, ttl time.Duration) string {
	tok := paseto.NewToken()
	tok.SetIssuer(m.cfg.Issuer)
	tok.SetAudience(m.cfg.Audience)
	tok.SetJti(sessionID)
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	if ttl > 0 {
		tok.SetExpiration(now.Add(ttl))
	}
	return tok.V4Encrypt(m.key, m.cfg.Implicit)
}

// Verify decrypts tokenStr and checks it is still valid at now.
func (m *Manager) Verify(tokenStr string, now time.Time) (*Claims, error) {
	tok, err := m.parse.ParseV4Local(m.key, tokenStr, m.cfg.Implicit)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}

	sid, err := tok.GetJti()
	if err != nil || sid == "" {
		return nil, ErrInvalidToken{Err: ErrConfig{Msg: "missing jti"}}
	}
	iat, err := tok.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}

	out := &Claims{SessionID: sid, IssuedAt: iat}
	if exp, err := tok.GetExpiration(); err == nil {
		if !now.Before(exp) {
			return nil, ErrInvalidToken{Err: ErrExpired}
		}
		out.ExpiresAt = exp
	}
	return out, nil
}
