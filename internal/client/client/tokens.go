package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/easydrink/internal/client/repositories/metadata"
	"github.com/golang-jwt/jwt/v5"
)

// expirySkew renews tokens slightly before they actually expire.
const expirySkew = 30 * time.Second

// StoredSession is what a provider keeps between runs.
type StoredSession struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	Account      *Account `json:"account,omitempty"`
}

// TokenStore persists one provider's session in the metadata table under
// "session:<provider>".
type TokenStore struct {
	repo metadata.Repository
	key  string
}

func NewTokenStore(repo metadata.Repository, provider string) *TokenStore {
	return &TokenStore{repo: repo, key: "session:" + provider}
}

// Load returns nil when no session is stored.
func (s *TokenStore) Load(ctx context.Context) (*StoredSession, error) {
	raw, err := s.repo.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var sess StoredSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode stored session: %w", err)
	}
	return &sess, nil
}

func (s *TokenStore) Save(ctx context.Context, sess *StoredSession) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.repo.Set(ctx, s.key, raw)
}

func (s *TokenStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, s.key)
}

// TokenExpired reports whether a JWT's exp claim is at or before now+skew.
// The signature is not checked; the provider does that. Tokens that cannot be
// parsed are treated as expired.
func TokenExpired(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now.Add(expirySkew))
}
