package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/internal/catalog/store"
	"github.com/aussiebroadwan/coursehub/pkg/cryptox"
)

const DefaultSessionTTL = 24 * time.Hour

// SessionService maps opaque tokens to principals. Only the token
// fingerprint is persisted, so sessions survive restarts without the
// database ever holding a usable token.
type SessionService struct {
	Store store.Store
	TTL   time.Duration

	// Now is swapped in tests.
	Now func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}

// Establish mints a fresh token for the principal. A token the client
// already holds is never reused.
func (s *SessionService) Establish(ctx context.Context, userID int64, role domain.Role) (string, time.Time, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize)
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.now()
	sess := domain.Session{
		TokenHash: cryptox.FingerprintToken(token),
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl()),
	}
	if err := s.Store.Sessions().CreateSession(ctx, sess); err != nil {
		return "", time.Time{}, fmt.Errorf("create session: %w", err)
	}
	return token, sess.ExpiresAt, nil
}

// Lookup resolves token. Missing, unknown and expired tokens are all
// (zero, false, nil); expired rows stay until housekeeping removes them.
func (s *SessionService) Lookup(ctx context.Context, token string) (domain.Principal, bool, error) {
	if token == "" {
		return domain.Principal{}, false, nil
	}

	sess, err := s.Store.Sessions().GetSessionByHash(ctx, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return domain.Principal{}, false, nil
	}
	if err != nil {
		return domain.Principal{}, false, fmt.Errorf("lookup session: %w", err)
	}
	if sess.Expired(s.now()) {
		return domain.Principal{}, false, nil
	}
	return domain.Principal{UserID: sess.UserID, Role: sess.Role}, true, nil
}

// Destroy is idempotent.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.Store.Sessions().DeleteSession(ctx, cryptox.FingerprintToken(token)); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
