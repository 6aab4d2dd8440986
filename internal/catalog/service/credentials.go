package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/internal/catalog/store"
	"github.com/aussiebroadwan/coursehub/pkg/cryptox"
	"github.com/aussiebroadwan/coursehub/pkg/slogx"
)

// CredentialService owns user identities and their password hashes. Hashes
// are produced and checked here and nowhere else.
type CredentialService struct {
	Store store.Store
}

// Create registers a self-service account. Only student and instructor may
// be chosen; duplicates surface as domain.ErrConflict.
func (s *CredentialService) Create(ctx context.Context, name, email, password string, role domain.Role) (domain.User, error) {
	if !role.SelfRegistrable() {
		return domain.User{}, domain.Validation(map[string]string{"role": MsgRoleInvalid})
	}
	return s.create(ctx, name, email, password, role)
}

// CreateSeeded is Create without the self-registration role restriction.
// Only the seed loader calls it.
func (s *CredentialService) CreateSeeded(ctx context.Context, name, email, password string, role domain.Role) (domain.User, error) {
	return s.create(ctx, name, email, password, role)
}

func (s *CredentialService) create(ctx context.Context, name, email, password string, role domain.Role) (domain.User, error) {
	log := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.Store.Users().CreateUser(ctx, domain.User{
		Name:         strings.TrimSpace(name),
		Email:        domain.NormalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, domain.ErrConflict
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	log.Info("user created", slog.Int64("user_id", u.ID), slog.String("role", u.Role.String()))
	return u, nil
}

// FindByEmail looks up by normalized email. A missing user is (zero, false, nil).
func (s *CredentialService) FindByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	return found(s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email)))
}

func (s *CredentialService) FindByID(ctx context.Context, id int64) (domain.User, bool, error) {
	return found(s.Store.Users().GetUserByID(ctx, id))
}

// VerifyPassword reports whether plaintext matches storedHash. Malformed
// hashes never match.
func (s *CredentialService) VerifyPassword(plaintext, storedHash string) bool {
	return cryptox.VerifyPassword(plaintext, storedHash) == nil
}

func found(u domain.User, err error) (domain.User, bool, error) {
	switch {
	case err == nil:
		return u, true, nil
	case errors.Is(err, store.ErrNotFound):
		return domain.User{}, false, nil
	default:
		return domain.User{}, false, fmt.Errorf("find user: %w", err)
	}
}
