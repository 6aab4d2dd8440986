package service

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/pkg/cryptox"
	"github.com/aussiebroadwan/coursehub/pkg/slogx"
)

const MinPasswordLength = 6

// Form messages, shown next to the offending field.
const (
	MsgNameRequired   = "Name is required"
	MsgEmailInvalid   = "Please include a valid email"
	MsgPasswordShort  = "Password must be 6 or more characters"
	MsgRoleInvalid    = "A valid role must be selected"
	MsgTitleRequired  = "Title is required"
	MsgDescRequired   = "Description is required"
	MsgUserExists     = "User already exists"
	MsgBadCredentials = "Invalid credentials"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type AuthService struct {
	Credentials *CredentialService
	Sessions    *SessionService

	dummyOnce sync.Once
	dummyHash string
}

// Register validates in and creates the account. It does not log the user
// in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	role, err := validateRegistration(in)
	if err != nil {
		return domain.User{}, err
	}

	// The unique index is the real guard; this only avoids a wasted hash.
	if _, ok, err := s.Credentials.FindByEmail(ctx, in.Email); err != nil {
		return domain.User{}, err
	} else if ok {
		return domain.User{}, domain.ErrConflict
	}

	return s.Credentials.Create(ctx, in.Name, in.Email, in.Password, role)
}

func validateRegistration(in RegisterInput) (domain.Role, error) {
	fields := map[string]string{}

	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = MsgNameRequired
	}
	if !validEmail(in.Email) {
		fields["email"] = MsgEmailInvalid
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		fields["password"] = MsgPasswordShort
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil || !role.SelfRegistrable() {
		fields["role"] = MsgRoleInvalid
	}

	return role, domain.Validation(fields)
}

// validEmail accepts a bare addr-spec with a dotted domain.
func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// Login checks the credentials and opens a session. Every failure is the
// same domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, domain.Principal, error) {
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(email) == "" || password == "" {
		return "", time.Time{}, domain.Principal{}, domain.ErrInvalidCredentials
	}

	u, ok, err := s.Credentials.FindByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, domain.Principal{}, err
	}
	if !ok {
		// Spend one hash so unknown emails cost the same as wrong passwords.
		s.Credentials.VerifyPassword(password, s.dummy(ctx))
		log.Info("login failed", slog.String("reason", "unknown_email"))
		return "", time.Time{}, domain.Principal{}, domain.ErrInvalidCredentials
	}
	if !s.Credentials.VerifyPassword(password, u.PasswordHash) {
		log.Info("login failed", slog.String("reason", "bad_password"), slog.Int64("user_id", u.ID))
		return "", time.Time{}, domain.Principal{}, domain.ErrInvalidCredentials
	}

	token, expires, err := s.Sessions.Establish(ctx, u.ID, u.Role)
	if err != nil {
		return "", time.Time{}, domain.Principal{}, err
	}

	log.Info("login succeeded", slog.Int64("user_id", u.ID), slog.String("role", u.Role.String()))
	return token, expires, domain.Principal{UserID: u.ID, Role: u.Role}, nil
}

// Logout destroys the session behind token. A missing session is fine.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.Sessions.Destroy(ctx, token)
}

// fallbackDummyHash is a well-formed Argon2id hash with the current
// parameters. It matches no password.
const fallbackDummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAECAwQFBgcICQoLDA0ODw$ZGVmZ2hpamtsbW5vcHFyc3R1dnd4eXp7fH1+f4CBgoM"

var hashDummyPassword = cryptox.HashPassword

func (s *AuthService) dummy(ctx context.Context) string {
	s.dummyOnce.Do(func() {
		h, err := hashDummyPassword("coursehub-timing-equalizer")
		if err != nil {
			slogx.FromContext(ctx).Error("failed to hash dummy password, using fallback", slog.Any("error", err))
			h = fallbackDummyHash
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
