package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/internal/catalog/service"
	"github.com/aussiebroadwan/coursehub/pkg/httpx"
	"github.com/aussiebroadwan/coursehub/pkg/slogx"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal RequireAuthenticated or LoadPrincipal
// stored on the request.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// resolve looks up the caller's session. Storage errors are returned; a
// missing or invalid session is (zero, false, nil).
func resolve(r *http.Request, sessions *service.SessionService, cookies *SessionCookies) (domain.Principal, bool, error) {
	return sessions.Lookup(r.Context(), cookies.Token(r))
}

// RequireAuthenticated sends anonymous callers to the login page and puts
// the principal in the request context for everything downstream.
func RequireAuthenticated(sessions *service.SessionService, cookies *SessionCookies, views *Views) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok, err := resolve(r, sessions, cookies)
			if err != nil {
				slogx.FromContext(r.Context()).Error("session lookup failed", slog.Any("err", err))
				views.Error(w, r, http.StatusInternalServerError, msgInternal)
				return
			}
			if !ok {
				httpx.SeeOther(w, r, "/auth/login")
				return
			}

			ctx := withPrincipal(r.Context(), p)
			ctx = slogx.With(ctx, "user_id", p.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoadPrincipal attaches the principal when there is one and never blocks.
// Public pages use it to adapt their navigation.
func LoadPrincipal(sessions *service.SessionService, cookies *SessionCookies) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok, err := resolve(r, sessions, cookies); err == nil && ok {
				r = r.WithContext(withPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole must sit inside RequireAuthenticated. It compares the role
// cached on the session.
func RequireRole(role domain.Role, views *Views) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok || p.Role != role {
				views.Error(w, r, http.StatusForbidden, forbiddenMessage(role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireOwnership writes 403 and returns false unless the caller owns c.
// Handlers call it after loading the course themselves.
func requireOwnership(w http.ResponseWriter, r *http.Request, views *Views, c domain.Course) bool {
	p, _ := PrincipalFrom(r.Context())
	if err := service.RequireOwnership(c, p); err != nil {
		views.Error(w, r, http.StatusForbidden, msgForbidden)
		return false
	}
	return true
}

func forbiddenMessage(role domain.Role) string {
	switch role {
	case domain.RoleInstructor:
		return "Access Denied: Instructors only."
	case domain.RoleStudent:
		return "Access Denied: Students only."
	default:
		return msgForbidden
	}
}
