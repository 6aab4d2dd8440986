package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/coursehub/pkg/jwtx"
)

const SessionCookieName = "coursehub_session"

// SessionCookies carries the opaque session token inside a signed JWT so a
// tampered cookie is dropped before any database lookup.
type SessionCookies struct {
	Signer *jwtx.HS256
	Secure bool
}

func (c *SessionCookies) Set(w http.ResponseWriter, token string, expires time.Time) error {
	now := time.Now()
	signed, err := c.Signer.Sign(jwtx.NewSessionClaims(token, "", expires.Sub(now), now))
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(expires.Sub(now).Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Token returns the session token from r, or "" when the cookie is missing
// or fails verification.
func (c *SessionCookies) Token(r *http.Request) string {
	ck, err := r.Cookie(SessionCookieName)
	if err != nil || ck.Value == "" {
		return ""
	}
	claims, err := c.Signer.Verify(ck.Value)
	if err != nil {
		return ""
	}
	return claims.SID
}

func (c *SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
