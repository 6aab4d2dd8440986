package domain

import "time"

// Session is the persisted half of a login. Only the fingerprint of the
// opaque token is stored; the token itself lives in the client cookie.
type Session struct {
	TokenHash string
	UserID    int64
	Role      Role // cached at login, not re-read per request
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID int64
	Role   Role
}
