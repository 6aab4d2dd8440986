package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           int64
	Name         string
	Email        string // normalized, see NormalizeEmail
	PasswordHash string // argon2id PHC string, or bcrypt for imported accounts
	Role         Role
	CreatedAt    time.Time
}

// NormalizeEmail trims and lower-cases an address. Registration and lookup
// both go through it so uniqueness is effectively case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
