package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. Stored as text and checked by the
// schema, but always parsed through ParseRole when read back.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// ParseRole maps raw text to a Role, rejecting anything outside the enum.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleInstructor:
		return RoleInstructor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("domain: unknown role %q", s)
	}
}

// SelfRegistrable reports whether the role may be chosen on the public
// registration form. Admin accounts only come from the seed file.
func (r Role) SelfRegistrable() bool {
	return r == RoleStudent || r == RoleInstructor
}

func (r Role) String() string { return string(r) }
