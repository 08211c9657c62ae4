package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

func (k Kind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

// Identity is what gets embedded in a token. Subject must be the field the
// auth service looks users up by on refresh (the username).
type Identity struct {
	Subject string
	UserID  string
	Role    string
}

type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	Kind   Kind   `json:"kind"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{Subject: c.Subject, UserID: c.UserID, Role: c.Role}
}

func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Validate is called by the jwt parser after the signature check.
func (c *Claims) Validate() error {
	if c.Subject == "" || c.UserID == "" || c.ID == "" {
		return ErrMalformed
	}
	if !c.Kind.Valid() {
		return ErrMalformed
	}
	return nil
}
