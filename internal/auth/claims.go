package auth

import (
	"fmt"
	"time"
)

// AccessClaims is the decrypted payload of a brainly access token.
// The subject is the user id; the username rides along so request logs and
// handlers can name the caller without a store lookup.
type AccessClaims struct {
	Username string `json:"username"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// UserID returns the id of the user the token was issued to.
func (c *AccessClaims) UserID() string {
	return c.Subject
}

// check validates identity and the validity window at now.
func (c *AccessClaims) check(now time.Time) error {
	if c.Subject == "" {
		return fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if c.Username == "" {
		return fmt.Errorf("%w: missing username", ErrInvalidToken)
	}
	if !c.NotBefore.IsZero() && now.Before(c.NotBefore) {
		return fmt.Errorf("%w: not yet valid", ErrInvalidToken)
	}
	if !now.Before(c.Expiration) {
		return ErrTokenExpired
	}
	return nil
}
