package token

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/lodgekeep/concierge/pkg/access"
)

// Claims are the fields read from an access token's payload segment. Only
// exp is required; the identity fields are best-effort.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Role     string `json:"role,omitempty"`
}

// decodeClaims parses the token's middle segment without verifying the
// signature. Signature verification is the backend's job; the client only
// needs the claims to predict expiry and pre-fill the principal.
func decodeClaims(raw string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// principal builds an access.Principal from the claims, or nil when the
// claims carry no role (a principal without a role is invalid).
func (c *Claims) principal() *access.Principal {
	if c == nil || c.Role == "" {
		return nil
	}
	return &access.Principal{
		ID:          c.Subject,
		DisplayName: c.FullName,
		Email:       c.Email,
		Role: access.Role{
			Name:  c.Role,
			Label: access.DisplayNameForRole(c.Role),
		},
	}
}
