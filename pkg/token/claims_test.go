package token

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mintToken builds an unsigned bearer token with the given payload claims.
// The signature segment is garbage: claim decoding never verifies it.
func mintToken(t *testing.T, payload map[string]interface{}) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	require.NoError(t, err)
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	return base64.RawURLEncoding.EncodeToString(header) + "." +
		base64.RawURLEncoding.EncodeToString(body) + "." +
		base64.RawURLEncoding.EncodeToString([]byte("sig"))
}

func TestDecodeClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	raw := mintToken(t, map[string]interface{}{
		"sub":      "u-1",
		"email":    "ada@example.com",
		"fullName": "Ada Lovelace",
		"role":     "admin",
		"exp":      exp,
	})

	claims, err := decodeClaims(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "Ada Lovelace", claims.FullName)
	assert.Equal(t, "admin", claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, exp, claims.ExpiresAt.Unix())
}

func TestDecodeClaims_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"one segment", "abc"},
		{"two segments", "abc.def"},
		{"non-base64 middle", "abc.!!!.ghi"},
		{"non-JSON middle", "abc." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".ghi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeClaims(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestClaimsPrincipal(t *testing.T) {
	claims := &Claims{
		Email:    "ada@example.com",
		FullName: "Ada Lovelace",
		Role:     "manager",
	}
	claims.Subject = "u-1"

	p := claims.principal()
	require.NotNil(t, p)
	assert.Equal(t, "u-1", p.ID)
	assert.Equal(t, "ada@example.com", p.Email)
	assert.Equal(t, "Ada Lovelace", p.DisplayName)
	assert.Equal(t, "manager", p.Role.Name)
	assert.Equal(t, "Manager", p.Role.Label)
}

func TestClaimsPrincipal_RequiresRole(t *testing.T) {
	claims := &Claims{Email: "ada@example.com"}
	claims.Subject = "u-1"

	assert.Nil(t, claims.principal())
	assert.Nil(t, (*Claims)(nil).principal())
}
