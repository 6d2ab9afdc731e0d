package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTer(ttl time.Duration) *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "staffhub-test", TTL: ttl}
}

func TestIssueAndParse(t *testing.T) {
	j := newTestJWTer(24 * time.Hour)

	tok, err := j.Issue("admin-1")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "staffhub-test", claims.Issuer)
}

func TestParse_WrongSecret(t *testing.T) {
	j := newTestJWTer(time.Hour)
	tok, err := j.Issue("admin-1")
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("another-secret"), Issuer: "staffhub-test", TTL: time.Hour}
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParse_WrongIssuer(t *testing.T) {
	j := newTestJWTer(time.Hour)
	tok, err := j.Issue("admin-1")
	require.NoError(t, err)

	other := newTestJWTer(time.Hour)
	other.Issuer = "someone-else"
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	// Parse 留了 60s leeway，过期时间要压得更早
	j := newTestJWTer(-2 * time.Minute)
	tok, err := j.Issue("admin-1")
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.Error(t, err)
}

func TestParse_Garbage(t *testing.T) {
	j := newTestJWTer(time.Hour)
	_, err := j.Parse("not.a.jwt")
	assert.Error(t, err)
}
