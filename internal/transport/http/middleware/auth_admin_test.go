package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffhub/internal/core/auth"
	"staffhub/internal/domain"
	"staffhub/internal/repo"
)

func newAuthTestEngine(t *testing.T) (*gin.Engine, *auth.JWTer, *repo.MemoryAdminRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "staffhub-test", TTL: time.Hour}
	admins := repo.NewMemoryAdminRepo()

	r := gin.New()
	r.GET("/p", AuthAdmin(jwter, admins), func(c *gin.Context) {
		a, ok := AdminFrom(c)
		require.True(t, ok)
		c.String(http.StatusOK, a.Email)
	})
	return r, jwter, admins
}

func doGet(r *gin.Engine, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAdmin_MissingOrMalformedHeader(t *testing.T) {
	r, _, _ := newAuthTestEngine(t)

	for _, authz := range []string{"", "Basic abc", "Bearer"} {
		w := doGet(r, authz)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "authz=%q", authz)
	}
}

func TestAuthAdmin_GarbageToken(t *testing.T) {
	r, _, _ := newAuthTestEngine(t)

	w := doGet(r, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAdmin_AdminGone(t *testing.T) {
	r, jwter, _ := newAuthTestEngine(t)

	// 合法令牌，但库里没有这个管理员
	tok, err := jwter.Issue("ghost-admin")
	require.NoError(t, err)
	w := doGet(r, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAdmin_ValidToken(t *testing.T) {
	r, jwter, admins := newAuthTestEngine(t)

	a := &domain.Admin{ID: "a1", Name: "Alice", Email: "alice@x.com"}
	require.NoError(t, admins.Create(context.Background(), a))
	tok, err := jwter.Issue(a.ID)
	require.NoError(t, err)

	w := doGet(r, "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice@x.com", w.Body.String())
}
