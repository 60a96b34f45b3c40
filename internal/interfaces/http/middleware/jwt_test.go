package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmos/backend/internal/infrastructure/auth"
	"github.com/pharmos/backend/internal/infrastructure/config"
)

func newTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-middleware-tests",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "pharmos-test",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService) (string, uuid.UUID, uuid.UUID) {
	t.Helper()
	tenantID := uuid.New()
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID: tenantID,
		UserID:   userID,
		Email:    "cashier@pharmacy.test",
		Role:     "CASHIER",
	})
	require.NoError(t, err)
	return pair.AccessToken, tenantID, userID
}

func newProtectedRouter(svc *auth.JWTService) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuth(svc))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tenant_id": GetJWTTenantID(c),
			"user_id":   GetJWTUserID(c),
			"role":      GetJWTRole(c),
		})
	})
	return router
}

func TestJWTAuth(t *testing.T) {
	svc := newTestJWTService(t)

	t.Run("accepts a valid token and exposes claims", func(t *testing.T) {
		router := newProtectedRouter(svc)
		token, tenantID, userID := issueToken(t, svc)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), tenantID.String())
		assert.Contains(t, w.Body.String(), userID.String())
		assert.Contains(t, w.Body.String(), "CASHIER")
	})

	t.Run("rejects a missing authorization header", func(t *testing.T) {
		router := newProtectedRouter(svc)

		req := httptest.NewRequest("GET", "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a non-bearer header", func(t *testing.T) {
		router := newProtectedRouter(svc)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		router := newProtectedRouter(svc)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		expiredSvc := auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-for-middleware-tests",
			AccessTokenExpiration:  -time.Hour,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "pharmos-test",
		})
		token, _, _ := issueToken(t, expiredSvc)
		router := newProtectedRouter(expiredSvc)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_EXPIRED")
	})

	t.Run("skips configured paths", func(t *testing.T) {
		router := gin.New()
		router.Use(JWTAuth(svc))
		router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects a blacklisted token", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		router := gin.New()
		cfg := DefaultJWTConfig(svc)
		cfg.TokenBlacklist = blacklist
		router.Use(JWTAuthWithConfig(cfg))
		router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

		token, _, _ := issueToken(t, svc)
		claims, err := svc.ValidateAccessToken(token)
		require.NoError(t, err)
		require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Hour))

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "revoked")
	})
}

func TestRequireRole(t *testing.T) {
	svc := newTestJWTService(t)

	newRouter := func(roles ...string) *gin.Engine {
		router := gin.New()
		router.Use(JWTAuth(svc))
		router.GET("/admin", RequireRole(roles...), func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("allows a matching role", func(t *testing.T) {
		router := newRouter("CASHIER", "ADMIN")
		token, _, _ := issueToken(t, svc)

		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("forbids a non-matching role", func(t *testing.T) {
		router := newRouter("ADMIN")
		token, _, _ := issueToken(t, svc)

		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
