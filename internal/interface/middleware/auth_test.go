package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/taskflow/taskflow-api/pkg/helpers"
)

func newAuthTestRouter(t *testing.T, jwt *helpers.JWTManager) (*gin.Engine, *bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// Points at a closed port; any path that actually touches Redis fails
	// and must be rejected, never let through.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})

	reached := false
	r := gin.New()
	r.GET("/protected", Auth(rdb, jwt), func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})
	return r, &reached
}

func TestAuthMissingCookie(t *testing.T) {
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, time.Hour)
	r, reached := newAuthTestRouter(t, jwt)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	assert.False(t, *reached, "the handler must not run without a token")
}

func TestAuthGarbageToken(t *testing.T) {
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, time.Hour)
	r, reached := newAuthTestRouter(t, jwt)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "not.a.jwt"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *reached)
}

func TestAuthExpiredToken(t *testing.T) {
	expired := helpers.NewJWTManager("access-secret", "refresh-secret", -time.Minute, time.Hour)
	token, _, err := expired.GenerateAccessToken("user-1", "session-1")
	assert.NoError(t, err)

	r, reached := newAuthTestRouter(t, expired)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *reached)
}

func TestAuthForgedToken(t *testing.T) {
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, time.Hour)
	other := helpers.NewJWTManager("other-secret", "other-refresh", time.Hour, time.Hour)
	token, _, err := other.GenerateAccessToken("user-1", "session-1")
	assert.NoError(t, err)

	r, reached := newAuthTestRouter(t, jwt)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *reached)
}

func TestAuthSessionLookupFailureRejects(t *testing.T) {
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, time.Hour)
	token, _, err := jwt.GenerateAccessToken("user-1", "session-1")
	assert.NoError(t, err)

	r, reached := newAuthTestRouter(t, jwt)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *reached, "an unverifiable session must not pass")
}
