package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "jjc-attendance"
)

func TestIssueAndParse(t *testing.T) {
	id := Identity{ID: "u-1", Name: "Siti Aminah", Email: "siti@example.com", Role: RoleAdmin}
	tok, err := Issue(id, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	claims, err := Parse(tok.AccessToken, testKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Identity())
}

func TestParseRejects(t *testing.T) {
	id := Identity{ID: "u-1", Role: RoleUser}

	tok, err := Issue(id, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	_, err = Parse(tok.AccessToken, "other-key", testIssuer)
	assert.Error(t, err)
	_, err = Parse(tok.AccessToken, testKey, "someone-else")
	assert.Error(t, err)

	expired, err := Issue(id, testIssuer, testKey, -time.Minute)
	require.NoError(t, err)
	_, err = Parse(expired.AccessToken, testKey, testIssuer)
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleUser, ParseRole("user"))
	assert.Equal(t, RoleUser, ParseRole("superuser"))
	assert.Equal(t, RoleUser, ParseRole(""))
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := NewStore("session-secret", time.Hour, false)
	r.Use(Sessions(UserCookie, store), Resolve(testKey, testIssuer))
	r.POST("/login", func(c *gin.Context) {
		_ = SetLoginUser(c, Identity{ID: "u-session", Name: "Budi", Role: RoleUser})
		c.Status(http.StatusNoContent)
	})
	r.POST("/logout", func(c *gin.Context) {
		_ = ClearSession(c)
		c.Status(http.StatusNoContent)
	})
	r.GET("/me", RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, Current(c).ID)
	})
	r.GET("/admin", RequireAuth(), RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestMiddlewareUnauthenticated(t *testing.T) {
	r := newRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Harus login")
}

func TestMiddlewareSessionLogin(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-session", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMiddlewareBearer(t *testing.T) {
	r := newRouter()
	tok, err := Issue(Identity{ID: "u-admin", Role: RoleAdmin}, testIssuer, testKey, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
