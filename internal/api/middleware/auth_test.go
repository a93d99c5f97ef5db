package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/blog_go_server/config"
	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/pkg/jwt"
	"github.com/qs3c/blog_go_server/internal/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testAuthConfig = config.AuthConfig{
	JWTSecret:  "test-secret-key-for-middleware",
	CookieName: "session",
}

func parseError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func issueToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.GenerateToken(claims, testAuthConfig.JWTSecret, 24)
	require.NoError(t, err)
	return token
}

func newAuthRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(handlers...)
	router.GET("/test", func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"user_id": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "name": actor.DisplayName()})
	})
	return router
}

func TestAuth_BearerToken(t *testing.T) {
	router := newAuthRouter(Auth(testAuthConfig))
	token := issueToken(t, jwt.Claims{
		UserID:       "u-123",
		Email:        "ada@example.com",
		UserMetadata: jwt.UserMetadata{FullName: "Ada"},
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"u-123","name":"Ada"}`, w.Body.String())
}

func TestAuth_SessionCookie(t *testing.T) {
	router := newAuthRouter(Auth(testAuthConfig))
	token := issueToken(t, jwt.Claims{UserID: "u-cookie", Email: "cookie@example.com"})

	req := httptest.NewRequest("GET", "/test", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"u-cookie","name":"cookie"}`, w.Body.String())
}

func TestAuth_Missing(t *testing.T) {
	router := newAuthRouter(Auth(testAuthConfig))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.CodeAuthFailed, parseError(t, w).Code)
}

func TestAuth_Invalid(t *testing.T) {
	router := newAuthRouter(Auth(testAuthConfig))
	otherSecret, err := jwt.GenerateToken(jwt.Claims{UserID: "u"}, "another-secret", 24)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"garbage", "Bearer not-a-token"},
		{"wrong secret", "Bearer " + otherSecret},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	router := newAuthRouter(OptionalAuth(testAuthConfig))
	token := issueToken(t, jwt.Claims{UserID: "u-opt"})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)

	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)

	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"user_id":"u-opt"`)
}

func TestRequireAdmin(t *testing.T) {
	router := newAuthRouter(Auth(testAuthConfig), RequireAdmin())

	userToken := issueToken(t, jwt.Claims{UserID: "u", Role: model.RoleUser})
	adminToken := issueToken(t, jwt.Claims{UserID: "a", Role: model.RoleAdmin})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.CodePermissionDenied, parseError(t, w).Code)

	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_WithoutAuth(t *testing.T) {
	router := newAuthRouter(RequireAdmin())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
