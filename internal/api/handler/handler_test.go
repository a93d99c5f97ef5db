package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/api/middleware"
	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testContext struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// mockAuth injects the given actor the same way middleware.Auth does.
func mockAuth(actor *model.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor != nil {
			c.Set(middleware.ActorKey, actor)
		}
		c.Next()
	}
}

func actorFor(user *model.User) *model.Actor {
	actor := &model.Actor{
		UserID:   user.ID,
		Role:     user.Role,
		FullName: user.FullName,
	}
	if user.Email != nil {
		actor.Email = *user.Email
	}
	return actor
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		reader = bytes.NewReader([]byte(raw))
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func parseError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}
