package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/blog_go_server/internal/api/middleware"
	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/model/dto"
	"github.com/qs3c/blog_go_server/internal/pkg/cache"
	"github.com/qs3c/blog_go_server/internal/repository"
	"github.com/qs3c/blog_go_server/internal/service"
	"github.com/qs3c/blog_go_server/internal/testutil"
)

func setupPostHandler(t *testing.T) (*PostHandler, *testContext, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	handler := NewPostHandler(service.NewPostService(
		repository.NewPostRepository(db),
		repository.NewCommentRepository(db),
		cache.NewThreadCache(nil, 0),
	))

	return handler, &testContext{DB: db}, func() {
		testutil.CleanupTestDB(t, db)
	}
}

func postRouter(h *PostHandler, actor *model.Actor) *gin.Engine {
	router := gin.New()
	router.Use(mockAuth(actor))
	router.GET("/api/posts", h.List)
	router.GET("/api/posts/:id", h.Get)
	router.POST("/api/posts", middleware.RequireAdmin(), h.Create)
	router.DELETE("/api/posts/:id", middleware.RequireAdmin(), h.Delete)
	return router
}

func TestPostHandler_List(t *testing.T) {
	handler, ctx, cleanup := setupPostHandler(t)
	defer cleanup()

	testutil.TestPost(t, ctx.DB)
	testutil.TestPost(t, ctx.DB)
	testutil.TestPost(t, ctx.DB, testutil.WithPublished(false))

	w := doJSON(t, postRouter(handler, nil), http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Total int64           `json:"total"`
		Items []*dto.PostItem `json:"items"`
	}
	decode(t, w, &page)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 2)
}

func TestPostHandler_Get(t *testing.T) {
	handler, ctx, cleanup := setupPostHandler(t)
	defer cleanup()

	post := testutil.TestPost(t, ctx.DB)
	draft := testutil.TestPost(t, ctx.DB, testutil.WithPublished(false))
	router := postRouter(handler, nil)

	for _, key := range []string{post.ID, post.Slug} {
		w := doJSON(t, router, http.MethodGet, "/api/posts/"+key, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var detail dto.PostDetail
		decode(t, w, &detail)
		assert.Equal(t, post.ID, detail.ID)
		assert.Equal(t, post.Content, detail.Content)
	}

	w := doJSON(t, router, http.MethodGet, "/api/posts/"+draft.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/posts/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	admin := testutil.TestUser(t, ctx.DB, testutil.WithRole(model.RoleAdmin))
	w = doJSON(t, postRouter(handler, actorFor(admin)), http.MethodGet, "/api/posts/"+draft.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPostHandler_Delete(t *testing.T) {
	handler, ctx, cleanup := setupPostHandler(t)
	defer cleanup()

	admin := testutil.TestUser(t, ctx.DB, testutil.WithRole(model.RoleAdmin))
	user := testutil.TestUser(t, ctx.DB)
	post := testutil.TestPost(t, ctx.DB)

	w := doJSON(t, postRouter(handler, actorFor(user)), http.MethodDelete, "/api/posts/"+post.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, postRouter(handler, actorFor(admin)), http.MethodDelete, "/api/posts/"+post.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, postRouter(handler, actorFor(admin)), http.MethodDelete, "/api/posts/"+post.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostHandler_Create(t *testing.T) {
	handler, ctx, cleanup := setupPostHandler(t)
	defer cleanup()

	admin := testutil.TestUser(t, ctx.DB, testutil.WithRole(model.RoleAdmin))
	router := postRouter(handler, actorFor(admin))

	w := doJSON(t, router, http.MethodPost, "/api/posts", map[string]interface{}{
		"title":     "Hello World",
		"content":   "first",
		"published": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var detail dto.PostDetail
	decode(t, w, &detail)
	assert.Equal(t, "hello-world", detail.Slug)
	require.NotNil(t, detail.AuthorID)
	assert.Equal(t, admin.ID, *detail.AuthorID)

	w = doJSON(t, router, http.MethodPost, "/api/posts", map[string]interface{}{
		"title": "Hello again",
		"slug":  "hello-world",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/posts", map[string]interface{}{"content": "no title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostHandler_Create_RequiresAdmin(t *testing.T) {
	handler, ctx, cleanup := setupPostHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, ctx.DB)

	w := doJSON(t, postRouter(handler, actorFor(user)), http.MethodPost, "/api/posts",
		map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, postRouter(handler, nil), http.MethodPost, "/api/posts",
		map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
