package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"chronicle/internal/cache"
	"chronicle/internal/config"
	"chronicle/internal/middleware"
	"chronicle/internal/repository"
	"chronicle/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer wires a Server against sqlmock with caching off, so every
// request reaches the repository expectations.
func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock, *fiber.App) {
	t.Helper()
	gormDB, mock := setupMockDB(t)

	cfg := &config.Config{
		Port:         "0",
		JWTSecret:    "test-secret",
		CacheBackend: "off",
		Env:          "test",
	}
	middleware.InitMiddleware(cfg)

	s := &Server{
		config:       cfg,
		db:           gormDB,
		store:        cache.Nop{},
		userRepo:     repository.NewUserRepository(gormDB),
		postRepo:     repository.NewPostRepository(gormDB),
		commentRepo:  repository.NewCommentRepository(gormDB),
		categoryRepo: repository.NewCategoryRepository(gormDB),
		tagRepo:      repository.NewTagRepository(gormDB),
	}
	s.postService = service.NewPostService(
		s.postRepo, s.categoryRepo, s.tagRepo, s.store, s.isAdminByUserID)
	s.commentService = service.NewCommentService(
		s.commentRepo, s.postRepo, s.store, s.isAdminByUserID)
	s.categoryService = service.NewCategoryService(
		s.categoryRepo, s.store, s.isAdminByUserID)
	s.tagService = service.NewTagService(s.tagRepo, s.isAdminByUserID)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, mock, app
}

func TestRoutes_InvalidPostID(t *testing.T) {
	_, _, app := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoutes_ListPosts_Empty(t *testing.T) {
	_, mock, app := newTestServer(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT posts.*`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body []json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutes_GetCommentIsPublic(t *testing.T) {
	_, _, app := newTestServer(t)

	// No auth header; the id is rejected by parsing, not by the middleware.
	req := httptest.NewRequest(http.MethodGet, "/api/comments/abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoutes_WriteEndpointsRequireAuth(t *testing.T) {
	_, _, app := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/posts"},
		{http.MethodPut, "/api/posts/1"},
		{http.MethodDelete, "/api/posts/1"},
		{http.MethodPost, "/api/posts/1/like"},
		{http.MethodPut, "/api/posts/1/featured"},
		{http.MethodPost, "/api/posts/1/comments"},
		{http.MethodDelete, "/api/comments/1"},
		{http.MethodPost, "/api/categories"},
		{http.MethodPost, "/api/tags"},
		{http.MethodDelete, "/api/tags/1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestRoutes_SearchWithoutQuery(t *testing.T) {
	_, _, app := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/search", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLivenessCheck(t *testing.T) {
	_, _, app := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadinessCheck(t *testing.T) {
	_, _, app := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
		Checks struct {
			Database string `json:"database"`
			Redis    string `json:"redis"`
		} `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks.Database)
	assert.Equal(t, "disabled", body.Checks.Redis, "no redis client means the check reports disabled, not failing")
}

func TestNewStore(t *testing.T) {
	t.Run("off", func(t *testing.T) {
		store := newStore(&config.Config{CacheBackend: "off"}, nil)
		assert.IsType(t, cache.Nop{}, store)
	})

	t.Run("memory", func(t *testing.T) {
		store := newStore(&config.Config{CacheBackend: "memory"}, nil)
		mem, ok := store.(*cache.Memory)
		require.True(t, ok)
		mem.Close()
	})

	t.Run("redis without client falls back to memory", func(t *testing.T) {
		store := newStore(&config.Config{CacheBackend: "redis"}, nil)
		mem, ok := store.(*cache.Memory)
		require.True(t, ok)
		mem.Close()
	})
}
