package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coursehub/config"
	"coursehub/internal/api/handler"
	"coursehub/internal/api/middleware"
	"coursehub/pkg/jwt"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{BodyLimitMB: 1},
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret-key-for-unit-testing-2026",
			SessionTTL: time.Hour,
		},
		Media:     config.MediaConfig{Root: t.TempDir(), URLPrefix: "/media"},
		RateLimit: config.RateLimitConfig{AuthLimit: 5, AuthWindow: time.Minute},
	}
}

// 处理器只注册不调用，零值即可
func testEngine(t *testing.T) (*config.Config, *gin.Engine) {
	cfg := testConfig(t)
	h := &handler.Handler{
		Auth:     &handler.AuthHandler{},
		User:     &handler.UserHandler{},
		Course:   &handler.CourseHandler{},
		Comment:  &handler.CommentHandler{},
		Category: &handler.CategoryHandler{},
		Export:   &handler.ExportHandler{},
		Health:   handler.NewHealthHandler(nil, zap.NewNop()),
	}
	auth := middleware.NewAuthenticator(jwt.NewManager(&cfg.Auth), nil, nil)
	return cfg, Setup(cfg, h, auth, nil, zap.NewNop())
}

func TestSetup_RegistersCatalogRoutes(t *testing.T) {
	var engine *gin.Engine
	require.NotPanics(t, func() { _, engine = testEngine(t) })

	routes := map[string]bool{}
	for _, ri := range engine.Routes() {
		routes[ri.Method+" "+ri.Path] = true
	}

	for _, want := range []string{
		"GET /",
		"GET /:slug",
		"GET /add_course",
		"POST /add_course",
		"POST /add-rating",
		"GET /:slug/:id",
		"POST /:slug/:id",
		"GET /:slug/:id/edit",
		"POST /:slug/:id/edit",
		"GET /:slug/:id/delete",
		"POST /:slug/:id/delete",
		"GET /:slug/:id/comment/:comment_id/edit",
		"POST /:slug/:id/comment/:comment_id/delete",
		"GET /login/",
		"POST /login/",
		"POST /register/",
		"GET /profile/",
		"POST /profile/",
		"GET /logout/",
		"POST /logout/",
		"GET /health",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

// 每个固定路由的首段都必须登记为保留 slug，否则同名课程或标签的地址会被遮蔽
func TestReservedSlugs_CoverStaticRoutes(t *testing.T) {
	cfg, engine := testEngine(t)
	reserved := ReservedSlugs(cfg)

	for _, ri := range engine.Routes() {
		first := strings.SplitN(strings.TrimPrefix(ri.Path, "/"), "/", 2)[0]
		if first == "" || strings.HasPrefix(first, ":") {
			continue
		}
		assert.True(t, reserved[first], "route %s %s: segment %q not reserved", ri.Method, ri.Path, first)
	}

	for _, seg := range []string{"media", "health", "categories", "add_course"} {
		assert.True(t, reserved[seg], "segment %q should be reserved", seg)
	}
	assert.False(t, reserved["hello-world"])
}

func TestReservedSlugs_CustomMediaPrefix(t *testing.T) {
	cfg := testConfig(t)
	cfg.Media.URLPrefix = "/uploads/"

	reserved := ReservedSlugs(cfg)
	assert.True(t, reserved["uploads"])
	assert.False(t, reserved["media"])
}

func TestSetup_LogoutAllowsAnonymous(t *testing.T) {
	_, engine := testEngine(t)

	for _, method := range []string{"GET", "POST"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(method, "/logout/", nil))
		assert.Equal(t, http.StatusOK, w.Code, method)
		assert.Contains(t, w.Body.String(), `"redirect_to":"/"`, method)
	}

	// 过期或伪造的 Token 同样允许登出
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/logout/", nil)
	req.Header.Set("Authorization", "Bearer expired.or.forged")
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetup_Health(t *testing.T) {
	_, engine := testEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSetup_ProtectedRoutesRequireLogin(t *testing.T) {
	_, engine := testEngine(t)

	for _, tc := range []struct{ method, path string }{
		{"POST", "/add_course"},
		{"POST", "/add-rating"},
		{"GET", "/profile/"},
		{"POST", "/hello-world/1"},
		{"POST", "/hello-world/1/delete"},
		{"GET", "/admin/users"},
		{"GET", "/export/courses.xlsx"},
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestSetup_StaffOnlyRoutes(t *testing.T) {
	cfg, engine := testEngine(t)
	token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(3, "bob", jwt.RoleUser)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
