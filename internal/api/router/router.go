package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coursehub/config"
	"coursehub/internal/api/handler"
	"coursehub/internal/api/middleware"
	"coursehub/pkg/jwt"
	"coursehub/pkg/slug"
)

// staticSegments 固定路由的首段，课程 /:slug/:id 与标签 /:slug 不能占用
// 新增顶层路由时须同步登记
var staticSegments = []string{
	"health",
	"login",
	"register",
	"logout",
	"profile",
	"categories",
	"feed",
	"export",
	"admin",
	"add_course",
	"add-rating",
}

// ReservedSlugs 课程与标签 slug 需避开的首段，含上传文件前缀
func ReservedSlugs(cfg *config.Config) slug.Reserved {
	return slug.NewReserved(append([]string{mediaPrefix(cfg)}, staticSegments...)...)
}

func mediaPrefix(cfg *config.Config) string {
	return "/" + strings.Trim(cfg.Media.URLPrefix, "/")
}

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时登录/注册不限流
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	auth *middleware.Authenticator,
	limiter middleware.Limiter,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	media := mediaPrefix(cfg)

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders(media))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitMB << 20))

	requireLogin := auth.JWTAuth()
	optionalLogin := auth.OptionalAuth()
	staffOnly := middleware.RoleAuth(jwt.RoleStaff)
	authLimit := middleware.RateLimit(limiter, cfg.RateLimit.AuthLimit, cfg.RateLimit.AuthWindow, logger)

	// ── 健康检查 / 上传文件 ──
	r.GET("/health", h.Health.Check)
	r.Static(media, cfg.Media.Root)

	// ── 认证 ──
	r.GET("/login/", h.Auth.LoginForm)
	r.POST("/login/", authLimit, h.Auth.Login)
	r.GET("/register/", h.Auth.RegisterForm)
	r.POST("/register/", authLimit, h.Auth.Register)
	// 未登录或会话已失效时同样清理并跳转首页
	r.GET("/logout/", optionalLogin, h.Auth.Logout)
	r.POST("/logout/", optionalLogin, h.Auth.Logout)

	// ── 个人主页 ──
	profile := r.Group("/profile", requireLogin)
	{
		profile.GET("/", h.User.GetProfile)
		profile.POST("/", h.User.UpdateProfile)
		profile.GET("/info", h.User.GetInfo)
		profile.POST("/info", h.User.UpsertInfo)
	}

	// ── 分类 / 导出 ──
	r.GET("/categories", h.Category.List)
	r.GET("/feed/courses.ics", h.Export.CourseFeed)
	r.GET("/export/courses.xlsx", requireLogin, staffOnly, h.Export.ExportCourses)

	// ── 管理（工作人员） ──
	admin := r.Group("/admin", requireLogin, staffOnly)
	{
		admin.GET("/users", h.User.ListUsers)
		admin.PUT("/users/:id", h.User.AdminUpdate)
		admin.DELETE("/users/:id", h.User.DeleteUser)

		admin.POST("/categories", h.Category.Create)
		admin.PUT("/categories/:id", h.Category.Update)
		admin.DELETE("/categories/:id", h.Category.Delete)
	}

	// ── 课程 ──
	r.GET("/", optionalLogin, h.Course.Index)
	r.GET("/add_course", requireLogin, h.Course.CreateForm)
	r.POST("/add_course", requireLogin, h.Course.Create)
	r.POST("/add-rating", requireLogin, h.Course.AddRating)

	// 首段通配：单段为标签过滤，两段为课程详情
	r.GET("/:slug", optionalLogin, h.Course.ByTag)
	course := r.Group("/:slug/:id")
	{
		course.GET("", optionalLogin, h.Course.Detail)
		course.POST("", requireLogin, h.Course.SubmitComment)
		course.GET("/edit", requireLogin, h.Course.EditForm)
		course.POST("/edit", requireLogin, h.Course.Update)
		course.GET("/delete", requireLogin, h.Course.DeleteConfirm)
		course.POST("/delete", requireLogin, h.Course.Delete)

		course.GET("/comment/:comment_id/edit", requireLogin, h.Comment.EditForm)
		course.POST("/comment/:comment_id/edit", requireLogin, h.Comment.Update)
		course.GET("/comment/:comment_id/delete", requireLogin, h.Comment.DeleteConfirm)
		course.POST("/comment/:comment_id/delete", requireLogin, h.Comment.Delete)
	}

	return r
}
