package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"coursehub/config"
	"coursehub/internal/api/handler"
	"coursehub/internal/api/middleware"
	"coursehub/internal/api/router"
	"coursehub/internal/repository"
	"coursehub/internal/service"
	"coursehub/pkg/database"
	"coursehub/pkg/jwt"
	applogger "coursehub/pkg/logger"
	"coursehub/pkg/redis"
	"coursehub/pkg/session"
	"coursehub/pkg/storage"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("COURSEHUB_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、限流与标签缓存将不可用", zap.Error(err))
		rdb = nil
	}

	repo := repository.NewRepository(db)

	// 接口变量只在 Redis 可用时赋值，避免带类型的 nil
	deps := service.Deps{
		Images:        storage.NewImageStore(&cfg.Media),
		ReservedSlugs: router.ReservedSlugs(cfg),
	}
	var (
		blacklist middleware.Blacklist
		limiter   middleware.Limiter
	)
	checks := map[string]handler.Pinger{"database": repo, "redis": nil}
	if rdb != nil {
		deps.Cache = rdb
		deps.Blacklist = rdb
		blacklist = rdb
		limiter = rdb
		checks["redis"] = rdb
	}

	// 5. 初始化 JWT 管理器与会话存储
	jwtMgr := jwt.NewManager(&cfg.Auth)
	sessions := session.NewStore(&cfg.Auth)

	// 6. 依赖注入: Service → Handler
	svc := service.NewService(cfg, repo, jwtMgr, deps, logger)
	h := handler.NewHandler(svc, sessions, handler.NewHealthHandler(checks, logger), logger)

	// 6.1 热门标签定时刷新
	scheduler, err := service.NewScheduler(cfg.Cache.RefreshCron, svc.Tag, logger)
	if err != nil {
		logger.Fatal("定时任务初始化失败", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Start()
	}

	// 7. 初始化路由
	auth := middleware.NewAuthenticator(jwtMgr, sessions, blacklist).WithAccounts(svc.Auth)
	engine := router.Setup(cfg, h, auth, limiter, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
