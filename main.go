package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerniceZTT/funnel_end/config"
	"github.com/BerniceZTT/funnel_end/middleware"
	"github.com/BerniceZTT/funnel_end/repository"
	"github.com/BerniceZTT/funnel_end/routes"
	"github.com/BerniceZTT/funnel_end/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// 初始化日志
	utils.InitLogger()

	// 加载配置
	cfg := config.LoadConfig()

	// 设置gin模式
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化MongoDB连接
	if err := repository.InitMongoDB(cfg.MongoURI, cfg.MongoDB); err != nil {
		utils.Logger.Fatal().Err(err).Msg("初始化MongoDB失败")
	}
	defer repository.CloseMongoDB()

	// 初始化集合与基础数据
	if err := repository.InitializeCollections(); err != nil {
		utils.Logger.Fatal().Err(err).Msg("初始化集合失败")
	}
	if err := repository.InitializeDefaultTenant(cfg.DefaultTenantID); err != nil {
		utils.Logger.Fatal().Err(err).Msg("初始化默认租户失败")
	}
	if err := repository.InitializeAdminAccount(cfg.DefaultTenantID); err != nil {
		utils.Logger.Fatal().Err(err).Msg("初始化管理员账户失败")
	}

	// debug模式下生成样例数据，供前端联调
	if cfg.Debug {
		if err := repository.SeedSampleData(cfg.DefaultTenantID, cfg.DefaultYear); err != nil {
			utils.Logger.Warn().Err(err).Msg("生成样例数据失败")
		}
	}

	// 创建gin实例
	router := gin.New()

	// 注册全局中间件
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.OperationLoggerMiddleware())

	// 注册路由
	routes.RegisterRoutes(router, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// 启动服务器
	go func() {
		utils.Logger.Info().Int("port", cfg.Port).Msg("服务启动")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal().Err(err).Msg("服务启动失败")
		}
	}()

	// 等待中断信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Logger.Info().Msg("收到关闭信号，正在关闭服务")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.Error().Err(err).Msg("服务关闭失败")
	}

	utils.Logger.Info().Msg("服务已关闭")
}
