package routes

import (
	"github.com/BerniceZTT/funnel_end/config"
	"github.com/BerniceZTT/funnel_end/controllers"
	"github.com/BerniceZTT/funnel_end/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterFunnelRoutes 注册漏斗看板路由
func RegisterFunnelRoutes(router *gin.Engine, cfg *config.Config) {
	funnel := router.Group("/api/funnel-2rows")
	funnel.Use(middleware.AuthMiddleware())
	funnel.Use(middleware.TenantMiddleware(cfg.DefaultTenantID))
	funnel.Use(middleware.PermissionMiddleware("funnel", "read"))
	{
		funnel.GET("", controllers.GetFunnel2Rows)
		funnel.GET("/grid", controllers.GetFunnelGrid)
	}

	targets := router.Group("/api/lop-targets")
	targets.Use(middleware.AuthMiddleware())
	targets.Use(middleware.TenantMiddleware(cfg.DefaultTenantID))
	targets.Use(middleware.PermissionMiddleware("funnel", "read"))
	{
		targets.GET("", controllers.GetLopTargets)
	}
}
