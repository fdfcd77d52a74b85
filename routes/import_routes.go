package routes

import (
	"github.com/BerniceZTT/funnel_end/config"
	"github.com/BerniceZTT/funnel_end/controllers"
	"github.com/BerniceZTT/funnel_end/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterImportRoutes 注册数据导入路由
func RegisterImportRoutes(router *gin.Engine, cfg *config.Config) {
	imports := router.Group("/api/imports")
	imports.Use(middleware.AuthMiddleware())
	imports.Use(middleware.TenantMiddleware(cfg.DefaultTenantID))
	{
		imports.GET("", middleware.PermissionMiddleware("imports", "read"), controllers.ListImports)

		// 上传走重IO路径，单独加限流
		imports.POST("",
			middleware.PermissionMiddleware("imports", "create"),
			middleware.UploadRateLimit(1, 3),
			controllers.CreateImport)
	}
}
