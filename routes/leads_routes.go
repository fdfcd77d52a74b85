package routes

import (
	"github.com/BerniceZTT/funnel_end/config"
	"github.com/BerniceZTT/funnel_end/controllers"
	"github.com/BerniceZTT/funnel_end/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterLeadsRoutes 注册线索路由
func RegisterLeadsRoutes(router *gin.Engine, cfg *config.Config) {
	leads := router.Group("/api/leads")
	leads.Use(middleware.AuthMiddleware())
	leads.Use(middleware.TenantMiddleware(cfg.DefaultTenantID))
	leads.Use(middleware.PermissionMiddleware("leads", "read"))
	{
		leads.GET("/msdc", controllers.GetMsdcLeads)
	}
}
