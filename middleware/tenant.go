package middleware

import (
	"net/http"

	"github.com/BerniceZTT/funnel_end/utils"

	"github.com/gin-gonic/gin"
)

// TenantMiddleware 租户解析中间件
// 按优先级解析租户：token claims -> X-Tenant-Id 请求头 -> 配置的默认租户
// 解析结果写入请求上下文，业务查询一律从上下文取租户ID，不依赖全局状态
func TenantMiddleware(defaultTenantID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := ""

		if user, err := utils.GetUser(c); err == nil && user.TenantID != "" {
			tenantID = user.TenantID
		}

		if tenantID == "" {
			tenantID = c.GetHeader("X-Tenant-Id")
		}

		if tenantID == "" {
			tenantID = defaultTenantID
		}

		if tenantID == "" {
			utils.Logger.Warn().
				Str("path", c.Request.URL.Path).
				Msg("无法解析租户")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "无法解析租户信息",
				"code":    "TENANT_UNRESOLVED",
			})
			return
		}

		c.Set("tenantId", tenantID)
		c.Next()
	}
}
