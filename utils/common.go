package utils

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

// LoginUser 从token claims还原出的当前登录用户
type LoginUser struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Username string `json:"name"`
	TenantID string `json:"tenantId"`
}

// GetUser 从gin上下文获取当前用户信息
func GetUser(c *gin.Context) (*LoginUser, error) {
	currentUser, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("GetUser 未授权访问")
	}

	// 处理不同类型的 claims
	var claims map[string]interface{}
	switch v := currentUser.(type) {
	case jwt.MapClaims:
		claims = make(map[string]interface{})
		for key, val := range v {
			claims[key] = val
		}
	case map[string]interface{}:
		claims = v
	default:
		return nil, fmt.Errorf("无法处理用户信息格式")
	}

	// 获取用户信息字段
	id, ok := claims["id"].(string)
	if !ok {
		return nil, fmt.Errorf("无效的用户ID")
	}

	role, ok := claims["role"].(string)
	if !ok {
		return nil, fmt.Errorf("无效的用户角色")
	}

	username, ok := claims["username"].(string)
	if !ok {
		return nil, fmt.Errorf("无效的用户名")
	}

	// tenantId 允许缺省，由租户中间件兜底
	tenantID, _ := claims["tenantId"].(string)

	return &LoginUser{
		ID:       id,
		Role:     role,
		Username: username,
		TenantID: tenantID,
	}, nil
}

// GetTenantID 从gin上下文获取当前租户ID，由租户中间件写入
func GetTenantID(c *gin.Context) (string, error) {
	tenantID := c.GetString("tenantId")
	if tenantID == "" {
		return "", NewApiError("无法解析租户信息", http.StatusUnauthorized, "TENANT_UNRESOLVED")
	}
	return tenantID, nil
}

// PaginatedResponse 分页响应
func PaginatedResponse(c *gin.Context, data interface{}, total int64, page int64, limit int64) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
			"pages": (total + limit - 1) / limit,
		},
	})
}

// ParseIntQuery 解析整数查询参数，非法或缺省时返回默认值
func ParseIntQuery(c *gin.Context, key string, defaultValue int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

// ToNumber 数值兜底：NaN/Inf 一律按0处理
func ToNumber(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
