package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BerniceZTT/funnel_end/models"
	"github.com/BerniceZTT/funnel_end/repository"
	"github.com/BerniceZTT/funnel_end/utils"

	"github.com/gin-gonic/gin"
)

// 需要记录的HTTP方法
var loggedMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

// 不需要记录的路径
var excludedPaths = map[string]bool{
	"/api/health":     true,
	"/api/db-status":  true,
	"/api/auth/login": true,
}

// OperationLoggerMiddleware 操作日志记录中间件
func OperationLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 检查是否需要记录此操作
		if !shouldLogOperation(c) {
			c.Next()
			return
		}

		startTime := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// 读取并重置请求体
		var requestBody interface{}
		contentType := c.Request.Header.Get("Content-Type")
		if c.Request.Body != nil && strings.Contains(contentType, "application/json") {
			requestBodyBytes, err := io.ReadAll(c.Request.Body)
			if err == nil {
				// 重置请求体，以便后续处理
				c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBodyBytes))
				if err := json.Unmarshal(requestBodyBytes, &requestBody); err != nil {
					requestBody = string(requestBodyBytes)
				}
			}
		} else if strings.Contains(contentType, "multipart/form-data") {
			// 文件上传只记录表单字段名，不记录文件内容
			requestBody = "multipart/form-data"
		}

		// 清理敏感数据
		requestBody = sanitizeData(requestBody)

		// 处理请求
		c.Next()

		// 提取用户与租户信息
		operatorID, operatorName := "", ""
		if user, err := utils.GetUser(c); err == nil {
			operatorID = user.ID
			operatorName = user.Username
		}
		tenantID := c.GetString("tenantId")

		logEntry := models.OperationLog{
			Method:       method,
			Path:         path,
			OperatorID:   operatorID,
			OperatorName: operatorName,
			TenantID:     tenantID,
			RequestBody:  requestBody,
			StatusCode:   c.Writer.Status(),
			ResponseMs:   time.Since(startTime).Milliseconds(),
			CreatedAt:    time.Now(),
		}

		// 异步写入，不阻塞响应
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			collection := repository.Collection(repository.ApiOperationLogsCollection)
			if _, err := collection.InsertOne(ctx, logEntry); err != nil {
				utils.Logger.Error().Err(err).Msg("写入操作日志失败")
			}
		}()
	}
}

// shouldLogOperation 判断是否需要记录此操作
func shouldLogOperation(c *gin.Context) bool {
	if !loggedMethods[c.Request.Method] {
		return false
	}
	return !excludedPaths[c.Request.URL.Path]
}

// sanitizeData 清理请求体中的敏感字段
func sanitizeData(data interface{}) interface{} {
	m, ok := data.(map[string]interface{})
	if !ok {
		return data
	}
	for _, key := range []string{"password", "token", "authorization"} {
		if _, exists := m[key]; exists {
			m[key] = "******"
		}
	}
	return m
}
