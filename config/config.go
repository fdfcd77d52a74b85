package config

import (
	"os"
	"strconv"
	"strings"
)

// Config 应用配置
type Config struct {
	Port            int
	MongoURI        string
	MongoDB         string
	JWTKey          string
	DefaultTenantID string
	UploadDir       string
	SupportedYears  []int
	DefaultYear     int
	Debug           bool
}

// LoadConfig 从环境变量加载配置
func LoadConfig() *Config {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	return &Config{
		Port:            port,
		MongoURI:        getEnv("MONGO_URI", "mongodb://127.0.0.1:27017/funnel"),
		MongoDB:         getEnv("MONGO_DB", "funnel"),
		JWTKey:          getEnv("JWT_KEY", "your-secret-key"), // 实际环境应替换为安全密钥
		DefaultTenantID: getEnv("DEFAULT_TENANT_ID", ""),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		SupportedYears:  parseYears(getEnv("SUPPORTED_YEARS", "2024,2025,2026")),
		DefaultYear:     2026,
		Debug:           getEnv("GIN_MODE", "debug") == "debug",
	}
}

// IsSupportedYear 判断年份是否在支持的年份集合内
func (c *Config) IsSupportedYear(year int) bool {
	for _, y := range c.SupportedYears {
		if y == year {
			return true
		}
	}
	return false
}

// parseYears 解析逗号分隔的年份列表
func parseYears(raw string) []int {
	var years []int
	for _, part := range strings.Split(raw, ",") {
		if y, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		years = []int{2026}
	}
	return years
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
