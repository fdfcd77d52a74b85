package utils

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestParseIntQuery(t *testing.T) {
	c := testContext("year=2025&page=abc")

	assert.Equal(t, 2025, ParseIntQuery(c, "year", 2026))
	// 非法值回退到默认值
	assert.Equal(t, 1, ParseIntQuery(c, "page", 1))
	// 缺省值回退到默认值
	assert.Equal(t, 20, ParseIntQuery(c, "pageSize", 20))
}

func TestToNumber(t *testing.T) {
	assert.Equal(t, 3.5, ToNumber(3.5))
	assert.Zero(t, ToNumber(math.NaN()))
	assert.Zero(t, ToNumber(math.Inf(1)))
	assert.Zero(t, ToNumber(math.Inf(-1)))
}

func TestGetTenantID(t *testing.T) {
	c := testContext("")
	c.Set("tenantId", "t1")

	tenantID, err := GetTenantID(c)
	require.NoError(t, err)
	assert.Equal(t, "t1", tenantID)
}

func TestGetTenantIDMissing(t *testing.T) {
	c := testContext("")

	_, err := GetTenantID(c)
	require.Error(t, err)
}

func TestGetUserFromClaims(t *testing.T) {
	c := testContext("")
	c.Set("user", map[string]interface{}{
		"id":       "u1",
		"role":     "ANALYST",
		"username": "alice",
		"tenantId": "t1",
	})

	user, err := GetUser(c)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "t1", user.TenantID)
}

func TestGetUserMissing(t *testing.T) {
	c := testContext("")
	_, err := GetUser(c)
	require.Error(t, err)
}
