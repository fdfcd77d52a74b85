package utils

import (
	"testing"

	"github.com/BerniceZTT/funnel_end/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hashed := HashPassword("admin123")
	assert.NotEqual(t, "admin123", hashed)
	assert.True(t, VerifyPassword("admin123", hashed))
	assert.False(t, VerifyPassword("wrong", hashed))
}

func TestGenerateAndParseToken(t *testing.T) {
	InitLogger()

	user := models.User{
		Username: "alice",
		Role:     models.UserRoleANALYST,
		TenantID: "t1",
	}

	token, err := GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, string(models.UserRoleANALYST), claims["role"])
	assert.Equal(t, "t1", claims["tenantId"])
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not-a-token")
	require.Error(t, err)
}

func TestHasPermission(t *testing.T) {
	// 超级管理员拥有所有权限
	assert.True(t, HasPermission(models.UserRoleSUPER_ADMIN, "anything", "delete"))

	// 分析师可读看板和线索，可创建导入
	assert.True(t, HasPermission(models.UserRoleANALYST, "funnel", "read"))
	assert.True(t, HasPermission(models.UserRoleANALYST, "leads", "read"))
	assert.True(t, HasPermission(models.UserRoleANALYST, "imports", "create"))

	// 上传员不能看线索
	assert.True(t, HasPermission(models.UserRoleUPLOADER, "imports", "create"))
	assert.False(t, HasPermission(models.UserRoleUPLOADER, "leads", "read"))

	// 只读角色不能上传
	assert.True(t, HasPermission(models.UserRoleVIEWER, "funnel", "read"))
	assert.False(t, HasPermission(models.UserRoleVIEWER, "imports", "create"))
}
