package controllers

import (
	"net/http"
	"time"

	"github.com/BerniceZTT/funnel_end/config"
	"github.com/BerniceZTT/funnel_end/models"
	"github.com/BerniceZTT/funnel_end/repository"
	"github.com/BerniceZTT/funnel_end/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Login 用户登录
func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求参数: "+err.Error(), http.StatusBadRequest)
		return
	}

	utils.Logger.Info().
		Str("username", req.Username).
		Msg("登录尝试")

	usersCollection := repository.Collection(repository.UsersCollection)
	var user models.User
	err := usersCollection.FindOne(repository.GetContext(), bson.M{"username": req.Username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Logger.Info().Str("username", req.Username).Msg("登录失败: 用户名不存在")
			utils.ErrorResponse(c, "用户名不存在，请检查用户名或注册新账号", http.StatusUnauthorized)
			return
		}
		utils.Logger.Error().Err(err).Msg("查询用户出错")
		utils.ErrorResponse(c, "登录失败: 数据库错误", http.StatusInternalServerError)
		return
	}

	// 检查账户状态
	if user.Status == models.UserStatusPENDING {
		utils.ErrorResponse(c, "账户正在审核中，请等待审核通过", http.StatusForbidden)
		return
	}
	if user.Status == models.UserStatusREJECTED {
		utils.ErrorResponse(c, "账户审核未通过", http.StatusForbidden)
		return
	}

	// 验证密码
	if !utils.VerifyPassword(req.Password, user.Password) {
		utils.Logger.Info().Str("username", req.Username).Msg("登录失败: 密码错误")
		utils.ErrorResponse(c, "密码错误", http.StatusUnauthorized)
		return
	}

	// 生成token
	token, err := utils.GenerateToken(user)
	if err != nil {
		utils.ErrorResponse(c, "生成token失败", http.StatusInternalServerError)
		return
	}

	utils.Logger.Info().Str("username", user.Username).Msg("登录成功")
	utils.SuccessResponse(c, models.LoginResponse{Token: token, User: user}, "登录成功")
}

// Register 用户注册
// 新用户归属配置的默认租户，角色为只读，待管理员审批
func Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "无效的请求参数: "+err.Error(), http.StatusBadRequest)
		return
	}

	usersCollection := repository.Collection(repository.UsersCollection)

	// 检查用户名是否已存在
	count, err := usersCollection.CountDocuments(repository.GetContext(), bson.M{"username": req.Username})
	if err != nil {
		utils.ErrorResponse(c, "注册失败: 数据库错误", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		utils.ErrorResponse(c, "用户名已存在", http.StatusBadRequest)
		return
	}

	cfg := config.LoadConfig()
	user := models.User{
		Username:  req.Username,
		Password:  utils.HashPassword(req.Password),
		Email:     req.Email,
		Role:      models.UserRoleVIEWER,
		Status:    models.UserStatusPENDING,
		TenantID:  cfg.DefaultTenantID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if _, err := usersCollection.InsertOne(repository.GetContext(), user); err != nil {
		utils.ErrorResponse(c, "注册失败: 数据库错误", http.StatusInternalServerError)
		return
	}

	utils.Logger.Info().Str("username", req.Username).Msg("注册成功，等待审核")
	utils.SuccessResponse(c, nil, "注册成功，请等待管理员审核", http.StatusCreated)
}

// ValidateToken 校验token有效性
func ValidateToken(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.ErrorResponse(c, err.Error(), http.StatusUnauthorized)
		return
	}
	utils.SuccessResponse(c, user, "")
}
