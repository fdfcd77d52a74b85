package controllers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BerniceZTT/funnel_end/config"
	"github.com/BerniceZTT/funnel_end/models"
	"github.com/BerniceZTT/funnel_end/repository"
	"github.com/BerniceZTT/funnel_end/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 上传文件大小限制（20MB）
const maxImportFileSize = 20 * 1024 * 1024

// 允许的文件扩展名
var allowedImportExtensions = map[string]bool{
	".csv":  true,
	".xls":  true,
	".xlsx": true,
}

// CreateImport 接收上传的数据文件并排队等待ETL处理
// POST /api/imports multipart {file, division}
// 成功返回 201 {importId, status: "QUEUED"}；记录创建后看板侧不再修改，
// 状态推进由外部ETL进程负责
func CreateImport(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.ErrorResponse(c, err.Error(), http.StatusUnauthorized)
		return
	}

	tenantID, err := utils.GetTenantID(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.ErrorResponse(c, "缺少上传文件", http.StatusBadRequest)
		return
	}

	division := c.PostForm("division")
	if !models.IsValidDivision(division) {
		utils.ErrorResponse(c, "无效的业务条线", http.StatusBadRequest)
		return
	}

	// 校验扩展名
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImportExtensions[ext] {
		utils.ErrorResponse(c, "仅支持 csv/xls/xlsx 文件", http.StatusBadRequest)
		return
	}

	// 校验文件大小
	if fileHeader.Size > maxImportFileSize {
		utils.ErrorResponse(c, fmt.Sprintf("文件大小超出限制，最大支持 %dMB", maxImportFileSize/1024/1024), http.StatusBadRequest)
		return
	}

	cfg := config.LoadConfig()
	importID := uuid.NewString()
	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	storagePath := filepath.Join(cfg.UploadDir, tenantID, importID, timestamp+ext)

	// 原样保存上传文件，预览永远不是提交给服务端的数据
	if err := os.MkdirAll(filepath.Dir(storagePath), 0o755); err != nil {
		utils.HandleError(c, fmt.Errorf("创建存储目录失败: %w", err))
		return
	}
	if err := c.SaveUploadedFile(fileHeader, storagePath); err != nil {
		utils.HandleError(c, fmt.Errorf("保存上传文件失败: %w", err))
		return
	}

	record := models.ImportRecord{
		ID:          importID,
		TenantID:    tenantID,
		Division:    models.SourceDivision(division),
		FileName:    fileHeader.Filename,
		StoragePath: storagePath,
		Status:      models.ImportStatusQUEUED,
		CreatedBy:   user.ID,
		CreatedAt:   time.Now(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	importsCollection := repository.Collection(repository.ImportsCollection)
	if _, err := importsCollection.InsertOne(ctx, record); err != nil {
		utils.Logger.Error().Err(err).Str("importId", importID).Msg("写入导入记录失败")
		// 落库失败时清掉已保存的文件，避免产生孤儿文件
		_ = os.RemoveAll(filepath.Dir(storagePath))
		utils.ErrorResponse(c, "写入导入记录失败", http.StatusInternalServerError)
		return
	}

	utils.Logger.Info().
		Str("importId", importID).
		Str("tenantId", tenantID).
		Str("division", division).
		Str("fileName", fileHeader.Filename).
		Msg("文件已入队等待ETL处理")

	c.JSON(http.StatusCreated, gin.H{
		"importId": importID,
		"status":   string(models.ImportStatusQUEUED),
		"message":  "文件已入队等待处理",
	})
}

// ListImports 获取当前租户的导入历史
// GET /api/imports
func ListImports(c *gin.Context) {
	tenantID, err := utils.GetTenantID(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(100)

	cursor, err := repository.Collection(repository.ImportsCollection).
		Find(ctx, bson.M{"tenantId": tenantID}, findOptions)
	if err != nil {
		utils.HandleError(c, fmt.Errorf("查询导入历史失败: %w", err))
		return
	}
	defer cursor.Close(ctx)

	records := make([]models.ImportRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		utils.HandleError(c, fmt.Errorf("解析导入历史失败: %w", err))
		return
	}

	utils.SuccessResponse(c, records, "")
}
