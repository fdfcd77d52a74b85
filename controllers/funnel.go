package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/BerniceZTT/funnel_end/config"
	"github.com/BerniceZTT/funnel_end/models"
	"github.com/BerniceZTT/funnel_end/repository"
	"github.com/BerniceZTT/funnel_end/service"
	"github.com/BerniceZTT/funnel_end/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// parseYearParam 解析并校验year参数，缺省时使用默认年份
func parseYearParam(c *gin.Context, cfg *config.Config) (int, error) {
	year := utils.ParseIntQuery(c, "year", cfg.DefaultYear)
	if !cfg.IsSupportedYear(year) {
		return 0, utils.CreateBadRequestError(fmt.Sprintf("不支持的年份: %d", year))
	}
	return year, nil
}

// loadFunnelRows 按租户和年份读取原始漏斗行
func loadFunnelRows(ctx context.Context, tenantID string, year int, segmentFilter string) ([]models.FunnelRow, error) {
	filter := bson.M{
		"tenantId": tenantID,
		"year":     year,
	}
	if segmentFilter != "" {
		// 细分过滤大小写不敏感，匹配原始标签
		filter["segment"] = bson.M{"$regex": "^" + segmentFilter + "$", "$options": "i"}
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "segment", Value: 1}, {Key: "stage", Value: 1}})

	cursor, err := repository.Collection(repository.FunnelRowsCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("查询漏斗数据失败: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []models.FunnelRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("解析漏斗数据失败: %w", err)
	}
	return rows, nil
}

// loadTargetRows 按租户和年份读取原始目标行
func loadTargetRows(ctx context.Context, tenantID string, year int) ([]models.LopTargetSourceRow, error) {
	filter := bson.M{
		"tenantId": tenantID,
		"year":     year,
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "segment", Value: 1}})

	cursor, err := repository.Collection(repository.LopTargetsCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("查询目标数据失败: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []models.LopTargetSourceRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("解析目标数据失败: %w", err)
	}
	return rows, nil
}

// GetFunnel2Rows 获取按细分分组的漏斗数据
// GET /api/funnel-2rows?year=&segment=
func GetFunnel2Rows(c *gin.Context) {
	tenantID, err := utils.GetTenantID(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	cfg := config.LoadConfig()
	year, err := parseYearParam(c, cfg)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	segmentFilter := c.Query("segment")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rows, err := loadFunnelRows(ctx, tenantID, year, segmentFilter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	grouped, skipped := service.GroupFunnelRows(rows)
	utils.LogSkippedRows("/api/funnel-2rows", skipped, len(rows))

	c.JSON(http.StatusOK, models.FunnelResponse{
		Rows:    grouped,
		Year:    year,
		HasData: len(grouped) > 0,
	})
}

// GetFunnelGrid 获取总览页双行表格的完整网格
// GET /api/funnel-2rows/grid?year=
func GetFunnelGrid(c *gin.Context) {
	tenantID, err := utils.GetTenantID(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	cfg := config.LoadConfig()
	year, err := parseYearParam(c, cfg)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	funnelRows, err := loadFunnelRows(ctx, tenantID, year, "")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	targetRows, err := loadTargetRows(ctx, tenantID, year)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	grid, skipped := service.BuildFunnel2Rows(funnelRows, targetRows)
	utils.LogSkippedRows("/api/funnel-2rows/grid", skipped, len(funnelRows)+len(targetRows))

	c.JSON(http.StatusOK, gin.H{
		"year":         year,
		"stages":       grid.Stages,
		"targetRkap":   grid.TargetRkap,
		"targetStg":    grid.TargetStg,
		"kecukupanLop": grid.KecukupanLop,
		"qualifiedLop": grid.QualifiedLop,
	})
}
