package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/BerniceZTT/funnel_end/models"
	"github.com/BerniceZTT/funnel_end/repository"
	"github.com/BerniceZTT/funnel_end/service"
	"github.com/BerniceZTT/funnel_end/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetMsdcLeads 获取MSDC线索列表
// GET /api/leads/msdc?status=&q=&page=&pageSize=&lembaga=&year=
// 过滤、搜索、分页均在服务端完成
func GetMsdcLeads(c *gin.Context) {
	tenantID, err := utils.GetTenantID(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	query := service.NormalizeLeadsQuery(models.LeadsQuery{
		Status:   c.Query("status"),
		Q:        c.Query("q"),
		Page:     utils.ParseIntQuery(c, "page", 1),
		PageSize: utils.ParseIntQuery(c, "pageSize", service.DefaultLeadsPageSize),
		Lembaga:  c.Query("lembaga"),
		Year:     utils.ParseIntQuery(c, "year", 0),
	})

	utils.LogInfo(map[string]interface{}{
		"tenantId": tenantID,
		"status":   query.Status,
		"q":        query.Q,
		"page":     query.Page,
		"pageSize": query.PageSize,
	}, "获取线索列表")

	filter := service.BuildLeadsFilter(tenantID, query)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	leadsCollection := repository.Collection(repository.MsdcLeadsCollection)

	total, err := leadsCollection.CountDocuments(ctx, filter)
	if err != nil {
		utils.HandleError(c, fmt.Errorf("统计线索总数失败: %w", err))
		return
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((query.Page - 1) * query.PageSize)).
		SetLimit(int64(query.PageSize))

	cursor, err := leadsCollection.Find(ctx, filter, findOptions)
	if err != nil {
		utils.HandleError(c, fmt.Errorf("查询线索列表失败: %w", err))
		return
	}
	defer cursor.Close(ctx)

	leads := make([]models.MsdcLead, 0)
	if err := cursor.All(ctx, &leads); err != nil {
		utils.HandleError(c, fmt.Errorf("解析线索列表失败: %w", err))
		return
	}

	c.JSON(http.StatusOK, models.LeadsResponse{
		Data: leads,
		Meta: models.LeadsMeta{
			Total:    total,
			Page:     query.Page,
			PageSize: query.PageSize,
		},
	})
}
