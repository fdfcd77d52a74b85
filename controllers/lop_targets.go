package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/BerniceZTT/funnel_end/config"
	"github.com/BerniceZTT/funnel_end/models"
	"github.com/BerniceZTT/funnel_end/service"
	"github.com/BerniceZTT/funnel_end/utils"

	"github.com/gin-gonic/gin"
)

// GetLopTargets 获取各细分的目标与LOP指标
// GET /api/lop-targets?year=
// 百分比在此处重新计算，存储中的旧百分比字段一律不信任
func GetLopTargets(c *gin.Context) {
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

	rows, err := loadTargetRows(ctx, tenantID, year)
	if err != nil {
		utils.Logger.Error().Err(err).Int("year", year).Msg("获取LOP目标失败")
		// 失败时返回空data和错误信息，便于前端对该数据源单独展示错误面板
		c.JSON(http.StatusInternalServerError, gin.H{
			"data":  []models.LopTargetRow{},
			"error": err.Error(),
		})
		return
	}

	mapped := service.MapLopTargetRows(rows)

	c.JSON(http.StatusOK, models.LopTargetsResponse{
		Data:    mapped,
		HasData: len(mapped) > 0,
		Year:    year,
	})
}
