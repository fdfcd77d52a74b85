package service

import (
	"math"
	"sort"

	"github.com/BerniceZTT/funnel_end/models"
	"github.com/BerniceZTT/funnel_end/utils"
)

// NewEmptyGrid 构造完整的零填充网格
// 每个(细分, 阶段)组合都存在，下游渲染绝不会索引到缺失单元格
func NewEmptyGrid() map[models.FunnelStage]map[models.Segment]models.FunnelCell {
	grid := make(map[models.FunnelStage]map[models.Segment]models.FunnelCell, len(models.StageOrder))
	for _, stage := range models.StageOrder {
		cells := make(map[models.Segment]models.FunnelCell, len(models.SegmentOrder))
		for _, seg := range models.SegmentOrder {
			cells[seg] = models.FunnelCell{}
		}
		grid[stage] = cells
	}
	return grid
}

// emptyStageRecord 单个细分的零填充阶段记录
func emptyStageRecord() map[models.FunnelStage]models.FunnelCell {
	stages := make(map[models.FunnelStage]models.FunnelCell, len(models.StageOrder))
	for _, stage := range models.StageOrder {
		stages[stage] = models.FunnelCell{}
	}
	return stages
}

// coerce 数值兜底，NaN/Inf归零
func coerce(v float64) float64 {
	return utils.ToNumber(v)
}

// roundProjects 项目数取整且不为负
func roundProjects(v float64) int {
	n := int(math.Round(coerce(v)))
	if n < 0 {
		return 0
	}
	return n
}

// pctOf 重新计算对目标的百分比，目标非正时为0
// 百分比永远是派生值，绝不信任存储中的旧百分比字段
func pctOf(value, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return value / target * 100
}

// GroupFunnelRows 将无序的原始漏斗行分组为按细分聚合的结构
// 归一化失败的行被丢弃并计入skipped；同一细分首次出现的标签用于展示；
// 每个细分的阶段记录先零填充再覆盖
func GroupFunnelRows(rows []models.FunnelRow) (grouped []models.SegmentFunnel, skipped int) {
	byKey := make(map[models.Segment]*models.SegmentFunnel)
	var keys []models.Segment

	for _, row := range rows {
		if !IsValidSegmentLabel(row.Segment) {
			skipped++
			continue
		}

		seg, ok := NormalizeSegment(row.Segment)
		if !ok {
			skipped++
			continue
		}

		stage, ok := NormalizeStage(row.Stage)
		if !ok {
			skipped++
			continue
		}

		entry, exists := byKey[seg]
		if !exists {
			entry = &models.SegmentFunnel{
				Segment: row.Segment,
				Stages:  emptyStageRecord(),
			}
			byKey[seg] = entry
			keys = append(keys, seg)
		}

		entry.Stages[stage] = models.FunnelCell{
			ValueM:   coerce(row.TotalM),
			Projects: roundProjects(row.ProjectCount),
		}

		if row.Year != 0 {
			year := row.Year
			entry.Year = &year
		}
	}

	grouped = make([]models.SegmentFunnel, 0, len(keys))
	for _, key := range keys {
		grouped = append(grouped, *byKey[key])
	}

	sort.SliceStable(grouped, func(i, j int) bool {
		ri, rj := SegmentRank(grouped[i].Segment), SegmentRank(grouped[j].Segment)
		if ri != rj {
			return ri < rj
		}
		return grouped[i].Segment < grouped[j].Segment
	})

	return grouped, skipped
}

// QualifiedLopCell 派生的 qualified_lop 单元格：qualified + submission + win
func QualifiedLopCell(stages map[models.FunnelStage]models.FunnelCell) models.FunnelCell {
	q := stages[models.StageQualified]
	s := stages[models.StageSubmission]
	w := stages[models.StageWin]
	return models.FunnelCell{
		ValueM:   q.ValueM + s.ValueM + w.ValueM,
		Projects: q.Projects + s.Projects + w.Projects,
	}
}

// BuildFunnel2Rows 组合原始漏斗行与目标行，产出总览页双行表格的完整网格
// 算法：先初始化零填充网格，再逐行归一化覆盖；归一化失败的行丢弃并计数
func BuildFunnel2Rows(funnelRows []models.FunnelRow, targetRows []models.LopTargetSourceRow) (*models.Funnel2RowsResponse, int) {
	resp := &models.Funnel2RowsResponse{
		Stages:       NewEmptyGrid(),
		TargetRkap:   make(map[models.Segment]float64, len(models.SegmentOrder)),
		TargetStg:    make(map[models.Segment]float64, len(models.SegmentOrder)),
		KecukupanLop: make(map[models.Segment]models.LopCell, len(models.SegmentOrder)),
		QualifiedLop: make(map[models.Segment]models.LopCell, len(models.SegmentOrder)),
	}
	for _, seg := range models.SegmentOrder {
		resp.TargetRkap[seg] = 0
		resp.TargetStg[seg] = 0
		resp.KecukupanLop[seg] = models.LopCell{}
		resp.QualifiedLop[seg] = models.LopCell{}
	}

	skipped := 0
	for _, row := range funnelRows {
		seg, ok := NormalizeSegment(row.Segment)
		if !ok {
			skipped++
			continue
		}
		stage, ok := NormalizeStage(row.Stage)
		if !ok {
			skipped++
			continue
		}
		resp.Stages[stage][seg] = models.FunnelCell{
			ValueM:   coerce(row.TotalM),
			Projects: roundProjects(row.ProjectCount),
		}
	}

	for _, row := range targetRows {
		seg, ok := NormalizeSegment(row.Segment)
		if !ok {
			skipped++
			continue
		}

		targetRkap := coerce(row.TargetRkapM)
		targetStg := coerce(row.TargetStgM)
		lopValue := coerce(row.KecukupanLopM)
		qlopValue := coerce(row.QualifiedLopM)

		resp.TargetRkap[seg] = targetRkap
		resp.TargetStg[seg] = targetStg
		resp.KecukupanLop[seg] = models.LopCell{
			ValueM:  lopValue,
			PctRkap: pctOf(lopValue, targetRkap),
			PctStg:  pctOf(lopValue, targetStg),
		}
		resp.QualifiedLop[seg] = models.LopCell{
			ValueM:  qlopValue,
			PctRkap: pctOf(qlopValue, targetRkap),
			PctStg:  pctOf(qlopValue, targetStg),
		}
	}

	return resp, skipped
}

// MapLopTargetRows 将原始目标行映射为API行，百分比全部重新计算
func MapLopTargetRows(rows []models.LopTargetSourceRow) []models.LopTargetRow {
	mapped := make([]models.LopTargetRow, 0, len(rows))
	for _, row := range rows {
		targetRkap := coerce(row.TargetRkapM)
		targetStg := coerce(row.TargetStgM)
		lopValue := coerce(row.KecukupanLopM)
		qlopValue := coerce(row.QualifiedLopM)

		out := models.LopTargetRow{
			Segment:       row.Segment,
			TargetRkapM:   targetRkap,
			TargetStgM:    targetStg,
			LopValueM:     lopValue,
			QualifiedLopM: qlopValue,
			LopVsRkapPct:  pctOf(lopValue, targetRkap),
			LopVsStgPct:   pctOf(lopValue, targetStg),
			QlopVsRkapPct: pctOf(qlopValue, targetRkap),
			QlopVsStgPct:  pctOf(qlopValue, targetStg),
		}
		if row.Year != 0 {
			year := row.Year
			out.Year = &year
		}
		mapped = append(mapped, out)
	}

	sort.SliceStable(mapped, func(i, j int) bool {
		ri, rj := SegmentRank(mapped[i].Segment), SegmentRank(mapped[j].Segment)
		if ri != rj {
			return ri < rj
		}
		return mapped[i].Segment < mapped[j].Segment
	})

	return mapped
}
