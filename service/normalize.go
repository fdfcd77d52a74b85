package service

import (
	"sort"
	"strings"

	"github.com/BerniceZTT/funnel_end/models"
)

// segmentSynonyms 细分标签同义词表，键为去空格小写后的原始标签
// 表是静态且穷举的，不做模糊匹配；未命中的标签必须被调用方丢弃，
// 绝不允许落入任意细分导致金额串段
var segmentSynonyms = map[string]models.Segment{
	"telkom":          models.SegmentTELKOM_GROUP,
	"telkom group":    models.SegmentTELKOM_GROUP,
	"soe":             models.SegmentSOE,
	"private":         models.SegmentPRIVATE,
	"government":      models.SegmentGOV,
	"gov":             models.SegmentGOV,
	"sme & regional":  models.SegmentSME_REG,
	"sme and regional": models.SegmentSME_REG,
	"sme & reg":       models.SegmentSME_REG,
	"sme reg":         models.SegmentSME_REG,
	"total":           models.SegmentTOTAL,
}

// stageSynonyms 漏斗阶段同义词表
var stageSynonyms = map[string]models.FunnelStage{
	"lead":        models.StageLeads,
	"leads":       models.StageLeads,
	"prospect":    models.StageProspect,
	"prospects":   models.StageProspect,
	"qualified":   models.StageQualified,
	"submission":  models.StageSubmission,
	"submissions": models.StageSubmission,
	"win":         models.StageWin,
	"won":         models.StageWin,
}

// NormalizeSegment 将原始细分标签归一化为规范键
// 大小写不敏感、去除首尾空白；未识别时返回 ok=false
func NormalizeSegment(raw string) (models.Segment, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if seg, ok := segmentSynonyms[normalized]; ok {
		return seg, true
	}
	return "", false
}

// NormalizeStage 将原始阶段标签归一化为规范阶段
func NormalizeStage(raw string) (models.FunnelStage, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if stage, ok := stageSynonyms[normalized]; ok {
		return stage, true
	}
	return "", false
}

// IsValidSegmentLabel 判断原始标签是否值得参与归一化
// 空串和电子表格导出的"nan"一律视为无效
func IsValidSegmentLabel(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed != "" && strings.ToLower(trimmed) != "nan"
}

// normalizeKey 未识别标签的去重键
func normalizeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// OrderSegments 细分排序
// 先按规范键去重（同一键首次出现的标签用于展示），再按固定优先级排序，
// 未识别但有效的细分按字母序追加到末尾
func OrderSegments(labels []string, includeTotal bool) []string {
	uniqueByKey := make(map[string]string)
	var keys []string

	for _, label := range labels {
		if !IsValidSegmentLabel(label) {
			continue
		}
		key := normalizeKey(label)
		if seg, ok := NormalizeSegment(label); ok {
			key = string(seg)
		}
		if !includeTotal && key == string(models.SegmentTOTAL) {
			continue
		}
		if _, exists := uniqueByKey[key]; !exists {
			uniqueByKey[key] = label
			keys = append(keys, key)
		}
	}

	var ordered []string
	for _, seg := range models.SegmentOrder {
		if !includeTotal && seg == models.SegmentTOTAL {
			continue
		}
		if label, ok := uniqueByKey[string(seg)]; ok {
			ordered = append(ordered, label)
			delete(uniqueByKey, string(seg))
		}
	}

	// 未识别的细分按字母序追加
	var remaining []string
	for _, key := range keys {
		if label, ok := uniqueByKey[key]; ok {
			remaining = append(remaining, label)
		}
	}
	sort.Strings(remaining)

	return append(ordered, remaining...)
}

// SegmentRank 细分在固定优先级中的序号，未识别的排在所有已知细分之后
func SegmentRank(label string) int {
	seg, ok := NormalizeSegment(label)
	if !ok {
		return len(models.SegmentOrder)
	}
	for i, s := range models.SegmentOrder {
		if s == seg {
			return i
		}
	}
	return len(models.SegmentOrder)
}
