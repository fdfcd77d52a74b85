package service

import (
	"regexp"

	"github.com/BerniceZTT/funnel_end/models"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	// DefaultLeadsPageSize 默认分页大小
	DefaultLeadsPageSize = 20
	// MaxLeadsPageSize 分页大小上限
	MaxLeadsPageSize = 100
)

// NormalizeLeadsQuery 规范化分页参数
func NormalizeLeadsQuery(q models.LeadsQuery) models.LeadsQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultLeadsPageSize
	}
	if q.PageSize > MaxLeadsPageSize {
		q.PageSize = MaxLeadsPageSize
	}
	return q
}

// BuildLeadsFilter 构建线索列表的mongo查询条件
// 文本搜索对 customerName/tenderName/pic 三个字段做大小写不敏感匹配
func BuildLeadsFilter(tenantID string, q models.LeadsQuery) bson.M {
	filter := bson.M{"tenantId": tenantID}

	if q.Status != "" && q.Status != "all" {
		filter["statusTender"] = q.Status
	}

	if q.Q != "" {
		keyword := regexp.QuoteMeta(q.Q)
		filter["$or"] = []bson.M{
			{"customerName": bson.M{"$regex": keyword, "$options": "i"}},
			{"tenderName": bson.M{"$regex": keyword, "$options": "i"}},
			{"pic": bson.M{"$regex": keyword, "$options": "i"}},
		}
	}

	if q.Lembaga != "" {
		filter["customerName"] = bson.M{"$regex": regexp.QuoteMeta(q.Lembaga)}
	}

	if q.Year != 0 {
		filter["year"] = q.Year
	}

	return filter
}

// FilterLeads 在内存中应用与 BuildLeadsFilter 相同的过滤语义
// 供测试与种子数据路径使用
func FilterLeads(leads []models.MsdcLead, q models.LeadsQuery) []models.MsdcLead {
	filtered := make([]models.MsdcLead, 0, len(leads))
	for _, lead := range leads {
		if q.Status != "" && q.Status != "all" && lead.StatusTender != q.Status {
			continue
		}
		if q.Q != "" && !leadMatches(lead, q.Q) {
			continue
		}
		if q.Year != 0 {
			if lead.CreatedAt == nil || lead.CreatedAt.Year() != q.Year {
				continue
			}
		}
		filtered = append(filtered, lead)
	}
	return filtered
}

// leadMatches 文本搜索匹配
func leadMatches(lead models.MsdcLead, keyword string) bool {
	pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(keyword))
	if err != nil {
		return false
	}
	return pattern.MatchString(lead.CustomerName) ||
		pattern.MatchString(lead.TenderName) ||
		pattern.MatchString(lead.PIC)
}

// PaginateLeads 切片分页，超出范围时返回空页
func PaginateLeads(leads []models.MsdcLead, page, pageSize int) []models.MsdcLead {
	start := (page - 1) * pageSize
	if start >= len(leads) {
		return []models.MsdcLead{}
	}
	end := start + pageSize
	if end > len(leads) {
		end = len(leads)
	}
	return leads[start:end]
}
