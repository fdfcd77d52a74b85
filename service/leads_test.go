package service

import (
	"testing"
	"time"

	"github.com/BerniceZTT/funnel_end/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson"
)

func sampleLeads() []models.MsdcLead {
	t2025 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	t2026 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return []models.MsdcLead{
		{LeadID: "1", CustomerName: "PT Telkom Indonesia", PIC: "Budi", TenderName: "Network Upgrade", StatusTender: "Open", CreatedAt: &t2026},
		{LeadID: "2", CustomerName: "Bank Mandiri", PIC: "Sari", TenderName: "Core Banking", StatusTender: "Selesai", CreatedAt: &t2026},
		{LeadID: "3", CustomerName: "Kementerian Keuangan", PIC: "Agus", TenderName: "Data Center", StatusTender: "Open", CreatedAt: &t2025},
	}
}

func TestNormalizeLeadsQuery(t *testing.T) {
	q := NormalizeLeadsQuery(models.LeadsQuery{Page: 0, PageSize: 0})
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultLeadsPageSize, q.PageSize)

	q = NormalizeLeadsQuery(models.LeadsQuery{Page: -2, PageSize: 9999})
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxLeadsPageSize, q.PageSize)
}

func TestBuildLeadsFilter(t *testing.T) {
	filter := BuildLeadsFilter("t1", models.LeadsQuery{Status: "Open", Q: "telkom", Year: 2026})

	assert.Equal(t, "t1", filter["tenantId"])
	assert.Equal(t, "Open", filter["statusTender"])
	assert.Equal(t, 2026, filter["year"])

	or, ok := filter["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 3)
}

func TestBuildLeadsFilterAllStatus(t *testing.T) {
	filter := BuildLeadsFilter("t1", models.LeadsQuery{Status: "all"})
	_, exists := filter["statusTender"]
	assert.False(t, exists)
}

func TestBuildLeadsFilterEscapesRegex(t *testing.T) {
	// 搜索词里的正则元字符按字面处理
	filter := BuildLeadsFilter("t1", models.LeadsQuery{Q: "a+b(c"})
	or := filter["$or"].([]bson.M)
	pattern := or[0]["customerName"].(bson.M)["$regex"].(string)
	assert.Equal(t, `a\+b\(c`, pattern)
}

func TestFilterLeadsByStatus(t *testing.T) {
	leads := FilterLeads(sampleLeads(), models.LeadsQuery{Status: "Open"})
	require.Len(t, leads, 2)
	assert.Equal(t, "1", leads[0].LeadID)
	assert.Equal(t, "3", leads[1].LeadID)
}

func TestFilterLeadsBySearch(t *testing.T) {
	// 搜索大小写不敏感，匹配客户名/标书名/PIC任一字段
	leads := FilterLeads(sampleLeads(), models.LeadsQuery{Q: "TELKOM"})
	require.Len(t, leads, 1)
	assert.Equal(t, "1", leads[0].LeadID)

	leads = FilterLeads(sampleLeads(), models.LeadsQuery{Q: "sari"})
	require.Len(t, leads, 1)
	assert.Equal(t, "2", leads[0].LeadID)

	leads = FilterLeads(sampleLeads(), models.LeadsQuery{Q: "data center"})
	require.Len(t, leads, 1)
	assert.Equal(t, "3", leads[0].LeadID)
}

func TestFilterLeadsByYear(t *testing.T) {
	leads := FilterLeads(sampleLeads(), models.LeadsQuery{Year: 2025})
	require.Len(t, leads, 1)
	assert.Equal(t, "3", leads[0].LeadID)
}

func TestFilterLeadsCombined(t *testing.T) {
	leads := FilterLeads(sampleLeads(), models.LeadsQuery{Status: "Open", Q: "kementerian", Year: 2025})
	require.Len(t, leads, 1)
	assert.Equal(t, "3", leads[0].LeadID)
}

func TestPaginateLeads(t *testing.T) {
	leads := sampleLeads()

	page1 := PaginateLeads(leads, 1, 2)
	require.Len(t, page1, 2)
	assert.Equal(t, "1", page1[0].LeadID)

	page2 := PaginateLeads(leads, 2, 2)
	require.Len(t, page2, 1)
	assert.Equal(t, "3", page2[0].LeadID)

	// 超出范围返回空页而不是越界
	page3 := PaginateLeads(leads, 3, 2)
	assert.Empty(t, page3)
}
