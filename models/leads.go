package models

import "time"

// MsdcLead MSDC 渠道的线索记录
type MsdcLead struct {
	LeadID          string     `bson:"leadId" json:"lead_id"`
	TenantID        string     `bson:"tenantId" json:"-"`
	CustomerName    string     `bson:"customerName" json:"customer_name"`
	PIC             string     `bson:"pic" json:"pic"`
	Segment         string     `bson:"segment" json:"segment"`
	Channel         string     `bson:"channel" json:"channel"`
	NeedDescription string     `bson:"needDescription" json:"need_description"`
	TenderName      string     `bson:"tenderName" json:"tender_name"`
	ProjectValueM   float64    `bson:"projectValueM" json:"project_value_m"`
	StatusTender    string     `bson:"statusTender" json:"status_tender"`
	CreatedAt       *time.Time `bson:"createdAt" json:"created_at"`
}

// LeadsQuery 线索列表的查询参数
type LeadsQuery struct {
	Status   string
	Q        string
	Page     int
	PageSize int
	Lembaga  string
	Year     int
}

// LeadsMeta 分页元信息
type LeadsMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// LeadsResponse GET /api/leads/msdc 的响应结构
type LeadsResponse struct {
	Data []MsdcLead `json:"data"`
	Meta LeadsMeta  `json:"meta"`
}
