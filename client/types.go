package client

import "github.com/BerniceZTT/funnel_end/models"

// FetchStatus 数据源的请求状态
// 每个数据源独立携带状态，任一数据源失败不影响其它数据源的展示
type FetchStatus string

const (
	StatusIdle    FetchStatus = "idle"
	StatusLoading FetchStatus = "loading"
	StatusSuccess FetchStatus = "success"
	StatusError   FetchStatus = "error"
)

// FunnelResult 漏斗数据源的状态化结果
type FunnelResult struct {
	Status  FetchStatus
	Rows    []models.SegmentFunnel
	HasData bool
	Year    int
	Err     error
}

// TargetsResult LOP目标数据源的状态化结果
type TargetsResult struct {
	Status  FetchStatus
	Data    []models.LopTargetRow
	HasData bool
	Year    int
	Err     error
}

// LeadsResult 线索列表数据源的状态化结果
type LeadsResult struct {
	Status FetchStatus
	Data   []models.MsdcLead
	Meta   models.LeadsMeta
	Err    error
}
