package models

// Segment 客户细分的规范键，标签经过归一化后落到其中之一
type Segment string

const (
	SegmentTELKOM_GROUP Segment = "TELKOM_GROUP" // Telkom Group
	SegmentSOE          Segment = "SOE"          // 国有企业
	SegmentPRIVATE      Segment = "PRIVATE"      // 私营企业
	SegmentGOV          Segment = "GOV"          // 政府
	SegmentSME_REG      Segment = "SME_REG"      // SME & Regional
	SegmentTOTAL        Segment = "TOTAL"        // 汇总行
)

// SegmentOrder 细分的固定展示顺序
var SegmentOrder = []Segment{
	SegmentTELKOM_GROUP,
	SegmentSOE,
	SegmentPRIVATE,
	SegmentGOV,
	SegmentSME_REG,
	SegmentTOTAL,
}

// SegmentLabels 规范键对应的展示标签
var SegmentLabels = map[Segment]string{
	SegmentTELKOM_GROUP: "Telkom Group",
	SegmentSOE:          "SOE",
	SegmentPRIVATE:      "Private",
	SegmentGOV:          "Gov",
	SegmentSME_REG:      "SME & Reg",
	SegmentTOTAL:        "Total",
}

// FunnelStage 漏斗阶段，顺序在任何排序/过滤后都必须保持
type FunnelStage string

const (
	StageLeads      FunnelStage = "leads"
	StageProspect   FunnelStage = "prospect"
	StageQualified  FunnelStage = "qualified"
	StageSubmission FunnelStage = "submission"
	StageWin        FunnelStage = "win"

	// StageQualifiedLop 派生阶段 qualified + submission + win，不单独存储
	StageQualifiedLop FunnelStage = "qualified_lop"
)

// StageOrder 漏斗阶段的固定顺序
var StageOrder = []FunnelStage{
	StageLeads,
	StageProspect,
	StageQualified,
	StageSubmission,
	StageWin,
}

// StageLabels 漏斗阶段的展示标签
var StageLabels = map[FunnelStage]string{
	StageLeads:      "Leads",
	StageProspect:   "Prospects",
	StageQualified:  "Qualified",
	StageSubmission: "Submissions",
	StageWin:        "Win",
}

// FunnelCell 漏斗单元格：金额（单位：百万）+ 项目数
// 零值是有效状态，与"缺失"不同，网格中每个组合都必须存在
type FunnelCell struct {
	ValueM   float64 `json:"value_m"`
	Projects int     `json:"projects"`
}

// FunnelRow 数据源中的原始漏斗行（按租户隔离）
type FunnelRow struct {
	TenantID     string  `bson:"tenantId" json:"tenant_id"`
	Segment      string  `bson:"segment" json:"segment"`
	Stage        string  `bson:"stage" json:"stage"`
	ProjectCount float64 `bson:"projectCount" json:"project_count"`
	TotalM       float64 `bson:"totalM" json:"total_m"`
	Year         int     `bson:"year" json:"year"`
}

// SegmentFunnel 单个细分的完整阶段记录，所有阶段都被零填充
type SegmentFunnel struct {
	Segment string                     `json:"segment"`
	Stages  map[FunnelStage]FunnelCell `json:"stages"`
	Year    *int                       `json:"year,omitempty"`
}

// FunnelResponse GET /api/funnel-2rows 的响应结构
type FunnelResponse struct {
	Rows    []SegmentFunnel `json:"rows"`
	Year    int             `json:"year"`
	HasData bool            `json:"hasData"`
}

// LopCell 每个细分的 LOP 值及其对两项目标的百分比
// 百分比始终重新计算（value / target * 100），从不信任存储值
type LopCell struct {
	ValueM  float64 `json:"valueM"`
	PctRkap float64 `json:"pctRkap"`
	PctStg  float64 `json:"pctStg"`
}

// Funnel2RowsResponse 总览页双行表格的完整网格
// 每个阶段对每个细分都有单元格，绝不出现缺失索引
type Funnel2RowsResponse struct {
	Stages       map[FunnelStage]map[Segment]FunnelCell `json:"stages"`
	TargetRkap   map[Segment]float64                    `json:"targetRkap"`
	TargetStg    map[Segment]float64                    `json:"targetStg"`
	KecukupanLop map[Segment]LopCell                    `json:"kecukupanLop"`
	QualifiedLop map[Segment]LopCell                    `json:"qualifiedLop"`
}

// LopTargetSourceRow 数据源中的原始目标行
type LopTargetSourceRow struct {
	TenantID       string  `bson:"tenantId" json:"tenant_id"`
	Segment        string  `bson:"segment" json:"segment"`
	Year           int     `bson:"year" json:"year"`
	TargetRkapM    float64 `bson:"targetRkapM" json:"target_rkap_m"`
	TargetStgM     float64 `bson:"targetStgM" json:"target_stg_m"`
	KecukupanLopM  float64 `bson:"kecukupanLopM" json:"kecukupan_lop_m"`
	QualifiedLopM  float64 `bson:"qualifiedLopM" json:"qualified_lop_m"`
	KecukupanPct   float64 `bson:"kecukupanVsRkapPct" json:"kecukupan_vs_rkap_pct"`
	QualifiedPct   float64 `bson:"qualifiedVsRkapPct" json:"qualified_vs_rkap_pct"`
	KecukupanStg   float64 `bson:"kecukupanVsStgPct" json:"kecukupan_vs_stg_pct"`
	QualifiedStg   float64 `bson:"qualifiedVsStgPct" json:"qualified_vs_stg_pct"`
}

// LopTargetRow API 返回的目标行，百分比为派生字段
type LopTargetRow struct {
	Segment       string  `json:"segment"`
	TargetRkapM   float64 `json:"target_rkap_m"`
	TargetStgM    float64 `json:"target_stg_m"`
	LopValueM     float64 `json:"lop_value_m"`
	QualifiedLopM float64 `json:"qualified_lop_m"`
	LopVsRkapPct  float64 `json:"lop_vs_rkap_pct"`
	LopVsStgPct   float64 `json:"lop_vs_stg_pct"`
	QlopVsRkapPct float64 `json:"qualified_vs_rkap_pct"`
	QlopVsStgPct  float64 `json:"qualified_vs_stg_pct"`
	Year          *int    `json:"year,omitempty"`
}

// LopTargetsResponse GET /api/lop-targets 的响应结构
type LopTargetsResponse struct {
	Data    []LopTargetRow `json:"data"`
	HasData bool           `json:"hasData"`
	Year    int            `json:"year"`
}
