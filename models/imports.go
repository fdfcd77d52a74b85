package models

import "time"

// SourceDivision 上传文件所属的业务条线
type SourceDivision string

const (
	DivisionBIDDING   SourceDivision = "BIDDING"
	DivisionMSDC      SourceDivision = "MSDC"
	DivisionSALES     SourceDivision = "SALES"
	DivisionMARKETING SourceDivision = "MARKETING"
	DivisionOTHER     SourceDivision = "OTHER"
)

// Divisions 合法的业务条线集合
var Divisions = []SourceDivision{
	DivisionBIDDING,
	DivisionMSDC,
	DivisionSALES,
	DivisionMARKETING,
	DivisionOTHER,
}

// IsValidDivision 校验业务条线是否合法
func IsValidDivision(value string) bool {
	for _, d := range Divisions {
		if string(d) == value {
			return true
		}
	}
	return false
}

// ImportStatus 导入任务状态
// 创建后仅由外部ETL进程推进，看板侧不再修改
type ImportStatus string

const (
	ImportStatusQUEUED  ImportStatus = "QUEUED"
	ImportStatusRUNNING ImportStatus = "RUNNING"
	ImportStatusSUCCESS ImportStatus = "SUCCESS"
	ImportStatusFAILED  ImportStatus = "FAILED"
)

// ImportRecord 按租户隔离的文件导入记录
type ImportRecord struct {
	ID          string         `bson:"_id" json:"importId"`
	TenantID    string         `bson:"tenantId" json:"tenantId"`
	Division    SourceDivision `bson:"division" json:"division"`
	FileName    string         `bson:"fileName" json:"fileName"`
	StoragePath string         `bson:"storagePath" json:"storagePath"`
	Status      ImportStatus   `bson:"status" json:"status"`
	RowsIn      *int64         `bson:"rowsIn,omitempty" json:"rowsIn,omitempty"`
	RowsOut     *int64         `bson:"rowsOut,omitempty" json:"rowsOut,omitempty"`
	ErrorLog    string         `bson:"errorLog,omitempty" json:"errorLog,omitempty"`
	CreatedBy   string         `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
}
