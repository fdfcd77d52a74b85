package models

import "time"

// OperationLog API操作日志，记录所有写操作供审计
type OperationLog struct {
	Method       string      `bson:"method" json:"method"`
	Path         string      `bson:"path" json:"path"`
	OperatorID   string      `bson:"operatorId" json:"operatorId"`
	OperatorName string      `bson:"operatorName" json:"operatorName"`
	TenantID     string      `bson:"tenantId" json:"tenantId"`
	RequestBody  interface{} `bson:"requestBody,omitempty" json:"requestBody,omitempty"`
	StatusCode   int         `bson:"statusCode" json:"statusCode"`
	ResponseMs   int64       `bson:"responseMs" json:"responseMs"`
	CreatedAt    time.Time   `bson:"createdAt" json:"createdAt"`
}
