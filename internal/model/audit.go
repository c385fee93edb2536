package model

import (
	"time"

	"gorm.io/datatypes"
)

type AuditOperation string

const (
	AuditCreate AuditOperation = "create"
	AuditUpdate AuditOperation = "update"
	AuditDelete AuditOperation = "delete"
)

// AuditLog is append-only.
type AuditLog struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	AffectedTable string         `gorm:"size:64;index;not null" json:"affectedTable"`
	RowID         uint           `gorm:"index;not null" json:"rowId"`
	Operation     AuditOperation `gorm:"size:10;not null" json:"operation"`
	UserID        *uint          `gorm:"index" json:"userId,omitempty"`
	Before        datatypes.JSON `json:"before,omitempty"`
	After         datatypes.JSON `json:"after,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
