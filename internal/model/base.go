package model

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// IsDeleted reports whether the record carries a soft-delete timestamp.
func (b BaseModel) IsDeleted() bool {
	return b.DeletedAt.Valid
}

// Principal is the authenticated caller resolved from the bearer token.
type Principal struct {
	UserID uint
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == Admin
}
