package model

import "time"

const (
	RoleNameUser  = "USER"
	RoleNameAdmin = "ADMIN"
)

// ロール。CRUDは対象外で、トークンpayloadにrole名を載せるためだけに持つ。
type Role struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
