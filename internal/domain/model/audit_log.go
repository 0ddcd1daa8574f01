package model

import "time"

// 認証まわりの操作ログの種類。
type AuditAction string

const (
	AuditActionLogin           AuditAction = "LOGIN"
	AuditActionLogout          AuditAction = "LOGOUT"
	AuditActionTokenRefresh    AuditAction = "TOKEN_REFRESH"
	AuditActionPasswordReset   AuditAction = "PASSWORD_RESET"
	AuditActionAdminCreateUser AuditAction = "ADMIN_CREATE_USER"
)

// 監査ログ。「誰が」「何を」「いつ」行ったかを残す。
// パスワードやトークン本体は絶対に入れない。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作の主体。ADMIN_CREATE_USERなら管理者、それ以外は本人。
	ActorUserID string `gorm:"type:uuid;not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	//操作対象のユーザーID。本人操作ならactorと同じ。
	TargetUserID string `gorm:"type:uuid;not null;index" json:"target_user_id"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
