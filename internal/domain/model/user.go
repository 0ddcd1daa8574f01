package model

import (
	"time"

	"gorm.io/gorm"
)

// ユーザー本体。パスワードはハッシュのみ保存（平文・ログ出力は禁止）。
type User struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Name     string `gorm:"not null" json:"name"`

	// roleは単純な外部キー。必要なときだけ明示的に引く（オブジェクトグラフは持たない）。
	RoleID *string `gorm:"type:uuid" json:"role_id"`

	// メール確認済みフラグ。管理者作成アカウントはパスワード設定完了までfalse。
	IsVerified bool `gorm:"not null;default:false" json:"is_verified"`

	// 停止時刻。nilなら有効。
	SuspendedAt *time.Time `json:"suspended_at"`

	// 作成した管理者のID（自己参照FK、nullable）。
	CreatedByID *string `gorm:"type:uuid" json:"created_by_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ログイン・トークン利用が許可される状態か。
func (u *User) IsActive() bool {
	return u.IsVerified && u.SuspendedAt == nil
}
