package model

import "time"

// 台帳に残すトークンの種類。アクセストークンはステートレスなので保存しない。
type TokenKind string

const (
	//リフレッシュトークン。subjectには署名済みトークン文字列そのものが入る。
	TokenKindRefresh TokenKind = "REFRESH"

	//パスワードリセット。subjectにはランダムなjtiが入る（署名済みトークンは保存しない）。
	TokenKindResetPassword TokenKind = "RESET_PASSWORD"

	//管理者作成アカウントの初期パスワード設定。仕組みはRESET_PASSWORDと同じ。
	TokenKindAdminSetPassword TokenKind = "ADMIN_SET_PASSWORD"
)

// リセット系のkindか。
func (k TokenKind) IsReset() bool {
	return k == TokenKindResetPassword || k == TokenKindAdminSetPassword
}

// トークン台帳の1行。(user, kind)ごとに最大1行（新規発行は既存行を置き換える）。
type Token struct {
	ID     string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string    `gorm:"type:uuid;not null;index:idx_tokens_user_kind" json:"user_id"`
	Kind   TokenKind `gorm:"type:varchar(32);not null;index:idx_tokens_user_kind" json:"kind"`

	// REFRESHならトークン文字列、リセット系ならjti。
	Subject string `gorm:"not null;uniqueIndex" json:"-"`

	// 期限。now < expires_at を厳密に要求する（過ぎた行は存在しない扱い）。
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	// リセット系のみ意味を持つ。verify成功でセット、consume成功でnilに戻す。
	VerifiedAt *time.Time `json:"verified_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// 期限切れか。
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
