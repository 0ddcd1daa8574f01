package usecase

import (
	"errors"
	"fmt"
)

// usecaseの境界で必ずこのエラー群へ畳む。
// 永続化や署名ライブラリの生エラーはここより外へ出さない。
var (
	//400 入力不正（パスワード不一致など）
	ErrValidation = errors.New("validation error")
	//401 認証失敗（資格情報不正・トークン不正/期限切れ/失効）
	ErrUnauthorized = errors.New("unauthorized")
	//403 権限なし
	ErrForbidden = errors.New("forbidden")
	//404 認可後にリソースが無い
	ErrNotFound = errors.New("not found")
	//409 重複登録
	ErrConflict = errors.New("conflict")
	//500
	ErrInternal = errors.New("internal error")
)

// トークン拒否はどの理由でも同じ文言を返す（攻撃者に失敗要因を教えない）。
const MsgInvalidOrExpiredToken = "invalid or expired token"

// forgotPasswordはヒット/ミスに関係なく常にこの文言（ユーザー列挙対策）。
const MsgResetRequested = "if the email exists, a password reset link has been sent"

// verifyを経ずにconsumeしようとした。分類はValidationだが文言はトークン拒否と同じにする。
var ErrTokenNotVerified = fmt.Errorf("%s: %w", MsgInvalidOrExpiredToken, ErrValidation)
