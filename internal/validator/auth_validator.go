package validator

import (
	"context"
	"net/mail"
	"strings"

	"userapi/internal/usecase"
)

// パスワード最低文字数
const minPasswordLen = 8

type authValidator struct{}

// UsecaseはinterfaceでDIする
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// 会員登録の入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, email string, password string, name string) error {
	email = strings.TrimSpace(email)

	//必須チェック
	if email == "" || password == "" || strings.TrimSpace(name) == "" {
		return usecase.ErrValidation
	}

	//email形式
	if !isEmailLike(email) {
		return usecase.ErrValidation
	}

	return v.ValidateNewPassword(ctx, password)
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return usecase.ErrValidation
	}
	return nil
}

// 新しいパスワードの強度を検証（登録・リセット共通）
func (v *authValidator) ValidateNewPassword(ctx context.Context, password string) error {
	if len(password) < minPasswordLen {
		return usecase.ErrValidation
	}
	if isWeakPassword(password) {
		return usecase.ErrValidation
	}
	return nil
}

func isEmailLike(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// よくある弱いパスワードの拒否
func isWeakPassword(password string) bool {
	normalized := strings.ToLower(strings.TrimSpace(password))

	weak := map[string]struct{}{
		"password":    {},
		"password123": {},
		"12345678":    {},
		"123456789":   {},
		"1234567890":  {},
		"qwertyuiop":  {},
		"letmein1":    {},
		"admin123":    {},
	}

	_, ok := weak[normalized]
	return ok
}
