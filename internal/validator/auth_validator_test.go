package validator

import (
	"context"
	"testing"

	"userapi/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegister(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	//正常
	assert.NoError(t, v.ValidateRegister(ctx, "u1@example.com", "CorrectHorse1", "User One"))

	//必須欠け
	assert.ErrorIs(t, v.ValidateRegister(ctx, "", "CorrectHorse1", "User One"), usecase.ErrValidation)
	assert.ErrorIs(t, v.ValidateRegister(ctx, "u1@example.com", "", "User One"), usecase.ErrValidation)
	assert.ErrorIs(t, v.ValidateRegister(ctx, "u1@example.com", "CorrectHorse1", "  "), usecase.ErrValidation)

	//email形式
	assert.ErrorIs(t, v.ValidateRegister(ctx, "not-an-email", "CorrectHorse1", "User One"), usecase.ErrValidation)
}

func TestValidateLogin(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateLogin(ctx, "u1@example.com", "whatever"))

	//ログインは形式チェックしない。空だけ弾く。
	assert.NoError(t, v.ValidateLogin(ctx, "not-an-email", "whatever"))
	assert.ErrorIs(t, v.ValidateLogin(ctx, "", "whatever"), usecase.ErrValidation)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "u1@example.com", ""), usecase.ErrValidation)
}

func TestValidateNewPassword(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateNewPassword(ctx, "CorrectHorse1"))

	//短すぎ
	assert.ErrorIs(t, v.ValidateNewPassword(ctx, "short1"), usecase.ErrValidation)

	//よくある弱いパスワード（大文字小文字を区別しない）
	assert.ErrorIs(t, v.ValidateNewPassword(ctx, "password123"), usecase.ErrValidation)
	assert.ErrorIs(t, v.ValidateNewPassword(ctx, "PASSWORD123"), usecase.ErrValidation)
	assert.ErrorIs(t, v.ValidateNewPassword(ctx, "12345678"), usecase.ErrValidation)
}
