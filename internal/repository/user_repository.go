package repository

import (
	"context"
	"errors"

	"userapi/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

// ユーザーの検索・作成・更新の約束。
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)

	//指定フィールドのみ部分更新する（パスワード変更などで使う）。
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error

	IsEmailTaken(ctx context.Context, email string) (bool, error)
}
