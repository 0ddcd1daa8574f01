package repository

import (
	"context"
	"errors"

	"userapi/internal/domain/model"
)

var ErrRoleNotFound = errors.New("role not found")

// ロールの参照の約束。role名をトークンpayloadへ載せるための明示的なlookup。
type RoleRepository interface {
	FindByID(ctx context.Context, id string) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
}
