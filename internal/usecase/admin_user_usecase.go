package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"userapi/internal/domain/model"
	"userapi/internal/repository"
)

type AdminCreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	RoleName string `json:"role_name"`
}

type AdminCreateUserResponse struct {
	User UserDTO `json:"user"`
}

// 管理者によるユーザー作成。
// パスワードは発行せず、本人がADMIN_SET_PASSWORDトークンで設定するまで未確認のまま。
type AdminUserUsecase struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	audits repository.AuditLogRepository
	hasher PasswordHasher
	reset  *PasswordResetUsecase
	idGen  IDGenerator
	clock  Clock
}

func NewAdminUserUsecase(
	users repository.UserRepository,
	roles repository.RoleRepository,
	audits repository.AuditLogRepository,
	hasher PasswordHasher,
	reset *PasswordResetUsecase,
	idGen IDGenerator,
	clock Clock,
) *AdminUserUsecase {
	return &AdminUserUsecase{
		users:  users,
		roles:  roles,
		audits: audits,
		hasher: hasher,
		reset:  reset,
		idGen:  idGen,
		clock:  clock,
	}
}

func (u *AdminUserUsecase) CreateUser(ctx context.Context, adminID string, req AdminCreateUserRequest) (*AdminCreateUserResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Name == "" {
		return nil, ErrValidation
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrValidation
	}

	taken, err := u.users.IsEmailTaken(ctx, email)
	if err != nil {
		return nil, ErrInternal
	}
	if taken {
		return nil, ErrConflict
	}

	var roleID *string
	var roleName *string
	if req.RoleName != "" {
		role, err := u.roles.FindByName(ctx, req.RoleName)
		if err != nil {
			if errors.Is(err, repository.ErrRoleNotFound) {
				return nil, ErrValidation
			}
			return nil, ErrInternal
		}
		roleID = &role.ID
		roleName = &role.Name
	}

	//ログイン不能なプレースホルダを置く。本人のパスワード設定で上書きされる。
	placeholder, err := u.hasher.Hash(u.idGen.NewID())
	if err != nil {
		return nil, ErrInternal
	}

	user := &model.User{
		ID:          u.idGen.NewID(),
		Email:       email,
		Password:    placeholder,
		Name:        req.Name,
		RoleID:      roleID,
		IsVerified:  false,
		CreatedByID: &adminID,
	}

	if err := u.users.Create(ctx, user); err != nil {
		return nil, ErrConflict
	}

	//初期パスワード設定の案内。送信失敗はそのまま返す（作成自体は残る）。
	if err := u.reset.RequestAdminSetPassword(ctx, user); err != nil {
		return nil, err
	}

	_ = u.audits.Create(ctx, model.AuditLog{
		ActorUserID:  adminID,
		Action:       model.AuditActionAdminCreateUser,
		TargetUserID: user.ID,
		CreatedAt:    u.clock.Now(),
	})

	return &AdminCreateUserResponse{
		User: UserDTO{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			Role:       roleName,
			IsVerified: user.IsVerified,
		},
	}, nil
}
