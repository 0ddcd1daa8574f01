package usecase

import (
	"context"
	"errors"

	"userapi/internal/domain/model"
	"userapi/internal/repository"
	"userapi/internal/token"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// API返却用のユーザー。パスワードは持たない。
type UserDTO struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Role       *string `json:"role"`
	IsVerified bool    `json:"is_verified"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type RegisterResponse struct {
	User UserDTO `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	User         UserDTO `json:"user"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    int     `json:"expires_in"`
}

type RefreshResult struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// ログイン・リフレッシュ・ログアウトを司るusecase。
type AuthUsecase struct {
	users     repository.UserRepository
	roles     repository.RoleRepository
	tokens    repository.TokenRepository
	audits    repository.AuditLogRepository
	hasher    PasswordHasher
	verifier  PasswordVerifier
	codec     *token.Codec
	validator AuthValidator
	idGen     IDGenerator
	clock     Clock
	logger    *zap.Logger
}

func NewAuthUsecase(
	users repository.UserRepository,
	roles repository.RoleRepository,
	tokens repository.TokenRepository,
	audits repository.AuditLogRepository,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	codec *token.Codec,
	validator AuthValidator,
	idGen IDGenerator,
	clock Clock,
	logger *zap.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		roles:     roles,
		tokens:    tokens,
		audits:    audits,
		hasher:    hasher,
		verifier:  verifier,
		codec:     codec,
		validator: validator,
		idGen:     idGen,
		clock:     clock,
		logger:    logger,
	}
}

// Registerは会員登録。emailの重複はErrConflict。
func (u *AuthUsecase) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if err := u.validator.ValidateRegister(ctx, req.Email, req.Password, req.Name); err != nil {
		return nil, err
	}

	taken, err := u.users.IsEmailTaken(ctx, req.Email)
	if err != nil {
		return nil, ErrInternal
	}
	if taken {
		return nil, ErrConflict
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	hashed, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, ErrInternal
	}

	//初期ロールはUSER。ロールテーブルが空ならロールなしで作る。
	var roleID *string
	role, err := u.roles.FindByName(ctx, model.RoleNameUser)
	if err == nil {
		roleID = &role.ID
	} else if !errors.Is(err, repository.ErrRoleNotFound) {
		return nil, ErrInternal
	}

	user := &model.User{
		ID:         u.idGen.NewID(),
		Email:      req.Email,
		Password:   hashed,
		Name:       req.Name,
		RoleID:     roleID,
		IsVerified: true,
	}

	if err := u.users.Create(ctx, user); err != nil {
		return nil, ErrConflict
	}

	dto, err := u.toUserDTO(ctx, user)
	if err != nil {
		return nil, ErrInternal
	}

	return &RegisterResponse{User: dto}, nil
}

// Loginは認証してaccess+refreshのペアを返す。
// 新しいREFRESH行が古い行を置き換えるので、前回のリフレッシュトークンはここで失効する。
func (u *AuthUsecase) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := u.validator.ValidateLogin(ctx, req.Email, req.Password); err != nil {
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, ErrInternal
	}

	//未確認・停止中は認証失敗と同じ扱い
	if !user.IsActive() {
		return nil, ErrUnauthorized
	}

	if ok := u.verifier.Verify(req.Password, user.Password); !ok {
		return nil, ErrUnauthorized
	}

	payload, err := u.buildPayload(ctx, user)
	if err != nil {
		return nil, ErrInternal
	}

	accessToken, accessExp, err := u.codec.IssueUserToken(token.KindAccess, payload)
	if err != nil {
		return nil, ErrInternal
	}

	refreshToken, refreshExp, err := u.codec.IssueUserToken(token.KindRefresh, payload)
	if err != nil {
		return nil, ErrInternal
	}

	//既存のREFRESH行を置き換えて保存
	if err := u.tokens.StoreRefresh(ctx, user.ID, refreshToken, refreshExp); err != nil {
		return nil, ErrInternal
	}

	now := u.clock.Now()
	_ = u.audits.Create(ctx, model.AuditLog{
		ActorUserID:  user.ID,
		Action:       model.AuditActionLogin,
		TargetUserID: user.ID,
		CreatedAt:    now,
	})

	dto, err := u.toUserDTO(ctx, user)
	if err != nil {
		return nil, ErrInternal
	}

	return &LoginResult{
		User:         dto,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
	}, nil
}

// Refreshは新しいアクセストークンだけを発行する。リフレッシュトークンは回転しない。
// 署名検証と台帳照合の両方が必須：署名が正しくても台帳から消えたトークンは拒否する。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	claims, err := u.codec.VerifyUserToken(token.KindRefresh, refreshToken)
	if err != nil {
		//期限切れか改ざんかはログにだけ残す。応答は同一。
		if errors.Is(err, jwt.ErrTokenExpired) {
			u.logger.Debug("refresh token expired")
		} else {
			u.logger.Debug("refresh token rejected")
		}
		return nil, ErrUnauthorized
	}

	row, err := u.tokens.FindRefresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, ErrInternal
	}

	if row.UserID != claims.Subject {
		return nil, ErrUnauthorized
	}

	//ユーザーを引き直す（発行後のロール変更を拾う）
	user, err := u.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if !user.IsActive() {
		return nil, ErrUnauthorized
	}

	payload, err := u.buildPayload(ctx, user)
	if err != nil {
		return nil, ErrInternal
	}

	accessToken, accessExp, err := u.codec.IssueUserToken(token.KindAccess, payload)
	if err != nil {
		return nil, ErrInternal
	}

	now := u.clock.Now()
	_ = u.audits.Create(ctx, model.AuditLog{
		ActorUserID:  user.ID,
		Action:       model.AuditActionTokenRefresh,
		TargetUserID: user.ID,
		CreatedAt:    now,
	})

	return &RefreshResult{
		AccessToken: accessToken,
		ExpiresIn:   int(accessExp.Sub(now).Seconds()),
	}, nil
}

// Logoutは該当行のbest-effort削除。行が無くても成功を返す（冪等）。
func (u *AuthUsecase) Logout(ctx context.Context, refreshToken string) (*SuccessResponse, error) {
	deleted, err := u.tokens.InvalidateRefresh(ctx, refreshToken)
	if err != nil {
		return nil, ErrInternal
	}

	if deleted {
		//監査用にuserを引けるときだけ残す
		if claims, verr := u.codec.VerifyUserToken(token.KindRefresh, refreshToken); verr == nil {
			_ = u.audits.Create(ctx, model.AuditLog{
				ActorUserID:  claims.Subject,
				Action:       model.AuditActionLogout,
				TargetUserID: claims.Subject,
				CreatedAt:    u.clock.Now(),
			})
		}
	}

	return &SuccessResponse{Message: "logout success"}, nil
}

// Meは認証済みユーザー自身を返す。
func (u *AuthUsecase) Me(ctx context.Context, userID string) (*UserDTO, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	dto, err := u.toUserDTO(ctx, user)
	if err != nil {
		return nil, ErrInternal
	}

	return &dto, nil
}

// トークンpayloadを組み立てる。role名は都度lookupする。
func (u *AuthUsecase) buildPayload(ctx context.Context, user *model.User) (token.UserPayload, error) {
	roleName, err := u.resolveRoleName(ctx, user)
	if err != nil {
		return token.UserPayload{}, err
	}

	return token.UserPayload{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		RoleName: roleName,
	}, nil
}

func (u *AuthUsecase) resolveRoleName(ctx context.Context, user *model.User) (*string, error) {
	if user.RoleID == nil {
		return nil, nil
	}

	role, err := u.roles.FindByID(ctx, *user.RoleID)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &role.Name, nil
}

func (u *AuthUsecase) toUserDTO(ctx context.Context, user *model.User) (UserDTO, error) {
	roleName, err := u.resolveRoleName(ctx, user)
	if err != nil {
		return UserDTO{}, err
	}

	return UserDTO{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       roleName,
		IsVerified: user.IsVerified,
	}, nil
}
