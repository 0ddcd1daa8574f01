package usecase

import (
	"context"
	"testing"
	"time"

	"userapi/internal/config"
	"userapi/internal/domain/model"
	"userapi/internal/repository"
	"userapi/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthUsecase(users *MockUserRepository, roles *MockRoleRepository, tokens *MockTokenRepository) (*AuthUsecase, *token.Codec) {
	codec := token.NewCodec(config.Config{JWTSecret: "test_secret"})

	uc := NewAuthUsecase(
		users, roles, tokens, &StubAuditLogRepository{},
		NewBcryptPasswordHasher(bcrypt.MinCost),
		NewBcryptPasswordVerifier(),
		codec, okValidator{}, uuidGen{}, fixedClock{t: time.Now()},
		zap.NewNop(),
	)
	return uc, codec
}

func hashOf(t *testing.T, plain string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(b)
}

func verifiedUser(t *testing.T, password string) *model.User {
	t.Helper()
	return &model.User{
		ID:         "user-1",
		Email:      "u1@example.com",
		Password:   hashOf(t, password),
		Name:       "User One",
		IsVerified: true,
	}
}

func TestLogin_Success(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	tokens := new(MockTokenRepository)
	uc, codec := newTestAuthUsecase(users, roles, tokens)

	user := verifiedUser(t, "CorrectHorse1")

	users.On("FindByEmail", mock.Anything, "u1@example.com").Return(user, nil)
	tokens.On("StoreRefresh", mock.Anything, "user-1", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.Login(context.Background(), LoginRequest{
		Email:    "u1@example.com",
		Password: "CorrectHorse1",
	})

	assert.NoError(t, err)
	assert.Equal(t, "user-1", out.User.ID)
	assert.Empty(t, out.User.Role)

	//返ったトークンはどちらも検証を通る
	accessClaims, err := codec.VerifyUserToken(token.KindAccess, out.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", accessClaims.Subject)

	refreshClaims, err := codec.VerifyUserToken(token.KindRefresh, out.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", refreshClaims.Subject)

	//REFRESH行の置き換え保存が行われている
	tokens.AssertCalled(t, "StoreRefresh", mock.Anything, "user-1", out.RefreshToken, mock.Anything)
}

func TestLogin_UnknownEmail(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	tokens := new(MockTokenRepository)
	uc, _ := newTestAuthUsecase(users, roles, tokens)

	users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := uc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever123",
	})

	assert.ErrorIs(t, err, ErrUnauthorized)
	tokens.AssertNotCalled(t, "StoreRefresh", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	tokens := new(MockTokenRepository)
	uc, _ := newTestAuthUsecase(users, roles, tokens)

	users.On("FindByEmail", mock.Anything, "u1@example.com").Return(verifiedUser(t, "CorrectHorse1"), nil)

	_, err := uc.Login(context.Background(), LoginRequest{
		Email:    "u1@example.com",
		Password: "WrongHorse99",
	})

	assert.ErrorIs(t, err, ErrUnauthorized)
	tokens.AssertNotCalled(t, "StoreRefresh", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_UnverifiedUser(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	tokens := new(MockTokenRepository)
	uc, _ := newTestAuthUsecase(users, roles, tokens)

	user := verifiedUser(t, "CorrectHorse1")
	user.IsVerified = false

	users.On("FindByEmail", mock.Anything, "u1@example.com").Return(user, nil)

	_, err := uc.Login(context.Background(), LoginRequest{
		Email:    "u1@example.com",
		Password: "CorrectHorse1",
	})

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_SuspendedUser(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	tokens := new(MockTokenRepository)
	uc, _ := newTestAuthUsecase(users, roles, tokens)

	user := verifiedUser(t, "CorrectHorse1")
	now := time.Now()
	user.SuspendedAt = &now

	users.On("FindByEmail", mock.Anything, "u1@example.com").Return(user, nil)

	_, err := uc.Login(context.Background(), LoginRequest{
		Email:    "u1@example.com",
		Password: "CorrectHorse1",
	})

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_ResolvesRoleName(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	tokens := new(MockTokenRepository)
	uc, codec := newTestAuthUsecase(users, roles, tokens)

	roleID := "role-1"
	user := verifiedUser(t, "CorrectHorse1")
	user.RoleID = &roleID

	users.On("FindByEmail", mock.Anything, "u1@example.com").Return(user, nil)
	roles.On("FindByID", mock.Anything, "role-1").Return(&model.Role{ID: "role-1", Name: "ADMIN"}, nil)
	tokens.On("StoreRefresh", mock.Anything, "user-1", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.Login(context.Background(), LoginRequest{
		Email:    "u1@example.com",
		Password: "CorrectHorse1",
	})

	assert.NoError(t, err)
	assert.Equal(t, "ADMIN", *out.User.Role)

	claims, err := codec.VerifyUserToken(token.KindAccess, out.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "ADMIN", *claims.Role)
}

func TestRefresh_Success(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	tokens := new(MockTokenRepository)
	uc, codec := newTestAuthUsecase(users, roles, tokens)

	user := verifiedUser(t, "CorrectHorse1")

	refreshToken, exp, err := codec.IssueUserToken(token.KindRefresh, token.UserPayload{
		UserID: user.ID, Email: user.Email, Name: user.Name,
	})
	assert.NoError(t, err)

	row := &model.Token{
		ID:        "row-1",
		UserID:    user.ID,
		Kind:      model.TokenKindRefresh,
		Subject:   refreshToken,
		ExpiresAt: exp,
	}

	tokens.On("FindRefresh", mock.Anything, refreshToken).Return(row, nil)
	users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	out, err := uc.Refresh(context.Background(), refreshToken)

	assert.NoError(t, err)
	claims, err := codec.VerifyUserToken(token.KindAccess, out.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)

	//このパスではリフレッシュトークンは回転しない
	tokens.AssertNotCalled(t, "StoreRefresh", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefresh_RevokedLedgerRow(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	tokens := new(MockTokenRepository)
	uc, codec := newTestAuthUsecase(users, roles, tokens)

	//署名は正しいが台帳から消えているトークンは拒否する
	refreshToken, _, err := codec.IssueUserToken(token.KindRefresh, token.UserPayload{UserID: "user-1"})
	assert.NoError(t, err)

	tokens.On("FindRefresh", mock.Anything, refreshToken).Return(nil, repository.ErrTokenNotFound)

	_, err = uc.Refresh(context.Background(), refreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefresh_TamperedToken(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	tokens := new(MockTokenRepository)
	uc, _ := newTestAuthUsecase(users, roles, tokens)

	_, err := uc.Refresh(context.Background(), "not.a.token")

	assert.ErrorIs(t, err, ErrUnauthorized)
	//署名検証で落ちたら台帳は見に行かない
	tokens.AssertNotCalled(t, "FindRefresh", mock.Anything, mock.Anything)
}

func TestRefresh_UserGone(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	tokens := new(MockTokenRepository)
	uc, codec := newTestAuthUsecase(users, roles, tokens)

	refreshToken, exp, err := codec.IssueUserToken(token.KindRefresh, token.UserPayload{UserID: "user-1"})
	assert.NoError(t, err)

	row := &model.Token{
		ID: "row-1", UserID: "user-1",
		Kind: model.TokenKindRefresh, Subject: refreshToken, ExpiresAt: exp,
	}

	tokens.On("FindRefresh", mock.Anything, refreshToken).Return(row, nil)
	users.On("FindByID", mock.Anything, "user-1").Return(nil, repository.ErrUserNotFound)

	_, err = uc.Refresh(context.Background(), refreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogout_Idempotent(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	tokens := new(MockTokenRepository)
	uc, _ := newTestAuthUsecase(users, roles, tokens)

	//行が無くても・そもそも発行されていなくても成功
	tokens.On("InvalidateRefresh", mock.Anything, "never-issued").Return(false, nil)

	out, err := uc.Logout(context.Background(), "never-issued")

	assert.NoError(t, err)
	assert.Equal(t, "logout success", out.Message)
}

func TestLogout_DeletesRow(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	tokens := new(MockTokenRepository)
	uc, codec := newTestAuthUsecase(users, roles, tokens)

	refreshToken, _, err := codec.IssueUserToken(token.KindRefresh, token.UserPayload{UserID: "user-1"})
	assert.NoError(t, err)

	tokens.On("InvalidateRefresh", mock.Anything, refreshToken).Return(true, nil)

	out, err := uc.Logout(context.Background(), refreshToken)

	assert.NoError(t, err)
	assert.Equal(t, "logout success", out.Message)
	tokens.AssertCalled(t, "InvalidateRefresh", mock.Anything, refreshToken)
}

func TestRegister_Success(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	tokens := new(MockTokenRepository)
	uc, _ := newTestAuthUsecase(users, roles, tokens)

	users.On("IsEmailTaken", mock.Anything, "new@example.com").Return(false, nil)
	roles.On("FindByName", mock.Anything, model.RoleNameUser).Return(nil, repository.ErrRoleNotFound)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.Register(context.Background(), RegisterRequest{
		Email:    "new@example.com",
		Password: "LongEnough123",
		Name:     "New User",
	})

	assert.NoError(t, err)
	assert.Equal(t, "new@example.com", out.User.Email)
	assert.True(t, out.User.IsVerified)

	//保存されるのはハッシュであって平文ではない
	created := users.Calls[1].Arguments.Get(1).(*model.User)
	assert.NotEqual(t, "LongEnough123", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("LongEnough123")))
}

func TestRegister_EmailTaken(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	tokens := new(MockTokenRepository)
	uc, _ := newTestAuthUsecase(users, roles, tokens)

	users.On("IsEmailTaken", mock.Anything, "dup@example.com").Return(true, nil)

	_, err := uc.Register(context.Background(), RegisterRequest{
		Email:    "dup@example.com",
		Password: "LongEnough123",
		Name:     "Dup",
	})

	assert.ErrorIs(t, err, ErrConflict)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
