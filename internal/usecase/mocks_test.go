package usecase

import (
	"context"
	"time"

	"userapi/internal/domain/model"
	"userapi/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockUserRepository) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// =====================
// Mock: RoleRepository
// =====================

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id string) (*model.Role, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*model.Role)
	return r, args.Error(1)
}

func (m *MockRoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	args := m.Called(ctx, name)
	r, _ := args.Get(0).(*model.Role)
	return r, args.Error(1)
}

// =====================
// Mock: TokenRepository
// =====================

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) StoreRefresh(ctx context.Context, userID string, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockTokenRepository) FindRefresh(ctx context.Context, token string) (*model.Token, error) {
	args := m.Called(ctx, token)
	row, _ := args.Get(0).(*model.Token)
	return row, args.Error(1)
}

func (m *MockTokenRepository) InvalidateRefresh(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) InvalidateAllRefresh(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) StoreReset(ctx context.Context, userID string, kind model.TokenKind, jti string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, kind, jti, expiresAt)
	return args.Error(0)
}

func (m *MockTokenRepository) FindAndVerifyReset(ctx context.Context, jti string, userID string) (*model.Token, error) {
	args := m.Called(ctx, jti, userID)
	row, _ := args.Get(0).(*model.Token)
	return row, args.Error(1)
}

func (m *MockTokenRepository) MarkVerified(ctx context.Context, tokenID string, at time.Time) error {
	args := m.Called(ctx, tokenID, at)
	return args.Error(0)
}

func (m *MockTokenRepository) ClearVerification(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// =====================
// Mock: AuditLogRepository（best-effort呼び出しなので常に成功させる）
// =====================

type StubAuditLogRepository struct{}

func (s *StubAuditLogRepository) Create(ctx context.Context, log model.AuditLog) error {
	return nil
}

func (s *StubAuditLogRepository) List(ctx context.Context, filter repository.AuditLogFilter) ([]model.AuditLog, error) {
	return nil, nil
}

// =====================
// Mock: Mailer
// =====================

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, toEmail string, signedToken string, displayName string) error {
	args := m.Called(ctx, toEmail, signedToken, displayName)
	return args.Error(0)
}

func (m *MockMailer) SendAdminPasswordSet(ctx context.Context, user *model.User, signedToken string) error {
	args := m.Called(ctx, user, signedToken)
	return args.Error(0)
}

// =====================
// スタブ部品
// =====================

// すべて通すvalidator
type okValidator struct{}

func (okValidator) ValidateRegister(ctx context.Context, email string, password string, name string) error {
	return nil
}

func (okValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	return nil
}

func (okValidator) ValidateNewPassword(ctx context.Context, password string) error {
	return nil
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

type uuidGen struct{}

func (uuidGen) NewID() string {
	return uuid.NewString()
}
