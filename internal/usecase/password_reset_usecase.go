package usecase

import (
	"context"
	"errors"
	"strings"

	"userapi/internal/domain/model"
	"userapi/internal/mailer"
	"userapi/internal/repository"
	"userapi/internal/token"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// パスワードリセットの3段階（request → verify → consume）を司るusecase。
type PasswordResetUsecase struct {
	users     repository.UserRepository
	tokens    repository.TokenRepository
	audits    repository.AuditLogRepository
	codec     *token.Codec
	mail      mailer.Mailer
	hasher    PasswordHasher
	validator AuthValidator
	idGen     IDGenerator
	clock     Clock
	logger    *zap.Logger
}

func NewPasswordResetUsecase(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	audits repository.AuditLogRepository,
	codec *token.Codec,
	mail mailer.Mailer,
	hasher PasswordHasher,
	validator AuthValidator,
	idGen IDGenerator,
	clock Clock,
	logger *zap.Logger,
) *PasswordResetUsecase {
	return &PasswordResetUsecase{
		users:     users,
		tokens:    tokens,
		audits:    audits,
		codec:     codec,
		mail:      mail,
		hasher:    hasher,
		validator: validator,
		idGen:     idGen,
		clock:     clock,
		logger:    logger,
	}
}

// ForgotPasswordはリセットを受け付ける。
// emailの有無・確認状態に関係なく常に同じ文言を返す（ユーザー列挙対策）。
// メールを送るのは「存在して確認済み」のユーザーだけ。
func (u *PasswordResetUsecase) ForgotPassword(ctx context.Context, email string) (*SuccessResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrValidation
	}

	generic := &SuccessResponse{Message: MsgResetRequested}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return generic, nil
		}
		return nil, ErrInternal
	}

	if !user.IsActive() {
		return generic, nil
	}

	//jtiだけを台帳へ残す。署名済みトークンはDBに置かない。
	jti := u.idGen.NewID()

	signed, expiresAt, err := u.codec.IssueResetToken(token.KindResetPassword, jti, user.ID)
	if err != nil {
		return nil, ErrInternal
	}

	//既存のリセット行を置き換える。verified_atも初期化される。
	if err := u.tokens.StoreReset(ctx, user.ID, model.TokenKindResetPassword, jti, expiresAt); err != nil {
		return nil, ErrInternal
	}

	//送信失敗はログに残して呼び出し元へ返す（握りつぶさない）
	if err := u.mail.SendPasswordReset(ctx, user.Email, signed, user.Name); err != nil {
		u.logger.Error("password reset mail failed", zap.Error(err))
		return nil, ErrInternal
	}

	return generic, nil
}

// RequestAdminSetPasswordは管理者作成アカウントへ初期パスワード設定の案内を送る。
// kindが違うだけで、verify/consumeはリセットと同じ状態機械に乗る。
func (u *PasswordResetUsecase) RequestAdminSetPassword(ctx context.Context, user *model.User) error {
	jti := u.idGen.NewID()

	signed, expiresAt, err := u.codec.IssueResetToken(token.KindAdminSetPassword, jti, user.ID)
	if err != nil {
		return ErrInternal
	}

	if err := u.tokens.StoreReset(ctx, user.ID, model.TokenKindAdminSetPassword, jti, expiresAt); err != nil {
		return ErrInternal
	}

	if err := u.mail.SendAdminPasswordSet(ctx, user, signed); err != nil {
		u.logger.Error("admin set-password mail failed", zap.Error(err))
		return ErrInternal
	}

	return nil
}

// VerifyResetTokenは第2段階。署名検証と台帳照合の両方を通ったらverified_atを立てる。
func (u *PasswordResetUsecase) VerifyResetToken(ctx context.Context, signedToken string) (*SuccessResponse, error) {
	claims, err := u.codec.VerifyResetToken(signedToken)
	if err != nil {
		//失敗理由はログにだけ残す。応答は同一。
		if errors.Is(err, jwt.ErrTokenExpired) {
			u.logger.Debug("reset token expired")
		} else {
			u.logger.Debug("reset token rejected")
		}
		return nil, ErrUnauthorized
	}

	row, err := u.tokens.FindAndVerifyReset(ctx, claims.ID, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, ErrInternal
	}

	if err := u.tokens.MarkVerified(ctx, row.ID, u.clock.Now()); err != nil {
		return nil, ErrInternal
	}

	return &SuccessResponse{Message: "token verified"}, nil
}

// ResetPasswordは第3段階。verify済み（verified_atが立っている）でなければ失敗する。
// 成功時はverified_atを必ずnilへ戻す。consume済みトークンの再利用はここで止まる。
func (u *PasswordResetUsecase) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*SuccessResponse, error) {
	if req.NewPassword != req.ConfirmPassword {
		return nil, ErrValidation
	}
	if err := u.validator.ValidateNewPassword(ctx, req.NewPassword); err != nil {
		return nil, err
	}

	claims, err := u.codec.VerifyResetToken(req.Token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	row, err := u.tokens.FindAndVerifyReset(ctx, claims.ID, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, ErrInternal
	}

	//verifyを経ていない行ではconsumeできない
	if row.VerifiedAt == nil {
		return nil, ErrTokenNotVerified
	}

	hashed, err := u.hasher.Hash(req.NewPassword)
	if err != nil {
		return nil, ErrInternal
	}

	fields := map[string]interface{}{"password": hashed}

	//管理者作成アカウントはここで有効化される
	if row.Kind == model.TokenKindAdminSetPassword {
		fields["is_verified"] = true
	}

	if err := u.users.UpdateFields(ctx, claims.Subject, fields); err != nil {
		return nil, ErrInternal
	}

	//verified_atは無条件で戻す。戻せないと再利用の芽が残るのでエラーにする。
	if err := u.tokens.ClearVerification(ctx, row.ID); err != nil {
		return nil, ErrInternal
	}

	//パスワードが変わったので既存セッションも落とす
	if _, err := u.tokens.InvalidateAllRefresh(ctx, claims.Subject); err != nil {
		u.logger.Warn("failed to invalidate refresh tokens after password reset", zap.Error(err))
	}

	_ = u.audits.Create(ctx, model.AuditLog{
		ActorUserID:  claims.Subject,
		Action:       model.AuditActionPasswordReset,
		TargetUserID: claims.Subject,
		CreatedAt:    u.clock.Now(),
	})

	return &SuccessResponse{Message: "password updated"}, nil
}
