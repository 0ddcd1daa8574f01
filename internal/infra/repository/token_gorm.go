package repository

import (
	"context"
	"errors"
	"time"

	"userapi/internal/domain/model"
	repo "userapi/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var resetKinds = []model.TokenKind{
	model.TokenKindResetPassword,
	model.TokenKindAdminSetPassword,
}

type tokenGormRepository struct {
	db *gorm.DB //DB接続（GORM）
}

// GORM実装
func NewTokenRepository(db *gorm.DB) repo.TokenRepository {
	return &tokenGormRepository{db: db}
}

// 既存のREFRESH行を消してから新しい行を入れる（置き換え書き込み）。
func (r *tokenGormRepository) StoreRefresh(ctx context.Context, userID string, token string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("user_id = ? AND kind = ?", userID, model.TokenKindRefresh).
			Delete(&model.Token{}).Error; err != nil {
			return err
		}

		row := &model.Token{
			ID:        uuid.NewString(),
			UserID:    userID,
			Kind:      model.TokenKindRefresh,
			Subject:   token,
			ExpiresAt: expiresAt,
		}

		return tx.Create(row).Error
	})
}

// トークン文字列で検索。期限切れは見つからない扱い。
func (r *tokenGormRepository) FindRefresh(ctx context.Context, token string) (*model.Token, error) {
	var row model.Token

	err := r.db.WithContext(ctx).
		Where("kind = ? AND subject = ? AND expires_at > ?",
			model.TokenKindRefresh, token, time.Now()).
		First(&row).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrTokenNotFound
		}
		return nil, err
	}

	return &row, nil
}

// 該当行を削除。行が無いのはエラーではない（logoutの冪等性）。
func (r *tokenGormRepository) InvalidateRefresh(ctx context.Context, token string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("kind = ? AND subject = ?", model.TokenKindRefresh, token).
		Delete(&model.Token{})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *tokenGormRepository) InvalidateAllRefresh(ctx context.Context, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, model.TokenKindRefresh).
		Delete(&model.Token{})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// リセット行の置き換え書き込み。verified_atもnilに戻る（新しい行なので）。
func (r *tokenGormRepository) StoreReset(ctx context.Context, userID string, kind model.TokenKind, jti string, expiresAt time.Time) error {
	if !kind.IsReset() {
		return errors.New("kind must be a reset kind")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("user_id = ? AND kind = ?", userID, kind).
			Delete(&model.Token{}).Error; err != nil {
			return err
		}

		row := &model.Token{
			ID:        uuid.NewString(),
			UserID:    userID,
			Kind:      kind,
			Subject:   jti,
			ExpiresAt: expiresAt,
		}

		return tx.Create(row).Error
	})
}

// jtiとuserIDの両方が一致する未期限の行だけ返す。
// 不一致の理由は呼び出し側に区別させない（列挙攻撃へのシグナルを渡さない）。
func (r *tokenGormRepository) FindAndVerifyReset(ctx context.Context, jti string, userID string) (*model.Token, error) {
	var row model.Token

	err := r.db.WithContext(ctx).
		Where("subject = ? AND user_id = ? AND kind IN ? AND expires_at > ?",
			jti, userID, resetKinds, time.Now()).
		First(&row).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrTokenNotFound
		}
		return nil, err
	}

	return &row, nil
}

// verified_atをセットする単一フィールド更新。
func (r *tokenGormRepository) MarkVerified(ctx context.Context, tokenID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Token{}).
		Where("id = ?", tokenID).
		Update("verified_at", &at)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrTokenNotFound
	}

	return nil
}

// verified_atをnilに戻し、同時に行を期限切れ扱いにする。
// consume済みの行はverifyでもconsumeでも二度と引っかからず、置き換えだけが可能になる。
func (r *tokenGormRepository) ClearVerification(ctx context.Context, tokenID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Token{}).
		Where("id = ?", tokenID).
		Updates(map[string]interface{}{
			"verified_at": gorm.Expr("NULL"),
			"expires_at":  time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrTokenNotFound
	}

	return nil
}

// 期限切れ行の掃除。意味的に死んだ行しか消さないので、他の操作と並行実行して安全。
func (r *tokenGormRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.Token{})

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
