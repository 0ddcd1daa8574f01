package repository

import (
	"context"
	"errors"
	"time"

	"userapi/internal/domain/model"
)

var ErrTokenNotFound = errors.New("token not found")

// トークン台帳の約束。書き込みは必ず(user, kind)単位の1行操作。
type TokenRepository interface {
	//同一ユーザーの既存REFRESH行を消してから新しい行を入れる。
	//ユーザーが同時に有効なリフレッシュトークンを2本持つことはない。
	StoreRefresh(ctx context.Context, userID string, token string, expiresAt time.Time) error

	//トークン文字列そのもので検索。期限切れ行は見つからない扱い。
	FindRefresh(ctx context.Context, token string) (*model.Token, error)

	//該当行を削除。行が無くてもエラーにしない（戻り値は削除したかどうか）。
	InvalidateRefresh(ctx context.Context, token string) (bool, error)

	//ユーザーのREFRESH行を全削除。
	InvalidateAllRefresh(ctx context.Context, userID string) (bool, error)

	//リセット系もREFRESHと同じ置き換え書き込み。(user, kind)ごとに1行。
	StoreReset(ctx context.Context, userID string, kind model.TokenKind, jti string, expiresAt time.Time) error

	//jtiとuserIDの両方が一致し、かつ未期限の行だけ返す。
	//「行が無い」「他人の行」「期限切れ」は区別せずErrTokenNotFound。
	FindAndVerifyReset(ctx context.Context, jti string, userID string) (*model.Token, error)

	//verified_atをセットする単一フィールド更新。
	MarkVerified(ctx context.Context, tokenID string, at time.Time) error

	//consume時に呼ぶ。verified_atを戻し、行を期限切れ扱いにする。
	//consume済みトークンは新しいforgotPasswordなしでは二度とverifyできない。
	ClearVerification(ctx context.Context, tokenID string) error

	//期限切れ行の掃除。どの操作とも並行実行して安全（消すのは死んだ行だけ）。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
