package mailer

import (
	"context"

	"userapi/internal/domain/model"
)

// Mailerはメール送信の約束。usecaseはこのinterfaceにだけ依存する。
// 送信失敗はログに残した上で呼び出し元へ返す（握りつぶさない）。
type Mailer interface {
	//パスワードリセットの案内を送る。
	SendPasswordReset(ctx context.Context, toEmail string, signedToken string, displayName string) error

	//管理者作成アカウントへ初期パスワード設定の案内を送る。
	SendAdminPasswordSet(ctx context.Context, user *model.User, signedToken string) error
}
