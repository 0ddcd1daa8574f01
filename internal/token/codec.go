package token

import (
	"errors"
	"fmt"
	"time"

	"userapi/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 署名対象のトークン種別。台帳のkindと同じ名前を使う。
type Kind string

const (
	KindAccess           Kind = "ACCESS"
	KindRefresh          Kind = "REFRESH"
	KindResetPassword    Kind = "RESET_PASSWORD"
	KindAdminSetPassword Kind = "ADMIN_SET_PASSWORD"
)

// 署名不正・期限切れ・種別違いはすべてこのエラーに畳む。
// 期限切れかどうかはerrors.Is(err, jwt.ErrTokenExpired)でログ用にだけ見分けられる。
var ErrInvalidToken = errors.New("invalid token")

// アクセス/リフレッシュトークンに載せるユーザー情報。
type UserPayload struct {
	UserID   string
	Email    string
	Name     string
	RoleName *string
}

type UserClaims struct {
	Email string  `json:"email"`
	Name  string  `json:"name"`
	Role  *string `json:"role"`
	Kind  Kind    `json:"kind"`
	jwt.RegisteredClaims
}

// リセットトークンのclaims。IDフィールドがjti、Subjectがユーザー ID。
// 署名済みトークン自体はDBに置かず、jtiだけを台帳に残す。
type ResetClaims struct {
	Kind Kind `json:"kind"`
	jwt.RegisteredClaims
}

// Codecはトークンの発行と検証だけを行う。I/Oも永続化も持たない。
type Codec struct {
	secret        []byte
	refreshSecret []byte

	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
}

// NewCodecはConfigからCodecを組み立てる。
// ACCESSとリセット系は共通シークレット、REFRESHは専用（未設定なら共通にフォールバック）。
func NewCodec(cfg config.Config) *Codec {
	c := &Codec{
		secret:        []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		resetTTL:      cfg.ResetTokenTTL,
	}

	if len(c.refreshSecret) == 0 {
		c.refreshSecret = c.secret
	}
	if c.accessTTL == 0 {
		c.accessTTL = config.DefaultAccessTokenTTL
	}
	if c.refreshTTL == 0 {
		c.refreshTTL = config.DefaultRefreshTokenTTL
	}
	if c.resetTTL == 0 {
		c.resetTTL = config.DefaultResetTokenTTL
	}

	return c
}

// kindごとの署名シークレット。
func (c *Codec) secretFor(kind Kind) []byte {
	if kind == KindRefresh {
		return c.refreshSecret
	}
	return c.secret
}

func (c *Codec) ttlFor(kind Kind) time.Duration {
	switch kind {
	case KindRefresh:
		return c.refreshTTL
	case KindResetPassword, KindAdminSetPassword:
		return c.resetTTL
	default:
		return c.accessTTL
	}
}

// IssueUserTokenはアクセス/リフレッシュトークンを発行する。
func (c *Codec) IssueUserToken(kind Kind, p UserPayload) (string, time.Time, error) {
	if kind != KindAccess && kind != KindRefresh {
		return "", time.Time{}, fmt.Errorf("kind %s is not a user token kind", kind)
	}

	now := time.Now()
	expiresAt := now.Add(c.ttlFor(kind))

	//jtiを必ず入れる。同一secondに発行しても同じトークン文字列にはならない。
	claims := UserClaims{
		Email: p.Email,
		Name:  p.Name,
		Role:  p.RoleName,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secretFor(kind))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// IssueResetTokenはリセット系トークンを発行する。payloadはjti+ユーザーID。
func (c *Codec) IssueResetToken(kind Kind, jti string, userID string) (string, time.Time, error) {
	if kind != KindResetPassword && kind != KindAdminSetPassword {
		return "", time.Time{}, fmt.Errorf("kind %s is not a reset token kind", kind)
	}

	now := time.Now()
	expiresAt := now.Add(c.ttlFor(kind))

	claims := ResetClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secretFor(kind))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// VerifyUserTokenは署名・期限・種別を検証してclaimsを返す。
// どの理由で落ちてもErrInvalidToken（呼び出し側へ失敗理由を渡さない）。
func (c *Codec) VerifyUserToken(kind Kind, signed string) (*UserClaims, error) {
	var claims UserClaims

	tok, err := jwt.ParseWithClaims(signed, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secretFor(kind), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid || claims.Kind != kind || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}

// VerifyResetTokenはリセット系トークンを検証する。どちらのリセットkindも受ける。
func (c *Codec) VerifyResetToken(signed string) (*ResetClaims, error) {
	var claims ResetClaims

	tok, err := jwt.ParseWithClaims(signed, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.Kind != KindResetPassword && claims.Kind != KindAdminSetPassword {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}

// RefreshTTLはリフレッシュトークンの有効期間。台帳のexpires_atに使う。
func (c *Codec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// AccessTTLはアクセストークンの有効期間。レスポンスのexpires_inに使う。
func (c *Codec) AccessTTL() time.Duration {
	return c.accessTTL
}
