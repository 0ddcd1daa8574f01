package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// トークンTTLのデフォルト。envで上書きできる。
const (
	DefaultAccessTokenTTL  = 24 * time.Hour
	DefaultRefreshTokenTTL = 90 * 24 * time.Hour
	DefaultResetTokenTTL   = time.Hour
)

// Configはアプリ全体の設定。
// 起動時に一度だけ組み立てて、codec・DB・mailerへ注入する（グローバルは持たない）。
type Config struct {
	Port string // サーバーポート

	DatabaseURL      string // 設定されていればこちらを優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト
	PostgresPort     int    // DBポート
	PostgresSSLMode  string // sslmode

	JWTSecret        string // アクセス/リセットトークン共通の署名シークレット
	JWTRefreshSecret string // リフレッシュ用（未設定ならJWTSecretを使う）

	AccessTokenTTL  time.Duration // アクセストークンの有効期限
	RefreshTokenTTL time.Duration // リフレッシュトークンの有効期限
	ResetTokenTTL   time.Duration // リセットトークンの有効期限

	SMTPHost     string // SMTPホスト
	SMTPPort     int    // SMTPポート
	SMTPUsername string // SMTP認証ユーザー
	SMTPPassword string // SMTP認証パスワード
	MailFrom     string // 送信元アドレス

	GoEnv string // dev/prod
	FEURL string // フロントURL（リセットリンクとCORSで使う）
}

// Loadは環境変数からConfigを組み立てる。
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getenv("MAIL_FROM", "no-reply@localhost"),

		GoEnv: getenv("GO_ENV", "dev"),
		FEURL: os.Getenv("FE_URL"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.FEURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
	}

	// DATABASE_URLが無ければ個別のPOSTGRES_*が必須
	if cfg.DatabaseURL == "" {
		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
		if cfg.PostgresHost == "" {
			return Config{}, fmt.Errorf("POSTGRES_HOST is required")
		}

		pgPort, err := mustAtoi("POSTGRES_PORT")
		if err != nil {
			return Config{}, err
		}
		cfg.PostgresPort = pgPort
	}

	var err error
	cfg.AccessTokenTTL, err = ttlFromEnv("ACCESS_TOKEN_TTL", DefaultAccessTokenTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.RefreshTokenTTL, err = ttlFromEnv("REFRESH_TOKEN_TTL", DefaultRefreshTokenTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.ResetTokenTTL, err = ttlFromEnv("RESET_TOKEN_TTL", DefaultResetTokenTTL)
	if err != nil {
		return Config{}, err
	}

	cfg.SMTPPort, err = intFromEnv("SMTP_PORT", 587)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func intFromEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

// "24h"のようなGoのduration表記で上書きできる。
func ttlFromEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
