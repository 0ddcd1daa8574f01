package main

import (
	"context"
	"time"

	"userapi/internal/config"
	"userapi/internal/domain/model"
	"userapi/internal/handler"
	"userapi/internal/infra/db"
	infraRepo "userapi/internal/infra/repository"
	"userapi/internal/mailer"
	"userapi/internal/repository"
	"userapi/internal/server"
	"userapi/internal/token"
	"userapi/internal/usecase"
	"userapi/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

// 期限切れ台帳行の掃除間隔
const cleanupInterval = time.Hour

func main() {
	//.envはあれば読む（本番では環境変数が直接入る）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Token{},
		&model.AuditLog{},
	); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserRepository(gormDB)
	roleRepo := infraRepo.NewRoleRepository(gormDB)
	tokenRepo := infraRepo.NewTokenRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	hasher := usecase.NewBcryptPasswordHasher(12)
	verifier := usecase.NewBcryptPasswordVerifier()
	authValidator := validator.NewAuthValidator()

	//トークンcodec（シークレットとTTLはConfigから注入）
	codec := token.NewCodec(cfg)

	//SMTPメーラー
	mail := mailer.NewSMTPMailer(cfg, logger)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(
		userRepo, roleRepo, tokenRepo, auditRepo,
		hasher, verifier, codec, authValidator, idGen, clock, logger,
	)
	resetUC := usecase.NewPasswordResetUsecase(
		userRepo, tokenRepo, auditRepo,
		codec, mail, hasher, authValidator, idGen, clock, logger,
	)
	adminUC := usecase.NewAdminUserUsecase(
		userRepo, roleRepo, auditRepo, hasher, resetUC, idGen, clock,
	)

	//Handler生成
	authH := handler.NewAuthHandler(authUC, resetUC)
	userH := handler.NewUserHandler(authUC)
	adminH := handler.NewAdminUserHandler(adminUC, auditRepo)

	//期限切れ行の定期掃除
	go runTokenCleanup(tokenRepo, logger)

	//Server起動
	e := server.New(cfg, logger, server.RouteDeps{
		Codec:  codec,
		Users:  userRepo,
		AuthH:  authH,
		UserH:  userH,
		AdminH: adminH,
	})

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.GoEnv == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// 死んだ行しか消さないので他の処理と競合しない。
func runTokenCleanup(tokens repository.TokenRepository, logger *zap.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		count, err := tokens.DeleteExpired(ctx, time.Now())
		cancel()

		if err != nil {
			logger.Warn("token cleanup failed", zap.Error(err))
			continue
		}
		if count > 0 {
			logger.Info("expired tokens removed", zap.Int64("count", count))
		}
	}
}
