package server

import (
	"net/http"

	"userapi/internal/handler"
	"userapi/internal/middleware"
	"userapi/internal/repository"
	"userapi/internal/token"

	"github.com/labstack/echo/v4"
)

// ルート登録に必要な部品。
type RouteDeps struct {
	Codec *token.Codec
	Users repository.UserRepository

	AuthH  *handler.AuthHandler
	UserH  *handler.UserHandler
	AdminH *handler.AdminUserHandler
}

func RegisterRoutes(e *echo.Echo, deps RouteDeps) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	//認証不要
	authGroup := e.Group("/auth")
	deps.AuthH.RegisterRoutes(authGroup)

	//要認証
	me := e.Group("", middleware.RequireAuth(deps.Codec, deps.Users))
	deps.UserH.RegisterRoutes(me)

	//管理者のみ
	admin := e.Group("/admin",
		middleware.RequireAuth(deps.Codec, deps.Users),
		middleware.RequireAdmin(),
	)
	deps.AdminH.RegisterRoutes(admin)
}
