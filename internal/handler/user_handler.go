package handler

import (
	"net/http"

	"userapi/internal/middleware"
	"userapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	authUC *usecase.AuthUsecase
}

func NewUserHandler(authUC *usecase.AuthUsecase) *UserHandler {
	return &UserHandler{authUC: authUC}
}

func (h *UserHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/me", h.Me)
}

// GET /me（RequireAuthの後段）
func (h *UserHandler) Me(c echo.Context) error {
	userID, ok := c.Get(middleware.CtxUserIDKey).(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}

	out, err := h.authUC.Me(c.Request().Context(), userID)
	if err != nil {
		return writeUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
