package handler

import (
	"net/http"

	"userapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authUC  *usecase.AuthUsecase
	resetUC *usecase.PasswordResetUsecase
}

// DIコンストラクタ
func NewAuthHandler(authUC *usecase.AuthUsecase, resetUC *usecase.PasswordResetUsecase) *AuthHandler {
	return &AuthHandler{authUC: authUC, resetUC: resetUC}
}

func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/verify-reset-token", h.VerifyResetToken)
	g.POST("/reset-password", h.ResetPassword)
}

// POST /auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req usecase.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return writeValidationError(c)
	}

	out, err := h.authUC.Register(c.Request().Context(), req)
	if err != nil {
		return writeUsecaseError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req usecase.LoginRequest
	if err := c.Bind(&req); err != nil {
		return writeValidationError(c)
	}

	out, err := h.authUC.Login(c.Request().Context(), req)
	if err != nil {
		return writeUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// POST /auth/refresh
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return writeValidationError(c)
	}

	out, err := h.authUC.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return writeUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// POST /auth/logout（冪等：トークンが無効でも成功を返す）
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return writeValidationError(c)
	}

	out, err := h.authUC.Logout(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return writeUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// POST /auth/forgot-password（emailの有無で応答を変えない）
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req usecase.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return writeValidationError(c)
	}

	out, err := h.resetUC.ForgotPassword(c.Request().Context(), req.Email)
	if err != nil {
		return writeUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

type verifyResetTokenRequest struct {
	Token string `json:"token"`
}

// POST /auth/verify-reset-token
func (h *AuthHandler) VerifyResetToken(c echo.Context) error {
	var req verifyResetTokenRequest
	if err := c.Bind(&req); err != nil {
		return writeValidationError(c)
	}

	out, err := h.resetUC.VerifyResetToken(c.Request().Context(), req.Token)
	if err != nil {
		return writeUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req usecase.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return writeValidationError(c)
	}

	out, err := h.resetUC.ResetPassword(c.Request().Context(), req)
	if err != nil {
		return writeUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
