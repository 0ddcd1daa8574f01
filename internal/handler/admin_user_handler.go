package handler

import (
	"net/http"
	"strconv"
	"time"

	"userapi/internal/domain/model"
	"userapi/internal/middleware"
	"userapi/internal/repository"
	"userapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	adminUC *usecase.AdminUserUsecase
	audits  repository.AuditLogRepository
}

func NewAdminUserHandler(adminUC *usecase.AdminUserUsecase, audits repository.AuditLogRepository) *AdminUserHandler {
	return &AdminUserHandler{adminUC: adminUC, audits: audits}
}

func (h *AdminUserHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/users", h.CreateUser)
	g.GET("/audit-logs", h.ListAuditLogs)
}

// POST /admin/users（RequireAuth + RequireAdminの後段）
func (h *AdminUserHandler) CreateUser(c echo.Context) error {
	adminID, ok := c.Get(middleware.CtxUserIDKey).(string)
	if !ok || adminID == "" {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}

	var req usecase.AdminCreateUserRequest
	if err := c.Bind(&req); err != nil {
		return writeValidationError(c)
	}

	out, err := h.adminUC.CreateUser(c.Request().Context(), adminID, req)
	if err != nil {
		return writeUsecaseError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// GET /admin/audit-logs
func (h *AdminUserHandler) ListAuditLogs(c echo.Context) error {
	filter := repository.AuditLogFilter{}

	if v := c.QueryParam("actor_user_id"); v != "" {
		filter.ActorUserID = &v
	}
	if v := c.QueryParam("target_user_id"); v != "" {
		filter.TargetUserID = &v
	}
	if v := c.QueryParam("action"); v != "" {
		action := model.AuditAction(v)
		filter.Action = &action
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return writeValidationError(c)
		}
		filter.CreatedFrom = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return writeValidationError(c)
		}
		filter.CreatedTo = &t
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return writeValidationError(c)
		}
		filter.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return writeValidationError(c)
		}
		filter.Offset = n
	}

	logs, err := h.audits.List(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, logs)
}
