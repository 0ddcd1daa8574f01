package handler

import (
	"errors"
	"net/http"

	"userapi/internal/usecase"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

// usecaseのエラー分類をHTTPステータスへ写す。ここ以外で変換しない。
func writeUsecaseError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrTokenNotVerified):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: usecase.MsgInvalidOrExpiredToken})
	case errors.Is(err, usecase.ErrValidation):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "validation error"})
	case errors.Is(err, usecase.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: usecase.MsgInvalidOrExpiredToken})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorResponse{Error: "forbidden"})
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, usecase.ErrConflict):
		return c.JSON(http.StatusConflict, errorResponse{Error: "conflict"})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeValidationError(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: "validation error"})
}
