package middleware

import (
	"net/http"
	"strings"

	"userapi/internal/domain/model"
	"userapi/internal/repository"
	"userapi/internal/token"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserKey     = "current_user" // *model.User
	CtxUserIDKey   = "user_id"      // string
	CtxUserRoleKey = "user_role"    // string（role未設定なら""）
)

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// RequireAuthはbearerアクセストークンを検証し、ユーザーをcontextへ載せる。
// ヘッダ不正はCodecを呼ぶ前に401。トークンが正しくてもユーザーが引けなければ401。
func RequireAuth(codec *token.Codec, users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			user, roleName, ok := resolveUser(c, codec, users, raw)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserKey, user)
			c.Set(CtxUserIDKey, user.ID)
			c.Set(CtxUserRoleKey, roleName)

			return next(c)
		}
	}
}

// OptionalAuthはRequireAuthと同じ手順を踏むが、失敗しても未認証のまま先へ進む。
func OptionalAuth(codec *token.Codec, users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return next(c)
			}

			user, roleName, ok := resolveUser(c, codec, users, raw)
			if !ok {
				return next(c)
			}

			c.Set(CtxUserKey, user)
			c.Set(CtxUserIDKey, user.ID)
			c.Set(CtxUserRoleKey, roleName)

			return next(c)
		}
	}
}

// RequireAdminはRequireAuthの後段で使う。ADMINロールだけ許可する。
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxUserRoleKey).(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			if role != model.RoleNameAdmin {
				return c.JSON(http.StatusForbidden, errorJSON("admin only"))
			}
			return next(c)
		}
	}
}

// Authorizationヘッダからbearerトークンを抜く。
func bearerToken(c echo.Context) (string, bool) {
	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		return "", false
	}

	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", false
	}

	return raw, true
}

// アクセストークンを検証してユーザーを引き直す。
func resolveUser(c echo.Context, codec *token.Codec, users repository.UserRepository, raw string) (*model.User, string, bool) {
	claims, err := codec.VerifyUserToken(token.KindAccess, raw)
	if err != nil {
		return nil, "", false
	}

	user, err := users.FindByID(c.Request().Context(), claims.Subject)
	if err != nil {
		return nil, "", false
	}
	if !user.IsActive() {
		return nil, "", false
	}

	roleName := ""
	if claims.Role != nil {
		roleName = *claims.Role
	}

	return user, roleName, true
}
