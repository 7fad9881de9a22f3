package middleware

import (
	"net/http"
	"strings"

	"github.com/boxline/boxline-backend/internal/service"
	"github.com/labstack/echo/v4"
)

const PrincipalContextKey = "principal"

type AuthMiddleware struct {
	auth service.AuthService
}

func NewAuthMiddleware(auth service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		tokenStr := strings.TrimPrefix(authz, "Bearer ")
		p, err := m.auth.ResolvePrincipal(c.Request().Context(), tokenStr)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		}
		c.Set(PrincipalContextKey, p)
		return next(c)
	}
}
