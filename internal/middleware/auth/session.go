package auth

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/ndtrung/vietshop/internal/token"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxClaims = "claims"
)

// Session resolves the session cookie into claims on the request context.
// Requests without a valid token pass through as anonymous; handlers and
// the Require* middlewares decide what that means for them.
func Session(codec *token.Codec, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err == nil && cookie.Value != "" {
				if claims, ok := codec.Verify(cookie.Value); ok {
					c.Set(CtxUserID, claims.UserID)
					c.Set(CtxRole, claims.Role)
					c.Set(CtxClaims, claims)
				}
			}
			return next(c)
		}
	}
}

func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get(CtxClaims).(*token.Claims); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

func RequireRole(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !slices.Contains(required, role) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
			}
			return next(c)
		}
	}
}

// Current returns the verified session claims, if any.
func Current(c echo.Context) (*token.Claims, bool) {
	claims, ok := c.Get(CtxClaims).(*token.Claims)
	return claims, ok
}
