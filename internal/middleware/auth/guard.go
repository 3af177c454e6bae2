package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// Guard is the edge gate over page-style routes. It only checks that the
// session cookie is present: verification and role checks happen deeper,
// so the edge stays free of crypto and DB work.
type Guard struct {
	CookieName string

	// Protected lists path prefixes that require a session cookie.
	Protected []string
	// AuthPages lists paths holders of a session cookie are bounced away
	// from (login, register).
	AuthPages []string

	LoginPath string
	HomePath  string
}

func DefaultGuard(cookieName string) *Guard {
	return &Guard{
		CookieName: cookieName,
		Protected:  []string{"/cart", "/checkout", "/orders", "/account", "/shop/manage", "/admin"},
		AuthPages:  []string{"/login", "/register"},
		LoginPath:  "/login",
		HomePath:   "/",
	}
}

func (g *Guard) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqPath := c.Request().URL.Path
			hasCookie := g.hasSessionCookie(c)

			for _, p := range g.AuthPages {
				if reqPath == p && hasCookie {
					return c.Redirect(http.StatusFound, g.HomePath)
				}
			}

			for _, prefix := range g.Protected {
				if !strings.HasPrefix(reqPath, prefix) {
					continue
				}
				if hasCookie {
					break
				}
				// Keep the original target so login can return the user.
				return c.Redirect(http.StatusFound,
					g.LoginPath+"?next="+url.QueryEscape(reqPath))
			}

			return next(c)
		}
	}
}

func (g *Guard) hasSessionCookie(c echo.Context) bool {
	cookie, err := c.Cookie(g.CookieName)
	return err == nil && cookie.Value != ""
}
