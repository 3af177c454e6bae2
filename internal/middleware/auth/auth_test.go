package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/ndtrung/vietshop/internal/token"
)

const testCookie = "session"

func doRequest(t *testing.T, mw echo.MiddlewareFunc, path string, cookie *http.Cookie) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return rec, h(c)
}

func TestSessionSetsClaims(t *testing.T) {
	codec := token.NewCodec([]byte("test_secret"), time.Hour)
	raw, err := codec.Issue(7, "mai@example.com", "Mai", "shop")
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: raw})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Session(codec, testCookie)(func(c echo.Context) error {
		claims, ok := Current(c)
		require.True(t, ok)
		require.Equal(t, uint(7), claims.UserID)
		require.Equal(t, "shop", claims.Role)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionInvalidTokenIsAnonymous(t *testing.T) {
	codec := token.NewCodec([]byte("test_secret"), time.Hour)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "garbage"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Session(codec, testCookie)(func(c echo.Context) error {
		_, ok := Current(c)
		require.False(t, ok)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireUser(t *testing.T) {
	_, err := doRequest(t, RequireUser(), "/api/cart", nil)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(CtxRole, "user")
	c.Set(CtxClaims, &token.Claims{UserID: 1, Role: "user"})

	h := RequireRole("shop", "admin")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)

	c.Set(CtxRole, "admin")
	require.NoError(t, h(c))
}

func TestGuardRedirectsProtectedWithoutCookie(t *testing.T) {
	g := DefaultGuard(testCookie)

	rec, err := doRequest(t, g.Middleware(), "/cart", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?next=%2Fcart", rec.Header().Get(echo.HeaderLocation))
}

func TestGuardPassesProtectedWithCookie(t *testing.T) {
	g := DefaultGuard(testCookie)

	// Presence is enough at the edge, the value is not verified here.
	rec, err := doRequest(t, g.Middleware(), "/orders", &http.Cookie{Name: testCookie, Value: "anything"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardBouncesAuthPagesWithCookie(t *testing.T) {
	g := DefaultGuard(testCookie)

	rec, err := doRequest(t, g.Middleware(), "/login", &http.Cookie{Name: testCookie, Value: "anything"})
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestGuardIgnoresPublicPaths(t *testing.T) {
	g := DefaultGuard(testCookie)

	rec, err := doRequest(t, g.Middleware(), "/products", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
}
