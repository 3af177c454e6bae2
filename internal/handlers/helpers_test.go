package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ndtrung/vietshop/internal/config"
	"github.com/ndtrung/vietshop/internal/hash"
	mwauth "github.com/ndtrung/vietshop/internal/middleware/auth"
	"github.com/ndtrung/vietshop/internal/models"
	"github.com/ndtrung/vietshop/internal/ratelimit"
	"github.com/ndtrung/vietshop/internal/token"
)

type testEnv struct {
	T     *testing.T
	E     *echo.Echo
	DB    *gorm.DB
	Codec *token.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	return &testEnv{
		T:     t,
		E:     echo.New(),
		DB:    db,
		Codec: token.NewCodec([]byte("test_secret"), time.Hour),
	}
}

func (env *testEnv) newLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

func (env *testEnv) seedUser(email, role string) *models.User {
	env.T.Helper()

	pwHash, err := hash.HashPassword("test_password")
	require.NoError(env.T, err)

	user := models.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: pwHash,
		Role:         role,
	}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return &user
}

func (env *testEnv) seedProduct(name string, price float64) *models.Product {
	env.T.Helper()

	p := models.Product{Name: name, Description: "seeded", Price: price, Count: 100}
	require.NoError(env.T, env.DB.Create(&p).Error)
	return &p
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

// asUser attaches verified-session claims the way the session middleware
// would after decoding the cookie.
func (env *testEnv) asUser(c echo.Context, user *models.User) {
	c.Set(mwauth.CtxUserID, user.ID)
	c.Set(mwauth.CtxRole, user.Role)
	c.Set(mwauth.CtxClaims, &token.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	})
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %v", err)
	return he.Code
}

func (env *testEnv) cartCount(userID uint) int64 {
	env.T.Helper()
	var n int64
	require.NoError(env.T, env.DB.Model(&models.CartItem{}).
		Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func uintPtr(v uint) *uint { return &v }
