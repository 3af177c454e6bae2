package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ndtrung/vietshop/internal/hash"
	"github.com/ndtrung/vietshop/internal/i18n"
	"github.com/ndtrung/vietshop/internal/logging"
	mwauth "github.com/ndtrung/vietshop/internal/middleware/auth"
	"github.com/ndtrung/vietshop/internal/models"
	"github.com/ndtrung/vietshop/internal/mykafka"
	"github.com/ndtrung/vietshop/internal/ratelimit"
	"github.com/ndtrung/vietshop/internal/storage"
	"github.com/ndtrung/vietshop/internal/token"
)

const (
	loginMaxAttempts    = 10
	registerMaxAttempts = 5
	authWindow          = 15 * time.Minute
)

type AuthHandler struct {
	DB            *gorm.DB
	Codec         *token.Codec
	CookieName    string
	SecureCookies bool
	Limiter       *ratelimit.Limiter
	Producer      *mykafka.Producer
	Store         *storage.Client
}

func (h *AuthHandler) issueSession(c echo.Context, user *models.User) error {
	tok, err := h.Codec.Issue(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return err
	}
	c.SetCookie(CreateCookie(h.CookieName, tok, "/", time.Now().Add(h.Codec.TTL), h.SecureCookies))
	return nil
}

func (h *AuthHandler) limited(c echo.Context, bucket string, max int) bool {
	if h.Limiter == nil {
		return false
	}
	return h.Limiter.Limited(c.RealIP(), bucket, max, authWindow)
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (r *registerRequest) validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return errors.New("valid email is required")
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

func (h *AuthHandler) register(c echo.Context, req registerRequest) (*models.User, error) {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth_register")

	if err := req.validate(); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash the password", "error", err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var userCheck models.User
	if err := h.DB.Where("email = ?", req.Email).First(&userCheck).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			l.Error("register_failed", "reason", "db_error", "error", err)
			return nil, echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	} else {
		l.Warn("register_failed", "reason", "user_exists")
		return nil, echo.NewHTTPError(http.StatusConflict, "user already exists")
	}

	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		l.Error("register_failed", "reason", "db_error", "error", err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	return &user, nil
}

func (h *AuthHandler) Register(c echo.Context) error {
	if h.limited(c, "register", registerMaxAttempts) {
		return echo.NewHTTPError(http.StatusTooManyRequests, i18n.T(i18n.Lang(c), "too_many_attempts"))
	}

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.register(c, req)
	if err != nil {
		return err
	}
	if err := h.issueSession(c, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusCreated, user)
}

// RegisterShop registers the account and files a shop request in one
// step. The shop itself only exists after an admin approves the request.
func (h *AuthHandler) RegisterShop(c echo.Context) error {
	if h.limited(c, "register", registerMaxAttempts) {
		return echo.NewHTTPError(http.StatusTooManyRequests, i18n.T(i18n.Lang(c), "too_many_attempts"))
	}

	var req struct {
		registerRequest
		ShopName string `json:"shop_name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.ShopName) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "shop_name is required")
	}

	user, err := h.register(c, req.registerRequest)
	if err != nil {
		return err
	}

	request := models.ShopRequest{
		UserID:     user.ID,
		ShopName:   strings.TrimSpace(req.ShopName),
		OwnerEmail: user.Email,
		Status:     models.ShopRequestPending,
	}
	if err := h.DB.Create(&request).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.issueSession(c, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user":         user,
		"shop_request": request,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	if h.limited(c, "login", loginMaxAttempts) {
		return echo.NewHTTPError(http.StatusTooManyRequests, i18n.T(i18n.Lang(c), "too_many_attempts"))
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if err := h.issueSession(c, &user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(CreateCookie(h.CookieName, "", "/", expired, h.SecureCookies))
	return c.JSON(http.StatusOK, echo.Map{
		"message": i18n.T(i18n.Lang(c), "logged_out"),
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := mwauth.Current(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var user models.User
	if err := h.DB.First(&user, claims.UserID).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return c.JSON(http.StatusOK, user)
}

// UploadAvatar stores the image and re-issues the session cookie so the
// client's claims pick up the fresh profile immediately.
func (h *AuthHandler) UploadAvatar(c echo.Context) error {
	claims, ok := mwauth.Current(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if h.Store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}
	defer src.Close()

	url, err := h.Store.Upload(c.Request().Context(), fh.Filename, src, fh.Size,
		fh.Header.Get(echo.HeaderContentType))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "upload failed")
	}

	var user models.User
	if err := h.DB.First(&user, claims.UserID).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	if err := h.DB.Model(&user).Update("avatar_url", url).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	user.AvatarURL = url

	if err := h.issueSession(c, &user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"avatar_url": url})
}

// SetLanguage switches the storefront copy between vi and en.
func (h *AuthHandler) SetLanguage(c echo.Context) error {
	var req struct {
		Lang string `json:"lang"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	i18n.SetLang(c, req.Lang)
	return c.NoContent(http.StatusNoContent)
}
