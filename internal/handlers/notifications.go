package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	mwauth "github.com/ndtrung/vietshop/internal/middleware/auth"
	"github.com/ndtrung/vietshop/internal/models"
)

type NotificationHandler struct {
	DB *gorm.DB
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	claims, ok := mwauth.Current(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var notes []models.Notification
	if err := h.DB.Where("user_id = ?", claims.UserID).
		Order("created_at DESC").Limit(50).Find(&notes).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, notes)
}

func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	var req struct {
		UserID uint   `json:"user_id"`
		Title  string `json:"title"`
		Body   string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.UserID == 0 || req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id and title are required")
	}

	note := models.Notification{UserID: req.UserID, Title: req.Title, Body: req.Body}
	if err := h.DB.Create(&note).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusCreated, note)
}
