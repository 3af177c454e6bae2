package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ndtrung/vietshop/internal/i18n"
	mwauth "github.com/ndtrung/vietshop/internal/middleware/auth"
	"github.com/ndtrung/vietshop/internal/models"
	"github.com/ndtrung/vietshop/internal/mykafka"
	"github.com/ndtrung/vietshop/internal/util"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	claims, ok := mwauth.Current(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Invoice{})
	if claims.Role != models.RoleAdmin {
		q = q.Where("user_id = ?", claims.UserID)
	}

	var invoices []models.Invoice
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&invoices).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, invoices)
}

func (h *OrderHandler) getOwnedInvoice(c echo.Context) (*models.Invoice, error) {
	claims, ok := mwauth.Current(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var invoice models.Invoice
	err := h.DB.Preload("Items").Where("order_id = ?", c.Param("id")).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if claims.Role != models.RoleAdmin && invoice.UserID != claims.UserID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
	}
	return &invoice, nil
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	invoice, err := h.getOwnedInvoice(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoice)
}

// ResendInvoice notifies the invoice owner with a fresh copy reference.
// The invoice row itself is immutable after checkout.
func (h *OrderHandler) ResendInvoice(c echo.Context) error {
	invoice, err := h.getOwnedInvoice(c)
	if err != nil {
		return err
	}
	lang := i18n.Lang(c)

	note := models.Notification{
		UserID: invoice.UserID,
		Title:  i18n.T(lang, "invoice_resent"),
		Body:   invoice.OrderID,
	}
	if err := h.DB.Create(&note).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "order_events", fmt.Sprint(invoice.UserID), map[string]any{
		"type":    "invoice_resent",
		"userID":  invoice.UserID,
		"orderID": invoice.OrderID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message":  i18n.T(lang, "invoice_resent"),
		"order_id": invoice.OrderID,
	})
}
