package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ndtrung/vietshop/internal/i18n"
	"github.com/ndtrung/vietshop/internal/logging"
	mwauth "github.com/ndtrung/vietshop/internal/middleware/auth"
	"github.com/ndtrung/vietshop/internal/models"
	"github.com/ndtrung/vietshop/internal/mykafka"
)

type CheckoutHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type checkoutRequest struct {
	OrderID string `json:"order_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// Checkout converts the current cart into an invoice. The invoice upsert,
// the line snapshot and the cart clearing share one transaction: the cart
// is cleared only when the invoice actually persisted, and retrying with
// the same order id replaces the previous row instead of duplicating it.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	claims, ok := mwauth.Current(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	lang := i18n.Lang(c)
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout")

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var items []models.CartItem
	if err := h.DB.Where("user_id = ?", claims.UserID).Order("id ASC").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if len(items) == 0 {
		return c.JSON(http.StatusOK, echo.Map{
			"item_count": 0,
			"message":    i18n.T(lang, "empty_cart"),
		})
	}

	// Contact info falls back to the account's own details.
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = claims.Name
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = claims.Email
	}

	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		orderID = uuid.NewString()
	}

	var invoice models.Invoice
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var (
			total     float64
			itemCount uint
			lines     []models.InvoiceItem
		)
		for _, it := range items {
			var p models.Product
			if err := tx.First(&p, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusBadRequest, "product no longer available")
				}
				return err
			}
			linePrice := p.Price * float64(it.Quantity)
			lines = append(lines, models.InvoiceItem{
				ProductID: it.ProductID,
				Title:     p.Name,
				Quantity:  it.Quantity,
				LinePrice: linePrice,
			})
			total += linePrice
			itemCount += it.Quantity
		}
		// Shipping is fixed at zero, so the total is the subtotal.

		var existing models.Invoice
		err := tx.Where("order_id = ?", orderID).First(&existing).Error
		switch {
		case err == nil:
			if existing.UserID != claims.UserID {
				return echo.NewHTTPError(http.StatusForbidden, "order id belongs to another user")
			}
			if err := tx.Where("invoice_id = ?", existing.ID).
				Delete(&models.InvoiceItem{}).Error; err != nil {
				return err
			}
			invoice = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			invoice = models.Invoice{OrderID: orderID, UserID: claims.UserID}
		default:
			return err
		}

		invoice.Name = name
		invoice.Phone = strings.TrimSpace(req.Phone)
		invoice.Email = email
		invoice.Address = strings.TrimSpace(req.Address)
		invoice.City = strings.TrimSpace(req.City)
		invoice.Total = total
		invoice.ItemCount = itemCount

		if err := tx.Save(&invoice).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].InvoiceID = invoice.ID
			if err := tx.Create(&lines[i]).Error; err != nil {
				return err
			}
		}
		invoice.Items = lines

		return tx.Where("user_id = ?", claims.UserID).Delete(&models.CartItem{}).Error
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		l.Error("checkout_failed", "order_id", orderID, "error", txErr)
		return echo.NewHTTPError(http.StatusBadGateway, i18n.T(lang, "checkout_failed"))
	}

	publish(c, h.Producer, "order_events", fmt.Sprint(claims.UserID), map[string]any{
		"type":       "order_created",
		"userID":     claims.UserID,
		"orderID":    orderID,
		"total":      invoice.Total,
		"item_count": invoice.ItemCount,
	})

	return c.JSON(http.StatusCreated, invoice)
}

// DemoInvoice is the demo payment endpoint: no payment provider is wired,
// an invoice's existence is already the paid state.
func (h *CheckoutHandler) DemoInvoice(c echo.Context) error {
	if _, ok := mwauth.Current(c); !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
