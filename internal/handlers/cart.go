package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ndtrung/vietshop/internal/i18n"
	mwauth "github.com/ndtrung/vietshop/internal/middleware/auth"
	"github.com/ndtrung/vietshop/internal/models"
	"github.com/ndtrung/vietshop/internal/mykafka"
	"github.com/ndtrung/vietshop/internal/ratelimit"
)

const (
	cartMaxMutations = 30
	cartWindow       = time.Minute
)

type CartHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Limiter  *ratelimit.Limiter
}

// CartLine is a cart item with its product details resolved for display.
type CartLine struct {
	ProductID uint    `json:"product_id"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unit_price"`
	ImageURL  string  `json:"image_url"`
	Quantity  uint    `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

type CartSnapshot struct {
	Items     []CartLine `json:"items"`
	Total     float64    `json:"total"`
	ItemCount uint       `json:"item_count"`
}

func (h *CartHandler) limited(c echo.Context, userID uint) bool {
	if h.Limiter == nil {
		return false
	}
	return h.Limiter.Limited(fmt.Sprint(userID), "cart", cartMaxMutations, cartWindow)
}

func (h *CartHandler) snapshot(c echo.Context, userID uint) (*CartSnapshot, error) {
	var items []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	snap := &CartSnapshot{Items: make([]CartLine, 0, len(items))}
	for _, it := range items {
		var p models.Product
		if err := h.DB.First(&p, it.ProductID).Error; err != nil {
			return nil, err
		}
		line := CartLine{
			ProductID: it.ProductID,
			Title:     p.Name,
			UnitPrice: p.Price,
			ImageURL:  p.ImageURL,
			Quantity:  it.Quantity,
			LineTotal: p.Price * float64(it.Quantity),
		}
		snap.Items = append(snap.Items, line)
		snap.Total += line.LineTotal
		snap.ItemCount += it.Quantity
	}
	return snap, nil
}

func (h *CartHandler) GetCart(c echo.Context) error {
	claims, ok := mwauth.Current(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	snap, err := h.snapshot(c, claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, snap)
}

// AddItem merges by incrementing the existing line's quantity. The update
// and the fallback insert run in one transaction under the unique
// (user_id, product_id) index, so concurrent adds cannot fork a line.
func (h *CartHandler) AddItem(c echo.Context) error {
	claims, ok := mwauth.Current(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if h.limited(c, claims.UserID) {
		return echo.NewHTTPError(http.StatusTooManyRequests, i18n.T(i18n.Lang(c), "too_many_attempts"))
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be at least 1")
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown product")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	item := models.CartItem{
		UserID:    claims.UserID,
		ProductID: req.ProductID,
		Quantity:  uint(req.Quantity),
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", claims.UserID, req.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", req.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND product_id = ?", claims.UserID, req.ProductID).
				First(&item).Error
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "cart_events", fmt.Sprint(claims.UserID), map[string]any{
		"type":      "cart_item_added",
		"userID":    claims.UserID,
		"productID": req.ProductID,
		"quantity":  item.Quantity,
	})

	return c.JSON(http.StatusOK, item)
}

// UpdateQuantity overwrites the line's quantity. Unlike AddItem it never
// creates the line: a missing line is the caller's error.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	claims, ok := mwauth.Current(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if h.limited(c, claims.UserID) {
		return echo.NewHTTPError(http.StatusTooManyRequests, i18n.T(i18n.Lang(c), "too_many_attempts"))
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be at least 1")
	}

	var item models.CartItem
	if err := h.DB.Where("user_id = ? AND product_id = ?", claims.UserID, req.ProductID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	item.Quantity = uint(req.Quantity)
	if err := h.DB.Save(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "cart_events", fmt.Sprint(claims.UserID), map[string]any{
		"type":      "cart_item_updated",
		"userID":    claims.UserID,
		"productID": req.ProductID,
		"quantity":  item.Quantity,
	})

	return c.JSON(http.StatusOK, item)
}

// RemoveItem deletes the line if present. Removing an absent line is a
// success, not an error.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	claims, ok := mwauth.Current(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if h.limited(c, claims.UserID) {
		return echo.NewHTTPError(http.StatusTooManyRequests, i18n.T(i18n.Lang(c), "too_many_attempts"))
	}

	var req struct {
		ProductID uint `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.DB.
		Where("user_id = ? AND product_id = ?", claims.UserID, req.ProductID).
		Delete(&models.CartItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "cart_events", fmt.Sprint(claims.UserID), map[string]any{
		"type":      "cart_item_removed",
		"userID":    claims.UserID,
		"productID": req.ProductID,
	})

	return c.NoContent(http.StatusNoContent)
}
