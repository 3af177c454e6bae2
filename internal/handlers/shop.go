package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ndtrung/vietshop/internal/i18n"
	mwauth "github.com/ndtrung/vietshop/internal/middleware/auth"
	"github.com/ndtrung/vietshop/internal/models"
	"github.com/ndtrung/vietshop/internal/mykafka"
)

type ShopHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *ShopHandler) ListShops(c echo.Context) error {
	var shops []models.Shop
	if err := h.DB.Order("id ASC").Find(&shops).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, shops)
}

// CreateShop provisions a shop directly, bypassing the request flow. The
// owner is promoted to the shop role in the same transaction.
func (h *ShopHandler) CreateShop(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		OwnerID     uint   `json:"owner_id"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.OwnerID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "name and owner_id are required")
	}

	var shop models.Shop
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var owner models.User
		if err := tx.First(&owner, req.OwnerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "owner not found")
			}
			return err
		}

		shop = models.Shop{Name: req.Name, OwnerID: owner.ID, Description: req.Description}
		if err := tx.Create(&shop).Error; err != nil {
			return err
		}
		if owner.Role == models.RoleUser {
			if err := tx.Model(&owner).Update("role", models.RoleShop).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusCreated, shop)
}

func (h *ShopHandler) ShopProducts(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var shop models.Shop
	if err := h.DB.First(&shop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "shop not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var products []models.Product
	if err := h.DB.Where("shop_id = ?", shop.ID).Order("id ASC").Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"shop": shop, "products": products})
}

// CreateShopProduct adds a product into a specific shop. Admins may
// target any shop, shop owners only their own.
func (h *ShopHandler) CreateShopProduct(c echo.Context) error {
	claims, ok := mwauth.Current(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var shop models.Shop
	if err := h.DB.First(&shop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "shop not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if claims.Role != models.RoleAdmin && shop.OwnerID != claims.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "name and a non-negative price are required")
	}

	prod := models.Product{
		ShopID:      &shop.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Count:       req.Count,
		ImageURL:    req.ImageURL,
	}
	if err := h.DB.Create(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "product_events", fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"shopID":    shop.ID,
	})

	return c.JSON(http.StatusCreated, prod)
}

func (h *ShopHandler) CreateShopRequest(c echo.Context) error {
	claims, ok := mwauth.Current(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req struct {
		ShopName   string `json:"shop_name"`
		OwnerEmail string `json:"owner_email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.ShopName = strings.TrimSpace(req.ShopName)
	if req.ShopName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "shop_name is required")
	}
	if req.OwnerEmail == "" {
		req.OwnerEmail = claims.Email
	}

	request := models.ShopRequest{
		UserID:     claims.UserID,
		ShopName:   req.ShopName,
		OwnerEmail: req.OwnerEmail,
		Status:     models.ShopRequestPending,
	}
	if err := h.DB.Create(&request).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusCreated, request)
}

func (h *ShopHandler) ListShopRequests(c echo.Context) error {
	q := h.DB.Model(&models.ShopRequest{})
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var requests []models.ShopRequest
	if err := q.Order("id ASC").Find(&requests).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, requests)
}

// ApproveShopRequest provisions the shop and promotes the requester. A
// request is terminal once resolved: approving twice is a conflict.
func (h *ShopHandler) ApproveShopRequest(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	lang := i18n.Lang(c)

	var (
		request models.ShopRequest
		shop    models.Shop
	)
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "request not found")
			}
			return err
		}
		if request.Status != models.ShopRequestPending {
			return echo.NewHTTPError(http.StatusConflict, "request already resolved")
		}

		shop = models.Shop{Name: request.ShopName, OwnerID: request.UserID}
		if err := tx.Create(&shop).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", request.UserID).
			Update("role", models.RoleShop).Error; err != nil {
			return err
		}
		if err := tx.Model(&request).Update("status", models.ShopRequestApproved).Error; err != nil {
			return err
		}
		request.Status = models.ShopRequestApproved

		return tx.Create(&models.Notification{
			UserID: request.UserID,
			Title:  i18n.T(lang, "shop_approved"),
			Body:   request.ShopName,
		}).Error
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(request.UserID), map[string]any{
		"type":   "shop_approved",
		"userID": request.UserID,
		"shopID": shop.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"request": request, "shop": shop})
}

func (h *ShopHandler) RejectShopRequest(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	lang := i18n.Lang(c)

	var request models.ShopRequest
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "request not found")
			}
			return err
		}
		if request.Status != models.ShopRequestPending {
			return echo.NewHTTPError(http.StatusConflict, "request already resolved")
		}

		if err := tx.Model(&request).Update("status", models.ShopRequestRejected).Error; err != nil {
			return err
		}
		request.Status = models.ShopRequestRejected

		return tx.Create(&models.Notification{
			UserID: request.UserID,
			Title:  i18n.T(lang, "shop_rejected"),
			Body:   request.ShopName,
		}).Error
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, request)
}
