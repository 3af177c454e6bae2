package handlers

import (
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	mwauth "github.com/ndtrung/vietshop/internal/middleware/auth"
	"github.com/ndtrung/vietshop/internal/models"
	"github.com/ndtrung/vietshop/internal/service/search"
	"github.com/ndtrung/vietshop/internal/util"
)

const recentSearchLimit = 10

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
	DB    *gorm.DB
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search unavailable")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	ctx := c.Request().Context()

	total, products, err := search.Search(ctx, h.ES, h.Index, q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "search unavailable")
	}

	// Recording the query is best effort: a failed write never fails the
	// search itself.
	if claims, ok := mwauth.Current(c); ok {
		if err := h.DB.Create(&models.RecentSearch{UserID: claims.UserID, Query: q}).Error; err != nil {
			c.Logger().Errorf("recent search save error: %v", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}

func (h *SearchHandler) RecentSearches(c echo.Context) error {
	claims, ok := mwauth.Current(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var recent []models.RecentSearch
	if err := h.DB.Where("user_id = ?", claims.UserID).
		Order("id DESC").Limit(recentSearchLimit).Find(&recent).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, recent)
}

func (h *SearchHandler) AddRecentSearch(c echo.Context) error {
	claims, ok := mwauth.Current(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	entry := models.RecentSearch{UserID: claims.UserID, Query: req.Query}
	if err := h.DB.Create(&entry).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *SearchHandler) ClearRecentSearches(c echo.Context) error {
	claims, ok := mwauth.Current(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	if err := h.DB.Where("user_id = ?", claims.UserID).
		Delete(&models.RecentSearch{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.NoContent(http.StatusNoContent)
}
