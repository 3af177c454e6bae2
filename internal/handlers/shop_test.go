package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ndtrung/vietshop/internal/models"
)

func TestCreateShopPromotesOwner(t *testing.T) {
	env := newTestEnv(t)
	h := &ShopHandler{DB: env.DB}
	admin := env.seedUser("admin@example.com", models.RoleAdmin)
	owner := env.seedUser("mai@example.com", models.RoleUser)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/shops", map[string]any{
		"name":     "Mai Handicrafts",
		"owner_id": owner.ID,
	})
	env.asUser(c, admin)
	require.NoError(t, h.CreateShop(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var after models.User
	require.NoError(t, env.DB.First(&after, owner.ID).Error)
	require.Equal(t, models.RoleShop, after.Role)

	var shop models.Shop
	require.NoError(t, env.DB.Where("owner_id = ?", owner.ID).First(&shop).Error)
	require.Equal(t, "Mai Handicrafts", shop.Name)
}

func TestCreateShopUnknownOwner(t *testing.T) {
	env := newTestEnv(t)
	h := &ShopHandler{DB: env.DB}
	admin := env.seedUser("admin@example.com", models.RoleAdmin)

	_, c := env.doJSONRequest(http.MethodPost, "/api/shops", map[string]any{
		"name":     "Ghost Shop",
		"owner_id": 9999,
	})
	env.asUser(c, admin)
	require.Equal(t, http.StatusNotFound, httpCode(t, h.CreateShop(c)))

	var n int64
	require.NoError(t, env.DB.Model(&models.Shop{}).Count(&n).Error)
	require.Equal(t, int64(0), n)
}

func TestApproveShopRequest(t *testing.T) {
	env := newTestEnv(t)
	h := &ShopHandler{DB: env.DB}
	requester := env.seedUser("mai@example.com", models.RoleUser)
	request := models.ShopRequest{
		UserID:     requester.ID,
		ShopName:   "Mai Handicrafts",
		OwnerEmail: requester.Email,
		Status:     models.ShopRequestPending,
	}
	require.NoError(t, env.DB.Create(&request).Error)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/shops/requests/1/approve", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.ApproveShopRequest(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var after models.ShopRequest
	require.NoError(t, env.DB.First(&after, request.ID).Error)
	require.Equal(t, models.ShopRequestApproved, after.Status)

	var shop models.Shop
	require.NoError(t, env.DB.Where("owner_id = ?", requester.ID).First(&shop).Error)
	require.Equal(t, "Mai Handicrafts", shop.Name)

	var user models.User
	require.NoError(t, env.DB.First(&user, requester.ID).Error)
	require.Equal(t, models.RoleShop, user.Role)

	var note models.Notification
	require.NoError(t, env.DB.Where("user_id = ?", requester.ID).First(&note).Error)
	require.NotEmpty(t, note.Title)
}

func TestApproveShopRequestIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	h := &ShopHandler{DB: env.DB}
	requester := env.seedUser("mai@example.com", models.RoleUser)
	request := models.ShopRequest{
		UserID:     requester.ID,
		ShopName:   "Mai Handicrafts",
		OwnerEmail: requester.Email,
		Status:     models.ShopRequestPending,
	}
	require.NoError(t, env.DB.Create(&request).Error)

	_, c := env.doJSONRequest(http.MethodPost, "/api/shops/requests/1/approve", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.ApproveShopRequest(c))

	_, c = env.doJSONRequest(http.MethodPost, "/api/shops/requests/1/approve", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.Equal(t, http.StatusConflict, httpCode(t, h.ApproveShopRequest(c)))

	_, c = env.doJSONRequest(http.MethodPost, "/api/shops/requests/1/reject", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.Equal(t, http.StatusConflict, httpCode(t, h.RejectShopRequest(c)))

	// Still exactly one shop.
	var n int64
	require.NoError(t, env.DB.Model(&models.Shop{}).Count(&n).Error)
	require.Equal(t, int64(1), n)
}

func TestRejectShopRequest(t *testing.T) {
	env := newTestEnv(t)
	h := &ShopHandler{DB: env.DB}
	requester := env.seedUser("mai@example.com", models.RoleUser)
	request := models.ShopRequest{
		UserID:     requester.ID,
		ShopName:   "Mai Handicrafts",
		OwnerEmail: requester.Email,
		Status:     models.ShopRequestPending,
	}
	require.NoError(t, env.DB.Create(&request).Error)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/shops/requests/1/reject", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.RejectShopRequest(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var after models.ShopRequest
	require.NoError(t, env.DB.First(&after, request.ID).Error)
	require.Equal(t, models.ShopRequestRejected, after.Status)

	// No shop, no promotion.
	var n int64
	require.NoError(t, env.DB.Model(&models.Shop{}).Count(&n).Error)
	require.Equal(t, int64(0), n)
	var user models.User
	require.NoError(t, env.DB.First(&user, requester.ID).Error)
	require.Equal(t, models.RoleUser, user.Role)
}

func TestListShopRequestsFilter(t *testing.T) {
	env := newTestEnv(t)
	h := &ShopHandler{DB: env.DB}
	requester := env.seedUser("mai@example.com", models.RoleUser)
	for _, status := range []string{
		models.ShopRequestPending,
		models.ShopRequestApproved,
		models.ShopRequestRejected,
	} {
		require.NoError(t, env.DB.Create(&models.ShopRequest{
			UserID:     requester.ID,
			ShopName:   "Shop " + status,
			OwnerEmail: requester.Email,
			Status:     status,
		}).Error)
	}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/shops/requests?status=pending", nil)
	require.NoError(t, h.ListShopRequests(c))

	var requests []models.ShopRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &requests))
	require.Len(t, requests, 1)
	require.Equal(t, models.ShopRequestPending, requests[0].Status)
}

func TestCreateShopProductForeignOwner(t *testing.T) {
	env := newTestEnv(t)
	h := &ShopHandler{DB: env.DB}
	mai := env.seedUser("mai@example.com", models.RoleShop)
	shop := models.Shop{Name: "Mai Handicrafts", OwnerID: mai.ID}
	require.NoError(t, env.DB.Create(&shop).Error)
	hoa := env.seedUser("hoa@example.com", models.RoleShop)

	_, c := env.doJSONRequest(http.MethodPost, "/api/shops/1/products", map[string]any{
		"name":  "Nón lá",
		"price": 120000,
	})
	c.SetParamNames("id")
	c.SetParamValues("1")
	env.asUser(c, hoa)
	require.Equal(t, http.StatusForbidden, httpCode(t, h.CreateShopProduct(c)))
}
