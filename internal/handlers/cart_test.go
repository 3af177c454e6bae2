package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ndtrung/vietshop/internal/models"
)

func TestAddItemCreatesLine(t *testing.T) {
	env := newTestEnv(t)
	h := &CartHandler{DB: env.DB}
	user := env.seedUser("linh@example.com", models.RoleUser)
	product := env.seedProduct("Nón lá", 120000)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/cart/items", map[string]any{
		"product_id": product.ID,
		"quantity":   2,
	})
	env.asUser(c, user)
	require.NoError(t, h.AddItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var item models.CartItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	require.Equal(t, user.ID, item.UserID)
	require.Equal(t, product.ID, item.ProductID)
	require.Equal(t, uint(2), item.Quantity)
}

func TestAddItemMergesByIncrement(t *testing.T) {
	env := newTestEnv(t)
	h := &CartHandler{DB: env.DB}
	user := env.seedUser("linh@example.com", models.RoleUser)
	product := env.seedProduct("Nón lá", 120000)

	for _, qty := range []int{2, 3} {
		_, c := env.doJSONRequest(http.MethodPost, "/api/cart/items", map[string]any{
			"product_id": product.ID,
			"quantity":   qty,
		})
		env.asUser(c, user)
		require.NoError(t, h.AddItem(c))
	}

	// One line, merged quantity.
	require.Equal(t, int64(1), env.cartCount(user.ID))
	var item models.CartItem
	require.NoError(t, env.DB.Where("user_id = ? AND product_id = ?", user.ID, product.ID).
		First(&item).Error)
	require.Equal(t, uint(5), item.Quantity)
}

func TestAddItemRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	h := &CartHandler{DB: env.DB}
	user := env.seedUser("linh@example.com", models.RoleUser)
	product := env.seedProduct("Nón lá", 120000)

	_, c := env.doJSONRequest(http.MethodPost, "/api/cart/items", map[string]any{
		"product_id": product.ID,
		"quantity":   0,
	})
	env.asUser(c, user)
	require.Equal(t, http.StatusBadRequest, httpCode(t, h.AddItem(c)))

	_, c = env.doJSONRequest(http.MethodPost, "/api/cart/items", map[string]any{
		"product_id": 9999,
		"quantity":   1,
	})
	env.asUser(c, user)
	require.Equal(t, http.StatusBadRequest, httpCode(t, h.AddItem(c)))

	require.Equal(t, int64(0), env.cartCount(user.ID))
}

func TestUpdateQuantityOverwrites(t *testing.T) {
	env := newTestEnv(t)
	h := &CartHandler{DB: env.DB}
	user := env.seedUser("linh@example.com", models.RoleUser)
	product := env.seedProduct("Nón lá", 120000)
	require.NoError(t, env.DB.Create(&models.CartItem{
		UserID: user.ID, ProductID: product.ID, Quantity: 2,
	}).Error)

	rec, c := env.doJSONRequest(http.MethodPatch, "/api/cart/items", map[string]any{
		"product_id": product.ID,
		"quantity":   7,
	})
	env.asUser(c, user)
	require.NoError(t, h.UpdateQuantity(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var item models.CartItem
	require.NoError(t, env.DB.Where("user_id = ? AND product_id = ?", user.ID, product.ID).
		First(&item).Error)
	require.Equal(t, uint(7), item.Quantity)
}

func TestUpdateQuantityMissingLine(t *testing.T) {
	env := newTestEnv(t)
	h := &CartHandler{DB: env.DB}
	user := env.seedUser("linh@example.com", models.RoleUser)
	product := env.seedProduct("Nón lá", 120000)

	_, c := env.doJSONRequest(http.MethodPatch, "/api/cart/items", map[string]any{
		"product_id": product.ID,
		"quantity":   7,
	})
	env.asUser(c, user)
	require.Equal(t, http.StatusNotFound, httpCode(t, h.UpdateQuantity(c)))

	// A missing line is never created by an update.
	require.Equal(t, int64(0), env.cartCount(user.ID))
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	h := &CartHandler{DB: env.DB}
	user := env.seedUser("linh@example.com", models.RoleUser)
	product := env.seedProduct("Nón lá", 120000)
	require.NoError(t, env.DB.Create(&models.CartItem{
		UserID: user.ID, ProductID: product.ID, Quantity: 2,
	}).Error)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/cart/items", map[string]any{
		"product_id": product.ID,
	})
	env.asUser(c, user)
	require.NoError(t, h.RemoveItem(c))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, int64(0), env.cartCount(user.ID))

	// Removing the same line again still succeeds.
	rec, c = env.doJSONRequest(http.MethodDelete, "/api/cart/items", map[string]any{
		"product_id": product.ID,
	})
	env.asUser(c, user)
	require.NoError(t, h.RemoveItem(c))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetCartSnapshot(t *testing.T) {
	env := newTestEnv(t)
	h := &CartHandler{DB: env.DB}
	user := env.seedUser("linh@example.com", models.RoleUser)
	hat := env.seedProduct("Nón lá", 120000)
	coffee := env.seedProduct("Cà phê sữa đá", 35000)
	require.NoError(t, env.DB.Create(&models.CartItem{
		UserID: user.ID, ProductID: hat.ID, Quantity: 1,
	}).Error)
	require.NoError(t, env.DB.Create(&models.CartItem{
		UserID: user.ID, ProductID: coffee.ID, Quantity: 3,
	}).Error)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/cart", nil)
	env.asUser(c, user)
	require.NoError(t, h.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap CartSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Items, 2)
	require.Equal(t, uint(4), snap.ItemCount)
	require.Equal(t, 120000+3*35000.0, snap.Total)
	require.Equal(t, "Nón lá", snap.Items[0].Title)
	require.Equal(t, 120000.0, snap.Items[0].LineTotal)
}

func TestCartIsPerUser(t *testing.T) {
	env := newTestEnv(t)
	h := &CartHandler{DB: env.DB}
	linh := env.seedUser("linh@example.com", models.RoleUser)
	mai := env.seedUser("mai@example.com", models.RoleUser)
	product := env.seedProduct("Nón lá", 120000)
	require.NoError(t, env.DB.Create(&models.CartItem{
		UserID: linh.ID, ProductID: product.ID, Quantity: 2,
	}).Error)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/cart", nil)
	env.asUser(c, mai)
	require.NoError(t, h.GetCart(c))

	var snap CartSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Empty(t, snap.Items)
}
