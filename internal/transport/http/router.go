package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ndtrung/vietshop/internal/handlers"
	mwauth "github.com/ndtrung/vietshop/internal/middleware/auth"
	"github.com/ndtrung/vietshop/internal/models"
	"github.com/ndtrung/vietshop/internal/token"
)

type Deps struct {
	DB         *gorm.DB
	Codec      *token.Codec
	CookieName string

	AuthHandler         *handlers.AuthHandler
	CartHandler         *handlers.CartHandler
	CheckoutHandler     *handlers.CheckoutHandler
	OrderHandler        *handlers.OrderHandler
	ProductHandler      *handlers.ProductHandler
	ShopHandler         *handlers.ShopHandler
	NotificationHandler *handlers.NotificationHandler
	SearchHandler       *handlers.SearchHandler
	StorageHandler      *handlers.StorageHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api", mwauth.Session(d.Codec, d.CookieName))

	authg := api.Group("/auth")
	authg.POST("/register", d.AuthHandler.Register)
	authg.POST("/register-shop", d.AuthHandler.RegisterShop)
	authg.POST("/login", d.AuthHandler.Login)
	authg.POST("/logout", d.AuthHandler.LogOut)
	authg.GET("/me", d.AuthHandler.Me, mwauth.RequireUser())
	authg.POST("/avatar/upload", d.AuthHandler.UploadAvatar, mwauth.RequireUser())

	api.POST("/lang", d.AuthHandler.SetLanguage)

	cart := api.Group("/cart", mwauth.RequireUser())
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("/items", d.CartHandler.AddItem)
	cart.PATCH("/items", d.CartHandler.UpdateQuantity)
	cart.DELETE("/items", d.CartHandler.RemoveItem)

	api.POST("/checkout", d.CheckoutHandler.Checkout, mwauth.RequireUser())
	api.POST("/checkout/invoice", d.CheckoutHandler.DemoInvoice, mwauth.RequireUser())

	orders := api.Group("/orders", mwauth.RequireUser())
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.PATCH("/:id", d.OrderHandler.ResendInvoice)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct,
		mwauth.RequireRole(models.RoleShop, models.RoleAdmin))
	products.PATCH("/:id", d.ProductHandler.PatchProduct,
		mwauth.RequireRole(models.RoleShop, models.RoleAdmin))
	products.DELETE("/:id", d.ProductHandler.DeleteProduct,
		mwauth.RequireRole(models.RoleShop, models.RoleAdmin))

	shops := api.Group("/shops")
	shops.GET("", d.ShopHandler.ListShops)
	shops.POST("", d.ShopHandler.CreateShop, mwauth.RequireRole(models.RoleAdmin))
	shops.GET("/:id/products", d.ShopHandler.ShopProducts)
	shops.POST("/:id/products", d.ShopHandler.CreateShopProduct,
		mwauth.RequireRole(models.RoleShop, models.RoleAdmin))
	shops.POST("/requests", d.ShopHandler.CreateShopRequest, mwauth.RequireUser())
	shops.GET("/requests", d.ShopHandler.ListShopRequests, mwauth.RequireRole(models.RoleAdmin))
	shops.POST("/requests/:id/approve", d.ShopHandler.ApproveShopRequest,
		mwauth.RequireRole(models.RoleAdmin))
	shops.POST("/requests/:id/reject", d.ShopHandler.RejectShopRequest,
		mwauth.RequireRole(models.RoleAdmin))

	notifications := api.Group("/notifications", mwauth.RequireUser())
	notifications.GET("", d.NotificationHandler.ListNotifications)
	notifications.POST("", d.NotificationHandler.CreateNotification,
		mwauth.RequireRole(models.RoleAdmin))

	api.GET("/search", d.SearchHandler.Search)
	recent := api.Group("/search/recent", mwauth.RequireUser())
	recent.GET("", d.SearchHandler.RecentSearches)
	recent.POST("", d.SearchHandler.AddRecentSearch)
	recent.DELETE("", d.SearchHandler.ClearRecentSearches)

	files := api.Group("/storage", mwauth.RequireRole(models.RoleShop, models.RoleAdmin))
	files.POST("/files", d.StorageHandler.UploadFile)
	files.DELETE("/files", d.StorageHandler.DeleteFile)
}
