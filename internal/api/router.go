package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type Handlers struct {
	Users      *UserHandler
	Categories *CategoryHandler
	Menu       *MenuItemHandler
	Cart       *CartHandler
	Vouchers   *VoucherHandler
	Orders     *OrderHandler
}

type RouterConfig struct {
	JWTSecret string
	// RateLimit is requests per second per client address; zero disables
	// the limiter.
	RateLimit float64
	RateBurst int
}

// NewRouter builds the echo instance serving every endpoint under /api.
func NewRouter(h Handlers, cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogMethod:  true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := logger.Info()
			if v.Error != nil {
				ev = logger.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Dur("latency", v.Latency).Msg("request")
			return nil
		},
	}))
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig(cfg.RateLimit, cfg.RateBurst)))
	}

	g := e.Group("/api")
	g.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"service": "food-order-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	g.POST("/users/register", h.Users.Register)
	g.POST("/users/login", h.Users.Login)
	g.GET("/category/all", h.Categories.GetCategories)
	g.GET("/category/get/:id", h.Categories.GetCategoryByID)
	g.GET("/menu-items/all", h.Menu.GetMenuItems)
	g.GET("/menu-items/:id", h.Menu.GetMenuItemByID)
	g.GET("/voucher/all", h.Vouchers.GetVouchers)
	g.GET("/voucher/get/:id", h.Vouchers.GetVoucherByID)

	auth := g.Group("", JWT(cfg.JWTSecret))
	auth.GET("/users/get/:id", h.Users.GetUserByID)
	auth.PUT("/users/update/:id", h.Users.UpdateProfile)
	auth.PUT("/users/change-password/:id", h.Users.ChangePassword)
	auth.DELETE("/users/delete/:id", h.Users.DeleteUser)

	auth.GET("/cart/:userId", h.Cart.GetCart)
	auth.GET("/cart/:userId/count", h.Cart.Count)
	auth.POST("/cart/:userId/add", h.Cart.AddItem)
	auth.PUT("/cart/:userId/items/:itemId", h.Cart.UpdateItem)
	auth.DELETE("/cart/:userId/items/:itemId", h.Cart.RemoveItem)
	auth.DELETE("/cart/:userId/clear", h.Cart.Clear)

	auth.POST("/voucher/check", h.Vouchers.CheckVoucher)

	auth.POST("/orders/create", h.Orders.CreateOrder)
	auth.POST("/order-detail/create", h.Orders.CreateOrderLine)
	auth.GET("/orders/user/:userId", h.Orders.GetOrdersByUser)
	auth.GET("/orders/:id", h.Orders.GetOrderByID)
	auth.GET("/order-detail/order/:orderId", h.Orders.GetOrderLines)
	auth.PUT("/orders/cancel/:id", h.Orders.CancelOrder)

	admin := auth.Group("", AdminOnly)
	admin.GET("/users/all", h.Users.GetUsers)
	admin.POST("/category/create", h.Categories.CreateCategory)
	admin.PUT("/category/update/:id", h.Categories.UpdateCategory)
	admin.DELETE("/category/delete/:id", h.Categories.DeleteCategory)
	admin.POST("/menu-items/create", h.Menu.CreateMenuItem)
	admin.PUT("/menu-items/update/:id", h.Menu.UpdateMenuItem)
	admin.DELETE("/menu-items/delete/:id", h.Menu.DeleteMenuItem)
	admin.POST("/voucher/create", h.Vouchers.CreateVoucher)
	admin.PUT("/voucher/update/:id", h.Vouchers.UpdateVoucher)
	admin.DELETE("/voucher/delete/:id", h.Vouchers.DeleteVoucher)
	admin.GET("/orders/all", h.Orders.GetOrders)
	admin.PUT("/orders/update/:id", h.Orders.UpdateOrder)

	return e
}

func rateLimiterConfig(rps float64, burst int) middleware.RateLimiterConfig {
	return middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(rps),
				Burst:     burst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
	}
}
