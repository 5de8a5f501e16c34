package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/rbac"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type Deps struct {
	DB   *gorm.DB
	Auth *auth.Middleware

	AuthHandler     *AuthHTTP
	UserHandler     *UserHTTP
	CategoryHandler *CategoryHTTP
	GroupHandler    *GroupHTTP
	ProductHandler  *ProductHTTP
	CartHandler     *CartHTTP
	OrderHandler    *OrderHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	requireAuth := d.Auth.RequireAuth
	can := auth.Authorize

	a := e.Group("/auth")
	a.POST("/signup", d.AuthHandler.Signup)
	a.POST("/login", d.AuthHandler.Login)
	a.POST("/refresh", d.AuthHandler.Refresh)
	a.POST("/logout", d.AuthHandler.Logout)

	me := a.Group("/me", requireAuth)
	me.GET("", d.UserHandler.Me, can(rbac.ViewOwnUser))
	me.PUT("", d.UserHandler.UpdateMe, can(rbac.UpdateOwnUser))
	me.PUT("/password", d.AuthHandler.ChangePassword, can(rbac.UpdateOwnUser))
	me.GET("/profile", d.UserHandler.GetProfile, can(rbac.ViewOwnUser))
	me.POST("/profile", d.UserHandler.CreateProfile, can(rbac.UpdateOwnUser))
	me.PUT("/profile", d.UserHandler.UpdateProfile, can(rbac.UpdateOwnUser))
	me.DELETE("/profile", d.UserHandler.DeleteProfile, can(rbac.UpdateOwnUser))

	users := a.Group("/users", requireAuth)
	users.GET("", d.UserHandler.List, can(rbac.ViewAllUsers))
	users.GET("/:id", d.UserHandler.Get, can(rbac.ViewUser))
	users.POST("", d.UserHandler.Create, can(rbac.CreateUser))
	users.PUT("/:id", d.UserHandler.Update, can(rbac.UpdateUser))
	users.DELETE("/:id", d.UserHandler.Delete, can(rbac.DeleteUser))

	shop := e.Group("/shop")

	cats := shop.Group("/categories")
	cats.GET("", d.CategoryHandler.List)
	cats.GET("/:id", d.CategoryHandler.Get)
	cats.POST("", d.CategoryHandler.Create, requireAuth, can(rbac.ManageCategory))
	cats.PUT("/:id", d.CategoryHandler.Update, requireAuth, can(rbac.ManageCategory))
	cats.DELETE("/:id", d.CategoryHandler.Delete, requireAuth, can(rbac.ManageCategory))

	groups := shop.Group("/groups")
	groups.GET("", d.GroupHandler.List)
	groups.GET("/:groupId", d.GroupHandler.Get)
	groups.POST("", d.GroupHandler.Create, requireAuth, can(rbac.ManageGroup))
	groups.PUT("/:groupId", d.GroupHandler.Update, requireAuth, can(rbac.ManageGroup))
	groups.DELETE("/:groupId", d.GroupHandler.Delete, requireAuth, can(rbac.ManageGroup))
	groups.POST("/:groupId/products/:productId", d.GroupHandler.AddProduct, requireAuth, can(rbac.ManageGroup))
	groups.DELETE("/:groupId/products/:productId", d.GroupHandler.RemoveProduct, requireAuth, can(rbac.ManageGroup))

	products := shop.Group("/products")
	products.GET("", d.ProductHandler.List)
	products.GET("/search", d.ProductHandler.Search)
	products.GET("/:productId", d.ProductHandler.Get)
	products.GET("/:productId/details", d.ProductHandler.ListDetails)

	products.POST("", d.ProductHandler.Create, requireAuth, can(rbac.CreateProduct))
	products.PUT("/:productId", d.ProductHandler.Update, requireAuth, can(rbac.UpdateProduct))
	products.DELETE("/:productId", d.ProductHandler.Delete, requireAuth, can(rbac.DeleteProduct))
	products.POST("/:productId/images", d.ProductHandler.AddImages, requireAuth, can(rbac.UpdateProduct))
	products.DELETE("/:productId/images/:imageId", d.ProductHandler.DeleteImage, requireAuth, can(rbac.UpdateProduct))
	products.POST("/:productId/details", d.ProductHandler.AddDetail, requireAuth, can(rbac.UpdateProduct))
	products.PUT("/:productId/details/:detailId", d.ProductHandler.UpdateDetail, requireAuth, can(rbac.UpdateProduct))
	products.DELETE("/:productId/details/:detailId", d.ProductHandler.DeleteDetail, requireAuth, can(rbac.UpdateProduct))

	cart := shop.Group("/cart", requireAuth)
	cart.GET("", d.CartHandler.Get, can(rbac.ViewOwnCart))
	cart.POST("", d.CartHandler.Add, can(rbac.CreateOwnCart))
	cart.PUT("/:itemId", d.CartHandler.Update, can(rbac.UpdateOwnCart))
	cart.DELETE("/:itemId", d.CartHandler.Remove, can(rbac.DeleteOwnCart))
	cart.DELETE("", d.CartHandler.Clear, can(rbac.DeleteOwnCart))

	orders := shop.Group("/order", requireAuth)
	orders.POST("", d.OrderHandler.Create, can(rbac.CreateOwnOrder))
	orders.GET("", d.OrderHandler.List, can(rbac.ViewOwnOrders, rbac.ViewAllOrders))
	orders.GET("/:orderId", d.OrderHandler.Get, can(rbac.ViewOwnOrders, rbac.ViewAllOrders))
	orders.PUT("/:orderId", d.OrderHandler.UpdateStatus, can(rbac.UpdateOwnOrder, rbac.UpdateOrder))
	orders.DELETE("/:orderId", d.OrderHandler.Delete, can(rbac.DeleteOrder))

	shop.POST("/admin/order", d.OrderHandler.CreateFor, requireAuth, can(rbac.CreateOrder))
}

func (d *Deps) ready(c echo.Context) error {
	if err := db.Ping(c.Request().Context(), d.DB); err != nil {
		logging.FromContext(c.Request().Context()).Warn("readiness_failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
