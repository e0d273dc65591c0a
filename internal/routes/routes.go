package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abhishek-927/production-online-shop/internal/controllers"
	"github.com/Abhishek-927/production-online-shop/internal/middleware"
)

// APIPrefix is where every application route is mounted.
const APIPrefix = "/api/v1"

type Controllers struct {
	Auth     *controllers.AuthController
	Orders   *controllers.OrderController
	Category *controllers.CategoryController
	Product  *controllers.ProductController
	Payment  *controllers.PaymentController
}

// Gates holds what the access middleware needs to resolve a caller.
type Gates struct {
	Tokens   middleware.TokenVerifier
	Accounts middleware.AccountLookup
}

// RegisterRoutes mounts the health check and every API group on r.
func RegisterRoutes(r *gin.Engine, ctrl Controllers, gates Gates) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	signIn := middleware.RequireSignIn(gates.Tokens)
	admin := middleware.RequireAdmin(gates.Accounts)

	api := r.Group(APIPrefix)
	registerAuthRoutes(api, ctrl, signIn, admin)
	registerCategoryRoutes(api, ctrl.Category, signIn, admin)
	registerProductRoutes(api, ctrl.Product, ctrl.Payment, signIn, admin)
}

func registerAuthRoutes(api *gin.RouterGroup, ctrl Controllers, signIn, admin gin.HandlerFunc) {
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/createuser", ctrl.Auth.Signup)
		authRoutes.POST("/login", ctrl.Auth.Login)
		authRoutes.GET("/user-auth", signIn, ctrl.Auth.Ping)
		authRoutes.GET("/admin-auth", signIn, admin, ctrl.Auth.Ping)
		authRoutes.PUT("/profile-update", signIn, ctrl.Auth.UpdateProfile)
		authRoutes.GET("/all-users", signIn, admin, ctrl.Auth.ListUsers)

		authRoutes.GET("/orders/:id", signIn, ctrl.Orders.GetOrders)
		authRoutes.GET("/all-orders", signIn, admin, ctrl.Orders.GetAllOrders)
		authRoutes.PUT("/order-status/:orderId", signIn, admin, ctrl.Orders.UpdateStatus)
	}
}

func registerCategoryRoutes(api *gin.RouterGroup, ctrl *controllers.CategoryController, signIn, admin gin.HandlerFunc) {
	categoryRoutes := api.Group("/category")
	{
		categoryRoutes.POST("/create-category", signIn, admin, ctrl.CreateCategory)
		categoryRoutes.PUT("/update-category/:id", signIn, admin, ctrl.UpdateCategory)
		categoryRoutes.GET("/get-categories", ctrl.GetCategories)
		categoryRoutes.GET("/single-category/:slug", ctrl.GetCategory)
		categoryRoutes.DELETE("/delete-category/:id", signIn, admin, ctrl.DeleteCategory)
	}
}

func registerProductRoutes(api *gin.RouterGroup, ctrl *controllers.ProductController, pay *controllers.PaymentController, signIn, admin gin.HandlerFunc) {
	productRoutes := api.Group("/product")
	{
		productRoutes.POST("/create-product", signIn, admin, ctrl.CreateProduct)
		productRoutes.PUT("/update-product/:id", signIn, admin, ctrl.UpdateProduct)
		productRoutes.DELETE("/delete-product/:id", signIn, admin, ctrl.DeleteProduct)

		productRoutes.GET("/get-product", ctrl.GetProducts)
		productRoutes.GET("/single-product/:slug", ctrl.GetProduct)
		productRoutes.GET("/product-photo/:id", ctrl.GetPhoto)
		productRoutes.GET("/product-count", ctrl.CountProducts)
		productRoutes.GET("/product-list/:page", ctrl.ListPage)
		productRoutes.GET("/search/:keyword", ctrl.Search)
		productRoutes.GET("/similar-product/:pid/:cid", ctrl.Similar)
		productRoutes.GET("/product-category/:slug", ctrl.ByCategory)
		productRoutes.POST("/product-filter", ctrl.Filter)

		// path kept for existing storefront clients
		productRoutes.GET("/braintree/token", pay.ClientToken)
		productRoutes.POST("/braintree/payment", signIn, pay.Checkout)
	}
}
