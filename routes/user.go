package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/cache"
	cartControllers "github.com/Tung-Worramet/store-api/controllers/cart"
	orderControllers "github.com/Tung-Worramet/store-api/controllers/order"
	userControllers "github.com/Tung-Worramet/store-api/controllers/user"
	"github.com/Tung-Worramet/store-api/middleware"
	"github.com/Tung-Worramet/store-api/storage"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires a valid token.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB, tags *cache.Tags, store storage.AssetStore, hub *orderControllers.Hub) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken(db))
	{
		// Profile
		userGroup.GET("", userControllers.GetUserHandler(db))
		userGroup.PUT("", userControllers.UpdateUserHandler(db, tags))
		userGroup.PUT("/picture", userControllers.UpdateUserPictureHandler(db, tags, store))

		// Shopping cart
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetCartHandler(db))
			cartGroup.GET("/count", cartControllers.GetCartItemCountHandler(db))
			cartGroup.POST("", cartControllers.AddToCartHandler(db, tags))
			cartGroup.PUT("/items/:id", cartControllers.UpdateCartItemHandler(db, tags))
			cartGroup.DELETE("/items/:id", cartControllers.RemoveCartItemHandler(db, tags))
			cartGroup.DELETE("", cartControllers.ClearCartHandler(db, tags))
		}

		// Orders
		orderGroup := userGroup.Group("/orders")
		{
			orderGroup.POST("", orderControllers.CheckoutHandler(db, tags, hub))
			orderGroup.GET("", orderControllers.GetUserOrdersHandler(db))
			orderGroup.GET("/:id", orderControllers.GetOrderByIDHandler(db))
			orderGroup.POST("/:id/payment-slip", orderControllers.UploadPaymentSlipHandler(db, tags, store))
			orderGroup.POST("/:id/cancel", orderControllers.CancelOrderHandler(db, tags))
		}
	}
}
