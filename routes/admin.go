package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/cache"
	cartControllers "github.com/Tung-Worramet/store-api/controllers/cart"
	categoryControllers "github.com/Tung-Worramet/store-api/controllers/category"
	orderControllers "github.com/Tung-Worramet/store-api/controllers/order"
	productControllers "github.com/Tung-Worramet/store-api/controllers/product"
	userControllers "github.com/Tung-Worramet/store-api/controllers/user"
	"github.com/Tung-Worramet/store-api/middleware"
	"github.com/Tung-Worramet/store-api/storage"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires a valid token
// and the Admin role.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB, tags *cache.Tags, store storage.AssetStore, hub *orderControllers.Hub) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateToken(db), middleware.RequireAdmin())
	{
		// User management
		adminGroup.GET("/users", userControllers.GetAllUsersHandler(db))
		adminGroup.GET("/user-cart/:user_id", cartControllers.GetUserCartAdminHandler(db))

		// Product management
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productControllers.CreateProductHandler(db, tags, store))
			productAdmin.PUT("/:id", productControllers.UpdateProductHandler(db, tags, store))
			productAdmin.PUT("/:id/status", productControllers.ChangeProductStatusHandler(db, tags))
		}

		// Category management
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", categoryControllers.CreateCategoryHandler(db, tags))
			categoryAdmin.PUT("/:id", categoryControllers.UpdateCategoryHandler(db, tags))
			categoryAdmin.PUT("/:id/status", categoryControllers.ChangeCategoryStatusHandler(db, tags))
		}

		// Order management
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(db))
			orderAdmin.PUT("/:id/status", orderControllers.UpdateOrderStatusHandler(db, tags))
			orderAdmin.GET("/export-excel", orderControllers.ExportOrdersToExcelHandler(db))
			orderAdmin.GET("/ws", hub.Handler())
		}
	}
}
