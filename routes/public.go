package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	categoryControllers "github.com/Tung-Worramet/store-api/controllers/category"
	productControllers "github.com/Tung-Worramet/store-api/controllers/product"
)

// SetupPublicRoutes registers the unauthenticated catalog endpoints.
func SetupPublicRoutes(r *gin.Engine, db *gorm.DB) {
	r.GET("/products", productControllers.GetProductsHandler(db))
	r.GET("/products/featured", productControllers.GetFeaturedProductsHandler(db))
	r.GET("/products/:id", productControllers.GetProductByIDHandler(db))
	r.GET("/categories", categoryControllers.GetCategoriesHandler(db))
}
