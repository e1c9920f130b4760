package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/cache"
	orderControllers "github.com/Tung-Worramet/store-api/controllers/order"
	"github.com/Tung-Worramet/store-api/storage"
)

// SetupRoutes is the single entry point wiring up the public, auth, user and
// admin route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, tags *cache.Tags, store storage.AssetStore, hub *orderControllers.Hub) {
	// Public catalog + auth (no middleware)
	SetupAuthRoutes(r, db, tags)
	SetupPublicRoutes(r, db)

	// Authenticated customer routes
	SetupUserRoutes(r, db, tags, store, hub)

	// Admin routes (authenticated + admin role)
	SetupAdminRoutes(r, db, tags, store, hub)
}
