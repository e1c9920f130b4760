package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/cache"
	authControllers "github.com/Tung-Worramet/store-api/controllers/auth"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB, tags *cache.Tags) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", authControllers.SignupHandler(db, tags))
		authGroup.POST("/signin", authControllers.SigninHandler(db))
		authGroup.POST("/signout", authControllers.SignoutHandler())
	}
}
