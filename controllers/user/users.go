package userControllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/apperr"
	"github.com/Tung-Worramet/store-api/cache"
	"github.com/Tung-Worramet/store-api/middleware"
	"github.com/Tung-Worramet/store-api/models"
	"github.com/Tung-Worramet/store-api/storage"
)

type UpdateUserInput struct {
	Name    *string `json:"name"`
	Tel     *string `json:"tel"`
	Address *string `json:"address"`
}

// GET /user
func GetUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Header("X-Cache-Tag", cache.IDTag(cache.KindUsers, user.ID))
		c.JSON(http.StatusOK, user)
	}
}

// PUT /user
func UpdateUserHandler(db *gorm.DB, tags *cache.Tags) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		updates := make(map[string]interface{})
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Tel != nil {
			updates["tel"] = *input.Tel
		}
		if input.Address != nil {
			updates["address"] = *input.Address
		}

		if len(updates) > 0 {
			if err := db.Model(user).Updates(updates).Error; err != nil {
				apperr.Respond(c, apperr.Transient("Failed to update profile", err))
				return
			}
			if err := tags.Invalidate(c.Request.Context(), cache.KindUsers, user.ID); err != nil {
				log.Printf("Failed to invalidate user cache for %s: %v", user.ID, err)
			}
		}

		c.JSON(http.StatusOK, user)
	}
}

// PUT /user/picture  (multipart: "picture" file)
func UpdateUserPictureHandler(db *gorm.DB, tags *cache.Tags, store storage.AssetStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		file, err := c.FormFile("picture")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Picture file is required"})
			return
		}

		asset, err := store.Upload(file, "profile")
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		oldPictureID := user.PictureID
		updates := map[string]interface{}{
			"picture":    asset.URL,
			"picture_id": asset.FileID,
		}
		if err := db.Model(user).Updates(updates).Error; err != nil {
			apperr.Respond(c, apperr.Transient("Failed to update profile picture", err))
			return
		}

		// The replaced asset is gone from the profile either way; a failed
		// delete only leaves an orphan on the asset host.
		if oldPictureID != "" {
			if err := store.Delete(oldPictureID); err != nil {
				log.Printf("Failed to delete old profile picture %s: %v", oldPictureID, err)
			}
		}

		if err := tags.Invalidate(c.Request.Context(), cache.KindUsers, user.ID); err != nil {
			log.Printf("Failed to invalidate user cache for %s: %v", user.ID, err)
		}

		c.JSON(http.StatusOK, user)
	}
}

// GET /admin/users
func GetAllUsersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.
			Select("id", "email", "name", "picture", "tel", "role", "status", "created_at").
			Order("created_at DESC").
			Find(&users).Error; err != nil {
			apperr.Respond(c, apperr.Transient("Failed to fetch users", err))
			return
		}
		c.Header("X-Cache-Tag", cache.GlobalTag(cache.KindUsers))
		c.JSON(http.StatusOK, users)
	}
}
