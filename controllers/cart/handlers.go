package cartControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/apperr"
	"github.com/Tung-Worramet/store-api/cache"
	"github.com/Tung-Worramet/store-api/middleware"
)

// GET /user/cart
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		cart, err := GetUserCart(db, user.ID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Header("X-Cache-Tag", cache.IDTag(cache.KindCarts, user.ID))
		c.JSON(http.StatusOK, cart)
	}
}

// GET /user/cart/count
func GetCartItemCountHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		cart, err := GetUserCart(db, user.ID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Header("X-Cache-Tag", cache.IDTag(cache.KindCarts, user.ID))
		c.JSON(http.StatusOK, gin.H{"count": cart.ItemCount()})
	}
}

// POST /user/cart
func AddToCartHandler(db *gorm.DB, tags *cache.Tags) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input AddToCartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if err := AddToCart(c.Request.Context(), db, tags, user, input); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Item added to cart"})
	}
}

// PUT /user/cart/items/:id
func UpdateCartItemHandler(db *gorm.DB, tags *cache.Tags) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input UpdateCartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if err := UpdateCartItem(c.Request.Context(), db, tags, user, c.Param("id"), input); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item updated"})
	}
}

// DELETE /user/cart/items/:id
func RemoveCartItemHandler(db *gorm.DB, tags *cache.Tags) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if err := RemoveCartItem(c.Request.Context(), db, tags, user, c.Param("id")); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
	}
}

// DELETE /user/cart
func ClearCartHandler(db *gorm.DB, tags *cache.Tags) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if err := ClearCart(c.Request.Context(), db, tags, user); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /admin/user-cart/:user_id
func GetUserCartAdminHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		cart, err := GetUserCart(db, userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}
