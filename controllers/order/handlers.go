package orderControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/apperr"
	"github.com/Tung-Worramet/store-api/cache"
	"github.com/Tung-Worramet/store-api/middleware"
	"github.com/Tung-Worramet/store-api/models"
	"github.com/Tung-Worramet/store-api/storage"
)

// POST /user/orders
func CheckoutHandler(db *gorm.DB, tags *cache.Tags, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input CheckoutInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		order, err := Checkout(c.Request.Context(), db, tags, user, input)
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		hub.BroadcastNewOrder(order)
		c.JSON(http.StatusCreated, order)
	}
}

// GET /user/orders
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var orders []models.Order
		if err := db.
			Where("customer_id = ?", user.ID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			apperr.Respond(c, apperr.Transient("Failed to fetch orders", err))
			return
		}

		c.Header("X-Cache-Tag", cache.GlobalTag(cache.KindOrders))
		c.JSON(http.StatusOK, orders)
	}
}

// GET /user/orders/:id
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var order models.Order
		err := db.
			Preload("Items").
			Preload("Customer").
			First(&order, "id = ? OR order_number = ?", c.Param("id"), c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Respond(c, apperr.NotFound("Order not found"))
			return
		}
		if err != nil {
			apperr.Respond(c, apperr.Transient("Failed to fetch order", err))
			return
		}

		// Customers only see their own orders.
		if order.CustomerID != user.ID && user.Role != models.UserRoleAdmin {
			apperr.Respond(c, apperr.NotFound("Order not found"))
			return
		}

		c.Header("X-Cache-Tag", cache.IDTag(cache.KindOrders, order.ID))
		c.JSON(http.StatusOK, order)
	}
}

// POST /user/orders/:id/payment-slip
func UploadPaymentSlipHandler(db *gorm.DB, tags *cache.Tags, store storage.AssetStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		file, err := c.FormFile("slip")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment slip image is required"})
			return
		}

		order, err := UploadPaymentSlip(c.Request.Context(), db, tags, store, user, c.Param("id"), file)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// POST /user/orders/:id/cancel
func CancelOrderHandler(db *gorm.DB, tags *cache.Tags) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if err := CancelOrder(c.Request.Context(), db, tags, user, c.Param("id")); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order cancelled"})
	}
}

// GET /admin/orders?status=
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.
			Preload("Customer").
			Preload("Items").
			Order("created_at DESC")

		if status := c.Query("status"); status != "" {
			parsed, err := ParseOrderStatus(status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			query = query.Where("status = ?", parsed)
		}

		var orders []models.Order
		if err := query.Find(&orders).Error; err != nil {
			apperr.Respond(c, apperr.Transient("Failed to fetch orders", err))
			return
		}

		c.Header("X-Cache-Tag", cache.GlobalTag(cache.KindOrders))
		c.JSON(http.StatusOK, orders)
	}
}

// PUT /admin/orders/:id/status
func UpdateOrderStatusHandler(db *gorm.DB, tags *cache.Tags) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input UpdateOrderStatusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if err := UpdateOrderStatus(c.Request.Context(), db, tags, user, c.Param("id"), input); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
	}
}
