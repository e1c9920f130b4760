package cartControllers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/apperr"
	"github.com/Tung-Worramet/store-api/cache"
	"github.com/Tung-Worramet/store-api/models"
	"github.com/Tung-Worramet/store-api/permissions"
)

type AddToCartInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Count     int    `json:"count" binding:"required"`
}

type UpdateCartItemInput struct {
	NewCount int `json:"new_count" binding:"required"`
}

// GetUserCart loads the caller's cart with product details. A user without a
// cart gets an empty one back; the row is only created on first add.
func GetUserCart(db *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("cart_items.created_at ASC") }).
		Preload("Items.Product").
		Preload("Items.Product.Images").
		Preload("Items.Product.Category").
		First(&cart, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, apperr.Transient("Failed to fetch cart", err)
	}
	return &cart, nil
}

// AddToCart puts count units of a product into the caller's cart, creating
// the cart lazily and accumulating quantity when a line for the product
// already exists.
func AddToCart(ctx context.Context, db *gorm.DB, tags *cache.Tags, user *models.User, input AddToCartInput) error {
	if err := permissions.Authorize(permissions.ActionUpdateCart, user); err != nil {
		return err
	}
	if input.Count < 1 {
		return apperr.Validation("Quantity must be at least 1", map[string]string{"count": "Quantity must be at least 1"})
	}

	var product models.Product
	if err := db.First(&product, "id = ? AND status = ?", input.ProductID, models.ProductStatusActive).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Product not found")
		}
		return apperr.Transient("Failed to add item to cart", err)
	}

	if product.Stock < input.Count {
		return apperr.InsufficientStock(fmt.Sprintf("Not enough stock for %s", product.Title))
	}

	var cart models.Cart
	err := db.First(&cart, "user_id = ?", user.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: user.ID, CartTotal: 0}
		if err := db.Create(&cart).Error; err != nil {
			return apperr.Transient("Failed to add item to cart", err)
		}
	} else if err != nil {
		return apperr.Transient("Failed to add item to cart", err)
	}

	var item models.CartItem
	err = db.First(&item, "cart_id = ? AND product_id = ?", cart.ID, product.ID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Count:     input.Count,
			Price:     float64(input.Count) * product.Price,
		}
		if err := db.Create(&item).Error; err != nil {
			return apperr.Transient("Failed to add item to cart", err)
		}
	case err != nil:
		return apperr.Transient("Failed to add item to cart", err)
	default:
		newCount := item.Count + input.Count
		updates := map[string]interface{}{
			"count": newCount,
			"price": float64(newCount) * product.Price,
		}
		if err := db.Model(&item).Updates(updates).Error; err != nil {
			return apperr.Transient("Failed to add item to cart", err)
		}
	}

	if err := recalculateCartTotal(db, cart.ID); err != nil {
		return err
	}

	invalidateCartCache(ctx, tags, user.ID)
	return nil
}

// UpdateCartItem sets a line to an absolute quantity and reprices it.
func UpdateCartItem(ctx context.Context, db *gorm.DB, tags *cache.Tags, user *models.User, cartItemID string, input UpdateCartItemInput) error {
	if err := permissions.Authorize(permissions.ActionUpdateCart, user); err != nil {
		return err
	}
	if input.NewCount < 1 {
		return apperr.Validation("Quantity must be at least 1", map[string]string{"new_count": "Quantity must be at least 1"})
	}

	item, err := ownedCartItem(db, user.ID, cartItemID)
	if err != nil {
		return err
	}

	if item.Product == nil || item.Product.Stock < input.NewCount {
		return apperr.InsufficientStock("Not enough stock for this product")
	}

	updates := map[string]interface{}{
		"count": input.NewCount,
		"price": float64(input.NewCount) * item.Product.Price,
	}
	if err := db.Model(item).Updates(updates).Error; err != nil {
		return apperr.Transient("Failed to update cart item", err)
	}

	if err := recalculateCartTotal(db, item.CartID); err != nil {
		return err
	}

	invalidateCartCache(ctx, tags, user.ID)
	return nil
}

// RemoveCartItem deletes a line from the caller's cart.
func RemoveCartItem(ctx context.Context, db *gorm.DB, tags *cache.Tags, user *models.User, cartItemID string) error {
	if err := permissions.Authorize(permissions.ActionUpdateCart, user); err != nil {
		return err
	}

	item, err := ownedCartItem(db, user.ID, cartItemID)
	if err != nil {
		return err
	}

	if err := db.Delete(&models.CartItem{}, "id = ?", item.ID).Error; err != nil {
		return apperr.Transient("Failed to remove cart item", err)
	}

	if err := recalculateCartTotal(db, item.CartID); err != nil {
		return err
	}

	invalidateCartCache(ctx, tags, user.ID)
	return nil
}

// ClearCart removes every line and zeroes the total. The cart row itself is
// kept so later adds reuse it.
func ClearCart(ctx context.Context, db *gorm.DB, tags *cache.Tags, user *models.User) error {
	if err := permissions.Authorize(permissions.ActionUpdateCart, user); err != nil {
		return err
	}

	var cart models.Cart
	if err := db.First(&cart, "user_id = ?", user.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Your cart is empty")
		}
		return apperr.Transient("Failed to clear cart", err)
	}

	if err := db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return apperr.Transient("Failed to clear cart", err)
	}
	if err := db.Model(&models.Cart{}).Where("id = ?", cart.ID).Update("cart_total", 0).Error; err != nil {
		return apperr.Transient("Failed to clear cart", err)
	}

	invalidateCartCache(ctx, tags, user.ID)
	return nil
}

// recalculateCartTotal derives the aggregate from the persisted line prices.
// The total is never adjusted incrementally, so a partially failed mutation
// cannot leave it drifted.
func recalculateCartTotal(db *gorm.DB, cartID string) error {
	var total float64
	if err := db.Model(&models.CartItem{}).
		Where("cart_id = ?", cartID).
		Select("COALESCE(SUM(price), 0)").
		Scan(&total).Error; err != nil {
		return apperr.Transient("Failed to update cart total", err)
	}
	if err := db.Model(&models.Cart{}).Where("id = ?", cartID).Update("cart_total", total).Error; err != nil {
		return apperr.Transient("Failed to update cart total", err)
	}
	return nil
}

func ownedCartItem(db *gorm.DB, userID, cartItemID string) (*models.CartItem, error) {
	var item models.CartItem
	err := db.Preload("Product").First(&item, "id = ?", cartItemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Cart item not found")
	}
	if err != nil {
		return nil, apperr.Transient("Failed to fetch cart item", err)
	}

	var cart models.Cart
	if err := db.First(&cart, "id = ?", item.CartID).Error; err != nil {
		return nil, apperr.Transient("Failed to fetch cart item", err)
	}
	if cart.UserID != userID {
		return nil, apperr.NotFound("Cart item not found")
	}
	return &item, nil
}

func invalidateCartCache(ctx context.Context, tags *cache.Tags, userID string) {
	if err := tags.Invalidate(ctx, cache.KindCarts, userID); err != nil {
		log.Printf("Failed to invalidate cart cache for %s: %v", userID, err)
	}
}
