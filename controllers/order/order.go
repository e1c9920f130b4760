package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tung-Worramet/store-api/apperr"
	"github.com/Tung-Worramet/store-api/cache"
	"github.com/Tung-Worramet/store-api/models"
	"github.com/Tung-Worramet/store-api/permissions"
	"github.com/Tung-Worramet/store-api/storage"
)

// ShippingFee is the flat fee added to every order.
const ShippingFee = 50.0

type CheckoutInput struct {
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Note           string `json:"note"`
	UseProfileData bool   `json:"use_profile_data"`
}

type UpdateOrderStatusInput struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"tracking_number"`
}

// Checkout converts the caller's cart into an order. Order, frozen items and
// stock adjustments happen in one transaction; each product row is locked and
// its stock re-verified there, so a concurrent checkout either waits or fails
// cleanly instead of overselling.
func Checkout(ctx context.Context, db *gorm.DB, tags *cache.Tags, user *models.User, input CheckoutInput) (*models.Order, error) {
	if err := permissions.Authorize(permissions.ActionCreateOrder, user); err != nil {
		return nil, err
	}

	if input.UseProfileData && user.Address != "" && user.Tel != "" {
		input.Address = user.Address
		input.Phone = user.Tel
	}
	if fields := validateShipping(input); len(fields) > 0 {
		return nil, apperr.Validation("Please enter valid shipping information", fields)
	}

	var cart models.Cart
	err := db.Preload("Items").First(&cart, "user_id = ?", user.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && len(cart.Items) == 0) {
		return nil, apperr.InvalidState("Your cart is empty")
	}
	if err != nil {
		return nil, apperr.Transient("Failed to create order", err)
	}

	order := models.Order{
		OrderNumber: GenerateOrderNumber(),
		CustomerID:  user.ID,
		Status:      models.OrderStatusPending,
		TotalAmount: cart.CartTotal + ShippingFee,
		ShippingFee: ShippingFee,
		Address:     input.Address,
		Phone:       input.Phone,
		Note:        input.Note,
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range cart.Items {
			// Re-fetch the live product under a row lock; the cart-time
			// stock check may be stale by now.
			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ?", item.ProductID).Error; err != nil {
				return err
			}

			if product.Stock < item.Count {
				return apperr.InsufficientStock(fmt.Sprintf("Not enough stock for %s", product.Title))
			}

			var mainImage models.ProductImage
			imageURL := ""
			if err := tx.First(&mainImage, "product_id = ? AND is_main = ?", product.ID, true).Error; err == nil {
				imageURL = mainImage.URL
			}

			// Price is the live unit price at checkout; TotalPrice keeps the
			// cart-time line amount. The two can disagree when the product
			// was repriced after the line was added, and the cart-time amount
			// is what the customer is charged.
			orderItem := models.OrderItem{
				OrderID:      order.ID,
				ProductID:    product.ID,
				ProductTitle: product.Title,
				ProductImage: imageURL,
				Price:        product.Price,
				Quantity:     item.Count,
				TotalPrice:   item.Price,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, orderItem)

			updates := map[string]interface{}{
				"stock": product.Stock - item.Count,
				"sold":  product.Sold + item.Count,
			}
			if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(updates).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		var e *apperr.Error
		if errors.As(txErr, &e) {
			return nil, e
		}
		return nil, apperr.Transient("Failed to create order. Please try again later", txErr)
	}

	// The order is committed; emptying the cart and touching caches happen
	// outside the transaction and only get logged on failure.
	if err := db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		log.Printf("Failed to clear cart %s after checkout: %v", cart.ID, err)
	} else if err := db.Model(&models.Cart{}).Where("id = ?", cart.ID).Update("cart_total", 0).Error; err != nil {
		log.Printf("Failed to reset cart total for %s: %v", cart.ID, err)
	}

	invalidateOrderCache(ctx, tags, order.ID, user.ID)
	for _, item := range cart.Items {
		invalidateTag(ctx, tags, cache.KindProducts, item.ProductID)
	}

	return &order, nil
}

// UploadPaymentSlip attaches the payment proof and moves a pending order to
// Paid. Only the order's customer may upload, and only once.
func UploadPaymentSlip(ctx context.Context, db *gorm.DB, tags *cache.Tags, store storage.AssetStore, user *models.User, orderID string, file *multipart.FileHeader) (*models.Order, error) {
	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, apperr.Transient("Failed to upload payment slip", err)
	}

	if order.CustomerID != user.ID {
		return nil, apperr.Unauthorized("You do not have permission for this order")
	}
	if order.Status != models.OrderStatusPending {
		return nil, apperr.InvalidState("This order has already been paid or closed")
	}

	asset, err := store.Upload(file, "payment")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"payment_image": asset.URL,
		"payment_at":    now,
		"status":        models.OrderStatusPaid,
	}
	if err := db.Model(&order).Updates(updates).Error; err != nil {
		return nil, apperr.Transient("Failed to upload payment slip", err)
	}

	invalidateOrderCache(ctx, tags, order.ID, order.CustomerID)
	return &order, nil
}

// CancelOrder lets the customer cancel their own pending order, restoring
// stock and sold counts in the same transaction that flips the status.
func CancelOrder(ctx context.Context, db *gorm.DB, tags *cache.Tags, user *models.User, orderID string) error {
	if err := permissions.Authorize(permissions.ActionCancelOrder, user); err != nil {
		return err
	}

	var order models.Order
	if err := db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Order not found")
		}
		return apperr.Transient("Failed to cancel order", err)
	}

	if order.CustomerID != user.ID {
		return apperr.Unauthorized("You do not have permission for this order")
	}
	if order.Status != models.OrderStatusPending {
		return apperr.InvalidState("Only pending orders can be cancelled")
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return cancelTx(tx, &order, "")
	}); err != nil {
		return apperr.Transient("Failed to cancel order", err)
	}

	invalidateOrderCache(ctx, tags, order.ID, order.CustomerID)
	for _, item := range order.Items {
		invalidateTag(ctx, tags, cache.KindProducts, item.ProductID)
	}
	return nil
}

// UpdateOrderStatus applies an administrative transition. A Cancelled target
// runs the inventory-reversal path; other targets just move the status and
// optionally attach a tracking number.
func UpdateOrderStatus(ctx context.Context, db *gorm.DB, tags *cache.Tags, user *models.User, orderID string, input UpdateOrderStatusInput) error {
	if err := permissions.Authorize(permissions.ActionUpdateOrderStatus, user); err != nil {
		return err
	}

	newStatus, err := ParseOrderStatus(input.Status)
	if err != nil {
		return apperr.Validation(err.Error(), map[string]string{"status": err.Error()})
	}

	var order models.Order
	if err := db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Order not found")
		}
		return apperr.Transient("Failed to update order status", err)
	}

	if err := ValidateTransition(order.Status, newStatus); err != nil {
		return err
	}

	if newStatus == models.OrderStatusCancelled {
		if err := db.Transaction(func(tx *gorm.DB) error {
			return cancelTx(tx, &order, input.TrackingNumber)
		}); err != nil {
			return apperr.Transient("Failed to update order status", err)
		}
	} else {
		updates := map[string]interface{}{"status": newStatus}
		if input.TrackingNumber != "" {
			updates["tracking_number"] = input.TrackingNumber
		}
		if err := db.Model(&order).Updates(updates).Error; err != nil {
			return apperr.Transient("Failed to update order status", err)
		}
	}

	invalidateOrderCache(ctx, tags, order.ID, order.CustomerID)
	if newStatus == models.OrderStatusCancelled {
		for _, item := range order.Items {
			invalidateTag(ctx, tags, cache.KindProducts, item.ProductID)
		}
	}
	return nil
}

// cancelTx restores inventory for every line and marks the order Cancelled.
// Runs inside the caller's transaction so a failing line discards everything.
func cancelTx(tx *gorm.DB, order *models.Order, trackingNumber string) error {
	for _, item := range order.Items {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "id = ?", item.ProductID).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"stock": product.Stock + item.Quantity,
			"sold":  product.Sold - item.Quantity,
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(updates).Error; err != nil {
			return err
		}
	}

	updates := map[string]interface{}{"status": models.OrderStatusCancelled}
	if trackingNumber != "" {
		updates["tracking_number"] = trackingNumber
	}
	return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error
}

// GenerateOrderNumber produces the human-facing identifier: date prefix plus
// a random suffix, e.g. OR20250831-7C2F91AD.
func GenerateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("OR%s-%s", time.Now().Format("20060102"), suffix)
}

// ParseOrderStatus maps a request string onto a known status.
func ParseOrderStatus(status string) (models.OrderStatus, error) {
	switch strings.ToLower(status) {
	case "pending":
		return models.OrderStatusPending, nil
	case "paid":
		return models.OrderStatusPaid, nil
	case "shipped":
		return models.OrderStatusShipped, nil
	case "delivered":
		return models.OrderStatusDelivered, nil
	case "cancelled":
		return models.OrderStatusCancelled, nil
	default:
		return "", errors.New("invalid order status")
	}
}

var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending: {models.OrderStatusPaid, models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusPaid:    {models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusShipped: {models.OrderStatusDelivered, models.OrderStatusCancelled},
	// Delivered and Cancelled are terminal.
}

// ValidateTransition rejects moves the status machine does not define.
func ValidateTransition(from, to models.OrderStatus) error {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return apperr.InvalidState(fmt.Sprintf("Cannot change order status from %s to %s", from, to))
}

func validateShipping(input CheckoutInput) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(input.Address) == "" {
		fields["address"] = "Shipping address is required"
	}
	if strings.TrimSpace(input.Phone) == "" {
		fields["phone"] = "Phone number is required"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func invalidateOrderCache(ctx context.Context, tags *cache.Tags, orderID, customerID string) {
	invalidateTag(ctx, tags, cache.KindOrders, orderID)
	invalidateTag(ctx, tags, cache.KindCarts, customerID)
}

func invalidateTag(ctx context.Context, tags *cache.Tags, kind cache.Kind, id string) {
	if err := tags.Invalidate(ctx, kind, id); err != nil {
		log.Printf("Failed to invalidate %s cache for %s: %v", kind, id, err)
	}
}
