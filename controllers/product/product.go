package productControllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/apperr"
	"github.com/Tung-Worramet/store-api/cache"
	"github.com/Tung-Worramet/store-api/models"
	"github.com/Tung-Worramet/store-api/permissions"
	"github.com/Tung-Worramet/store-api/storage"
)

const defaultPageSize = 12

type ProductInput struct {
	Title          string
	Description    string
	Cost           float64
	BasePrice      float64
	Price          float64
	Stock          int
	CategoryID     string
	Images         []storage.Asset
	MainImageIndex int
}

type UpdateProductInput struct {
	ProductInput
	DeletedImageIDs []string
}

type ProductPage struct {
	Products   []models.Product `json:"products"`
	TotalCount int64            `json:"total_count"`
}

// GetProducts returns one page of the catalog plus the total row count.
func GetProducts(db *gorm.DB, page, limit int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	var products []models.Product
	if err := db.
		Preload("Category").
		Preload("Images").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, apperr.Transient("Failed to fetch products", err)
	}

	var totalCount int64
	if err := db.Model(&models.Product{}).Count(&totalCount).Error; err != nil {
		return nil, apperr.Transient("Failed to fetch products", err)
	}

	return &ProductPage{Products: products, TotalCount: totalCount}, nil
}

func GetProductByID(db *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	err := db.Preload("Category").Preload("Images").First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperr.Transient("Failed to fetch product", err)
	}
	return &product, nil
}

// GetFeaturedProducts returns the best sellers still on sale.
func GetFeaturedProducts(db *gorm.DB) ([]models.Product, error) {
	var products []models.Product
	if err := db.
		Where("status = ?", models.ProductStatusActive).
		Preload("Category").
		Preload("Images").
		Order("sold DESC").
		Limit(8).
		Find(&products).Error; err != nil {
		return nil, apperr.Transient("Failed to fetch featured products", err)
	}
	return products, nil
}

// CreateProduct stores a product and its images in one transaction, flagging
// exactly one image as main.
func CreateProduct(ctx context.Context, db *gorm.DB, tags *cache.Tags, user *models.User, input ProductInput) (*models.Product, error) {
	if err := permissions.Authorize(permissions.ActionManageProducts, user); err != nil {
		return nil, err
	}
	if fields := validateProduct(input); len(fields) > 0 {
		return nil, apperr.Validation("Please enter valid product information", fields)
	}

	if err := activeCategoryExists(db, input.CategoryID); err != nil {
		return nil, err
	}

	product := models.Product{
		Title:       input.Title,
		Description: input.Description,
		Cost:        input.Cost,
		BasePrice:   input.BasePrice,
		Price:       input.Price,
		Stock:       input.Stock,
		Status:      models.ProductStatusActive,
		CategoryID:  input.CategoryID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		for i, image := range input.Images {
			img := models.ProductImage{
				URL:       image.URL,
				FileID:    image.FileID,
				IsMain:    i == input.MainImageIndex,
				ProductID: product.ID,
			}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
			product.Images = append(product.Images, img)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Transient("Failed to create product", err)
	}

	invalidateProductCache(ctx, tags, product.ID)
	return &product, nil
}

// UpdateProduct reconciles the image set: removed images leave the asset host
// and the table, new ones come in unflagged, then the main flag is re-elected
// in one pass so at most one image carries it.
func UpdateProduct(ctx context.Context, db *gorm.DB, tags *cache.Tags, store storage.AssetStore, user *models.User, productID string, input UpdateProductInput) (*models.Product, error) {
	if err := permissions.Authorize(permissions.ActionManageProducts, user); err != nil {
		return nil, err
	}
	if fields := validateProduct(input.ProductInput); len(fields) > 0 {
		return nil, apperr.Validation("Please enter valid product information", fields)
	}

	var existing models.Product
	err := db.Preload("Images").First(&existing, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperr.Transient("Failed to update product", err)
	}

	if err := activeCategoryExists(db, input.CategoryID); err != nil {
		return nil, err
	}

	// Asset-host deletes happen before the transaction; a leftover remote
	// file is recoverable, a dangling DB row pointing at a deleted file is
	// not.
	for _, deletedID := range input.DeletedImageIDs {
		for _, image := range existing.Images {
			if image.ID == deletedID {
				if err := store.Delete(image.FileID); err != nil {
					log.Printf("Failed to delete image %s from asset store: %v", image.FileID, err)
				}
			}
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":       input.Title,
			"description": input.Description,
			"cost":        input.Cost,
			"base_price":  input.BasePrice,
			"price":       input.Price,
			"stock":       input.Stock,
			"category_id": input.CategoryID,
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Updates(updates).Error; err != nil {
			return err
		}

		if len(input.DeletedImageIDs) > 0 {
			if err := tx.Where("id IN ? AND product_id = ?", input.DeletedImageIDs, productID).
				Delete(&models.ProductImage{}).Error; err != nil {
				return err
			}
		}

		// Clear every main flag before electing the new one.
		if err := tx.Model(&models.ProductImage{}).Where("product_id = ?", productID).
			Update("is_main", false).Error; err != nil {
			return err
		}

		for _, image := range input.Images {
			img := models.ProductImage{
				URL:       image.URL,
				FileID:    image.FileID,
				IsMain:    false,
				ProductID: productID,
			}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
		}

		var allImages []models.ProductImage
		if err := tx.Where("product_id = ?", productID).Order("created_at ASC").Find(&allImages).Error; err != nil {
			return err
		}
		if idx := electMainIndex(len(allImages), input.MainImageIndex); idx >= 0 {
			if err := tx.Model(&models.ProductImage{}).Where("id = ?", allImages[idx].ID).
				Update("is_main", true).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, apperr.Transient("Failed to update product", err)
	}

	invalidateProductCache(ctx, tags, productID)
	return GetProductByID(db, productID)
}

// ChangeProductStatus flips the soft-delete status.
func ChangeProductStatus(ctx context.Context, db *gorm.DB, tags *cache.Tags, user *models.User, productID string, status models.ProductStatus) error {
	if err := permissions.Authorize(permissions.ActionManageProducts, user); err != nil {
		return err
	}

	var product models.Product
	err := db.First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Product not found")
	}
	if err != nil {
		return apperr.Transient("Failed to change product status", err)
	}

	if product.Status == status {
		return apperr.InvalidState(fmt.Sprintf("Product is already %s", strings.ToLower(string(status))))
	}

	if err := db.Model(&product).Update("status", status).Error; err != nil {
		return apperr.Transient("Failed to change product status", err)
	}

	invalidateProductCache(ctx, tags, productID)
	return nil
}

func ParseProductStatus(status string) (models.ProductStatus, error) {
	switch strings.ToLower(status) {
	case "active":
		return models.ProductStatusActive, nil
	case "inactive":
		return models.ProductStatusInactive, nil
	default:
		return "", errors.New("invalid product status")
	}
}

// electMainIndex clamps the requested main-image index to the image set;
// -1 means there is nothing to flag.
func electMainIndex(imageCount, requested int) int {
	if imageCount == 0 {
		return -1
	}
	if requested < 0 {
		return 0
	}
	if requested >= imageCount {
		return imageCount - 1
	}
	return requested
}

func validateProduct(input ProductInput) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(input.Title) == "" {
		fields["title"] = "Title is required"
	}
	if input.BasePrice <= 0 {
		fields["base_price"] = "Base price must be greater than zero"
	}
	if input.Price <= 0 {
		fields["price"] = "Price must be greater than zero"
	}
	if input.Stock < 0 {
		fields["stock"] = "Stock cannot be negative"
	}
	if input.CategoryID == "" {
		fields["category_id"] = "Category is required"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func activeCategoryExists(db *gorm.DB, categoryID string) error {
	var category models.Category
	err := db.First(&category, "id = ? AND status = ?", categoryID, models.CategoryStatusActive).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Selected category not found or inactive")
	}
	if err != nil {
		return apperr.Transient("Failed to validate category", err)
	}
	return nil
}

func invalidateProductCache(ctx context.Context, tags *cache.Tags, productID string) {
	if err := tags.Invalidate(ctx, cache.KindProducts, productID); err != nil {
		log.Printf("Failed to invalidate product cache for %s: %v", productID, err)
	}
}
