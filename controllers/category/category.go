package categoryControllers

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
)

type CategoryInput struct {
	Name string `json:"name" binding:"required"`
}

func GetCategories(db *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	if err := db.Order("created_at ASC").Find(&categories).Error; err != nil {
		return nil, apperr.Transient("Failed to fetch categories", err)
	}
	return categories, nil
}

func CreateCategory(ctx context.Context, db *gorm.DB, tags *cache.Tags, user *models.User, input CategoryInput) (*models.Category, error) {
	if err := permissions.Authorize(permissions.ActionManageCategories, user); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("Category name is required", map[string]string{"name": "Category name is required"})
	}

	var existing models.Category
	err := db.First(&existing, "name = ?", name).Error
	if err == nil {
		return nil, apperr.Validation("A category with this name already exists", map[string]string{"name": "A category with this name already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Transient("Failed to create category", err)
	}

	category := models.Category{Name: name, Status: models.CategoryStatusActive}
	if err := db.Create(&category).Error; err != nil {
		return nil, apperr.Transient("Failed to create category", err)
	}

	invalidateCategoryCache(ctx, tags, category.ID)
	return &category, nil
}

func UpdateCategory(ctx context.Context, db *gorm.DB, tags *cache.Tags, user *models.User, categoryID string, input CategoryInput) (*models.Category, error) {
	if err := permissions.Authorize(permissions.ActionManageCategories, user); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("Category name is required", map[string]string{"name": "Category name is required"})
	}

	var category models.Category
	err := db.First(&category, "id = ?", categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Category not found")
	}
	if err != nil {
		return nil, apperr.Transient("Failed to update category", err)
	}

	var conflict models.Category
	if err := db.First(&conflict, "name = ? AND id <> ?", name, categoryID).Error; err == nil {
		return nil, apperr.Validation("A category with this name already exists", map[string]string{"name": "A category with this name already exists"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Transient("Failed to update category", err)
	}

	if err := db.Model(&category).Update("name", name).Error; err != nil {
		return nil, apperr.Transient("Failed to update category", err)
	}

	invalidateCategoryCache(ctx, tags, category.ID)
	return &category, nil
}

// ChangeCategoryStatus soft-deletes or restores a category.
func ChangeCategoryStatus(ctx context.Context, db *gorm.DB, tags *cache.Tags, user *models.User, categoryID string, status models.CategoryStatus) error {
	if err := permissions.Authorize(permissions.ActionManageCategories, user); err != nil {
		return err
	}

	var category models.Category
	err := db.First(&category, "id = ?", categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Category not found")
	}
	if err != nil {
		return apperr.Transient("Failed to change category status", err)
	}

	if category.Status == status {
		return apperr.InvalidState(fmt.Sprintf("Category is already %s", strings.ToLower(string(status))))
	}

	if err := db.Model(&category).Update("status", status).Error; err != nil {
		return apperr.Transient("Failed to change category status", err)
	}

	invalidateCategoryCache(ctx, tags, category.ID)
	return nil
}

func ParseCategoryStatus(status string) (models.CategoryStatus, error) {
	switch strings.ToLower(status) {
	case "active":
		return models.CategoryStatusActive, nil
	case "inactive":
		return models.CategoryStatusInactive, nil
	default:
		return "", errors.New("invalid category status")
	}
}

func invalidateCategoryCache(ctx context.Context, tags *cache.Tags, categoryID string) {
	if err := tags.Invalidate(ctx, cache.KindCategories, categoryID); err != nil {
		log.Printf("Failed to invalidate category cache for %s: %v", categoryID, err)
	}
}
