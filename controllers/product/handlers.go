package productControllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Tung-Worramet/store-api/apperr"
	"github.com/Tung-Worramet/store-api/cache"
	"github.com/Tung-Worramet/store-api/middleware"
	"github.com/Tung-Worramet/store-api/storage"
)

// GET /products?page=&limit=
func GetProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

		result, err := GetProducts(db, page, limit)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Header("X-Cache-Tag", cache.GlobalTag(cache.KindProducts))
		c.JSON(http.StatusOK, result)
	}
}

// GET /products/featured
func GetFeaturedProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := GetFeaturedProducts(db)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Header("X-Cache-Tag", cache.GlobalTag(cache.KindProducts))
		c.JSON(http.StatusOK, products)
	}
}

// GET /products/:id
func GetProductByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := GetProductByID(db, c.Param("id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Header("X-Cache-Tag", cache.IDTag(cache.KindProducts, product.ID))
		c.JSON(http.StatusOK, product)
	}
}

// POST /admin/products  (multipart: product fields + "images" files)
func CreateProductHandler(db *gorm.DB, tags *cache.Tags, store storage.AssetStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		input, err := bindProductForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		assets, err := uploadImages(c, store)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		input.Images = assets

		product, err := CreateProduct(c.Request.Context(), db, tags, user, *input)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

// PUT /admin/products/:id  (multipart: product fields + "images" files +
// "deleted_image_ids" comma list)
func UpdateProductHandler(db *gorm.DB, tags *cache.Tags, store storage.AssetStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		base, err := bindProductForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		assets, err := uploadImages(c, store)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		base.Images = assets

		input := UpdateProductInput{ProductInput: *base}
		if raw := c.PostForm("deleted_image_ids"); raw != "" {
			for _, id := range strings.Split(raw, ",") {
				if id = strings.TrimSpace(id); id != "" {
					input.DeletedImageIDs = append(input.DeletedImageIDs, id)
				}
			}
		}

		product, err := UpdateProduct(c.Request.Context(), db, tags, store, user, c.Param("id"), input)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// PUT /admin/products/:id/status
func ChangeProductStatusHandler(db *gorm.DB, tags *cache.Tags) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		status, err := ParseProductStatus(input.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := ChangeProductStatus(c.Request.Context(), db, tags, user, c.Param("id"), status); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product status updated"})
	}
}

func bindProductForm(c *gin.Context) (*ProductInput, error) {
	input := &ProductInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		CategoryID:  c.PostForm("category_id"),
	}

	var err error
	if input.Cost, err = parseFloatField(c.PostForm("cost")); err != nil {
		return nil, errInvalidField("cost")
	}
	if input.BasePrice, err = parseFloatField(c.PostForm("base_price")); err != nil {
		return nil, errInvalidField("base_price")
	}
	if input.Price, err = parseFloatField(c.PostForm("price")); err != nil {
		return nil, errInvalidField("price")
	}
	if raw := c.PostForm("stock"); raw != "" {
		if input.Stock, err = strconv.Atoi(raw); err != nil {
			return nil, errInvalidField("stock")
		}
	}
	if raw := c.PostForm("main_image_index"); raw != "" {
		if input.MainImageIndex, err = strconv.Atoi(raw); err != nil {
			return nil, errInvalidField("main_image_index")
		}
	}
	return input, nil
}

func uploadImages(c *gin.Context, store storage.AssetStore) ([]storage.Asset, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	var assets []storage.Asset
	for _, file := range form.File["images"] {
		asset, err := store.Upload(file, "product")
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func parseFloatField(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func errInvalidField(name string) error {
	return fmt.Errorf("Invalid %s", name)
}
