package handlers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AyaOsaama/furniture-api/internal/domain"
	"github.com/AyaOsaama/furniture-api/internal/repository"
)

// ProductStore is what the product handler needs from the product
// collection.
type ProductStore interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter bson.M) ([]*domain.Product, int64, error)
	Update(ctx context.Context, id string, set bson.M) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	AddVariant(ctx context.Context, id string, variant domain.Variant) (*domain.Product, error)
	SetVariants(ctx context.Context, id string, variants []domain.Variant) (*domain.Product, error)
	RemoveVariant(ctx context.Context, id string, variantID primitive.ObjectID) (*domain.Product, error)
	TotalProducts(ctx context.Context) (int64, error)
	TotalVariants(ctx context.Context) (int64, error)
	BrandsCount(ctx context.Context) (int64, error)
	TopRatedVariants(ctx context.Context, limit int64) ([]repository.TopRatedVariant, error)
	DiscountedVariantsCount(ctx context.Context) (int64, error)
	LowStockVariantsCount(ctx context.Context, threshold int) (int64, error)
}

// Relater finds related products; the relevance matcher implements it.
type Relater interface {
	RelatedProducts(ctx context.Context, productID string) ([]*domain.Product, error)
	ProductsByTag(ctx context.Context, tag string) ([]*domain.Product, error)
}

// ImageSaver persists uploaded images and returns their public URLs.
type ImageSaver interface {
	Save(file *multipart.FileHeader) (string, error)
	SaveAll(files []*multipart.FileHeader) ([]string, error)
}

const (
	topRatedVariantsLimit = 5
	lowStockThreshold     = 5
)

type ProductHandler struct {
	products ProductStore
	relater  Relater
	images   ImageSaver
}

func NewProductHandler(products ProductStore, relater Relater, images ImageSaver) *ProductHandler {
	return &ProductHandler{products: products, relater: relater, images: images}
}

type categoryRefsInput struct {
	Main string `json:"main"`
	Sub  string `json:"sub"`
}

// CreateProduct accepts a multipart form: brand plus categories,
// description, material and variants as JSON-encoded fields, with
// variantImage/variantImages file parts landing on the first variant.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var (
		categories categoryRefsInput
		refs       domain.CategoryRefs
		product    domain.Product
	)

	product.Brand = c.PostForm("brand")

	if raw := c.PostForm("categories"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &categories); err != nil {
			respondError(c, newAPIError(http.StatusBadRequest, "Invalid categories payload"))
			return
		}
		var err error
		if refs.Main, err = primitive.ObjectIDFromHex(categories.Main); err != nil {
			respondError(c, newAPIError(http.StatusBadRequest, "Invalid main category id"))
			return
		}
		if refs.Sub, err = primitive.ObjectIDFromHex(categories.Sub); err != nil {
			respondError(c, newAPIError(http.StatusBadRequest, "Invalid subcategory id"))
			return
		}
	}
	product.Categories = refs

	if raw := c.PostForm("description"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &product.Description); err != nil {
			respondError(c, newAPIError(http.StatusBadRequest, "Invalid description payload"))
			return
		}
	}
	if raw := c.PostForm("material"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &product.Material); err != nil {
			respondError(c, newAPIError(http.StatusBadRequest, "Invalid material payload"))
			return
		}
	}
	if raw := c.PostForm("variants"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &product.Variants); err != nil {
			respondError(c, newAPIError(http.StatusBadRequest, "Variants must be an array"))
			return
		}
	}

	for _, v := range product.Variants {
		if !v.DiscountValid() {
			respondError(c, newAPIError(http.StatusBadRequest, "Discount price must be less than the actual price"))
			return
		}
	}

	if len(product.Variants) > 0 {
		if file, err := c.FormFile("variantImage"); err == nil {
			url, err := h.images.Save(file)
			if err != nil {
				respondError(c, err)
				return
			}
			product.Variants[0].Image = url
		}
		if form, err := c.MultipartForm(); err == nil {
			if files := form.File["variantImages"]; len(files) > 0 {
				urls, err := h.images.SaveAll(files)
				if err != nil {
					respondError(c, err)
					return
				}
				product.Variants[0].Images = urls
			}
		}
	}

	if err := h.products.Create(c.Request.Context(), &product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": product})
}

// GetAllProducts lists every product, optionally narrowed by a brand or
// a description keyword. No pagination.
func (h *ProductHandler) GetAllProducts(c *gin.Context) {
	filter := bson.M{}
	if brand := c.Query("brand"); brand != "" {
		filter["brand"] = brand
	}
	if keyword := c.Query("keyword"); keyword != "" {
		regex := bson.M{"$regex": keyword, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"description.en": regex},
			bson.M{"description.ar": regex},
		}
	}

	products, totalCount, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "All products",
		"totalCount": totalCount,
		"results":    len(products),
		"products":   products,
	})
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	product, err := h.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "product": product})
}

type updateProductInput struct {
	Brand       *string            `json:"brand"`
	Categories  *categoryRefsInput `json:"categories"`
	Description *domain.Localized  `json:"description"`
	Material    *domain.Localized  `json:"material"`
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var input updateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	set := bson.M{}
	if input.Brand != nil {
		set["brand"] = *input.Brand
	}
	if input.Categories != nil {
		main, err := primitive.ObjectIDFromHex(input.Categories.Main)
		if err != nil {
			respondError(c, newAPIError(http.StatusBadRequest, "Invalid main category id"))
			return
		}
		sub, err := primitive.ObjectIDFromHex(input.Categories.Sub)
		if err != nil {
			respondError(c, newAPIError(http.StatusBadRequest, "Invalid subcategory id"))
			return
		}
		set["categories"] = domain.CategoryRefs{Main: main, Sub: sub}
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Material != nil {
		set["material"] = *input.Material
	}

	product, err := h.products.Update(c.Request.Context(), c.Param("id"), set)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func (h *ProductHandler) GetTotalProducts(c *gin.Context) {
	count, err := h.products.TotalProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalProducts": count})
}

func (h *ProductHandler) GetTotalVariants(c *gin.Context) {
	count, err := h.products.TotalVariants(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalVariants": count})
}

func (h *ProductHandler) GetBrandsCount(c *gin.Context) {
	count, err := h.products.BrandsCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brandsCount": count})
}

func (h *ProductHandler) GetTopRatedVariants(c *gin.Context) {
	topRated, err := h.products.TopRatedVariants(c.Request.Context(), topRatedVariantsLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topRated": topRated})
}

func (h *ProductHandler) GetDiscountedVariantsCount(c *gin.Context) {
	count, err := h.products.DiscountedVariantsCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"discountedVariants": count})
}

func (h *ProductHandler) GetLowStockVariants(c *gin.Context) {
	count, err := h.products.LowStockVariantsCount(c.Request.Context(), lowStockThreshold)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lowStockVariants": count})
}

func (h *ProductHandler) GetRelatedProducts(c *gin.Context) {
	related, err := h.relater.RelatedProducts(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, related)
}

func (h *ProductHandler) GetProductsByTag(c *gin.Context) {
	products, err := h.relater.ProductsByTag(c.Request.Context(), c.Param("tag"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}
