package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AyaOsaama/furniture-api/internal/domain"
)

// Variant handlers live on ProductHandler: variants are embedded
// sub-documents of products, with no store of their own.

// AddVariant appends a variant from a multipart form (name, description
// and material as JSON fields, price/discountPrice/inStock as plain
// fields, image/images file parts).
func (h *ProductHandler) AddVariant(c *gin.Context) {
	productID := c.Param("id")

	// 404 before any upload work.
	if _, err := h.products.GetByID(c.Request.Context(), productID); err != nil {
		respondError(c, err)
		return
	}

	var variant domain.Variant
	if raw := c.PostForm("name"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &variant.Name); err != nil {
			respondError(c, newAPIError(http.StatusBadRequest, "Invalid name payload"))
			return
		}
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price <= 0 {
		respondError(c, newAPIError(http.StatusBadRequest, "Invalid price"))
		return
	}
	variant.Price = price

	if raw := c.PostForm("discountPrice"); raw != "" {
		discount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, newAPIError(http.StatusBadRequest, "Invalid discount price"))
			return
		}
		variant.DiscountPrice = discount
	}
	if !variant.DiscountValid() {
		respondError(c, newAPIError(http.StatusBadRequest, "Discount price must be less than the actual price"))
		return
	}

	if raw := c.PostForm("inStock"); raw != "" {
		inStock, err := strconv.Atoi(raw)
		if err != nil || inStock < 0 {
			respondError(c, newAPIError(http.StatusBadRequest, "Invalid stock count"))
			return
		}
		variant.InStock = inStock
	}

	if file, err := c.FormFile("image"); err == nil {
		url, err := h.images.Save(file)
		if err != nil {
			respondError(c, err)
			return
		}
		variant.Image = url
	}
	if form, err := c.MultipartForm(); err == nil {
		if files := form.File["images"]; len(files) > 0 {
			urls, err := h.images.SaveAll(files)
			if err != nil {
				respondError(c, err)
				return
			}
			variant.Images = urls
		}
	}

	product, err := h.products.AddVariant(c.Request.Context(), productID, variant)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Variant added", "product": product})
}

// UpdateVariant rewrites one variant in place: read the whole product,
// change the addressed index, write the variants array back.
func (h *ProductHandler) UpdateVariant(c *gin.Context) {
	productID := c.Param("id")

	variantID, err := primitive.ObjectIDFromHex(c.Param("variantId"))
	if err != nil {
		respondError(c, newAPIError(http.StatusNotFound, "Variant not found"))
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	idx := product.VariantIndex(variantID)
	if idx < 0 {
		respondError(c, newAPIError(http.StatusNotFound, "Variant not found"))
		return
	}
	variant := product.Variants[idx]

	form, _ := c.MultipartForm()
	if form != nil {
		if raw, ok := formValue(form.Value, "name"); ok {
			if err := json.Unmarshal([]byte(raw), &variant.Name); err != nil {
				respondError(c, newAPIError(http.StatusBadRequest, "Invalid name payload"))
				return
			}
		}
		if raw, ok := formValue(form.Value, "price"); ok {
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil || price <= 0 {
				respondError(c, newAPIError(http.StatusBadRequest, "Invalid price"))
				return
			}
			variant.Price = price
		}
		if raw, ok := formValue(form.Value, "discountPrice"); ok {
			discount, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				respondError(c, newAPIError(http.StatusBadRequest, "Invalid discount price"))
				return
			}
			variant.DiscountPrice = discount
		}
		if raw, ok := formValue(form.Value, "inStock"); ok {
			inStock, err := strconv.Atoi(raw)
			if err != nil || inStock < 0 {
				respondError(c, newAPIError(http.StatusBadRequest, "Invalid stock count"))
				return
			}
			variant.InStock = inStock
		}

		if files := form.File["image"]; len(files) > 0 {
			url, err := h.images.Save(files[0])
			if err != nil {
				respondError(c, err)
				return
			}
			variant.Image = url
		}
		if files := form.File["images"]; len(files) > 0 {
			urls, err := h.images.SaveAll(files)
			if err != nil {
				respondError(c, err)
				return
			}
			variant.Images = urls
		}
	}

	if !variant.DiscountValid() {
		respondError(c, newAPIError(http.StatusBadRequest, "Discount price must be less than the actual price"))
		return
	}

	product.Variants[idx] = variant
	updated, err := h.products.SetVariants(c.Request.Context(), productID, product.Variants)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Variant updated", "product": updated})
}

func (h *ProductHandler) DeleteVariant(c *gin.Context) {
	productID := c.Param("id")

	variantID, err := primitive.ObjectIDFromHex(c.Param("variantId"))
	if err != nil {
		respondError(c, newAPIError(http.StatusNotFound, "Variant not found"))
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	if product.VariantIndex(variantID) < 0 {
		respondError(c, newAPIError(http.StatusNotFound, "Variant not found"))
		return
	}

	updated, err := h.products.RemoveVariant(c.Request.Context(), productID, variantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Variant deleted", "product": updated})
}

func formValue(values map[string][]string, key string) (string, bool) {
	if vals, ok := values[key]; ok && len(vals) > 0 {
		return vals[0], true
	}
	return "", false
}
