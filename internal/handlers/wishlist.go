package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AyaOsaama/furniture-api/internal/domain"
)

// WishlistStore is what the wishlist handler needs from the wishlist
// collection.
type WishlistStore interface {
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Wishlist, error)
	GetPopulated(ctx context.Context, userID primitive.ObjectID) (*domain.PopulatedWishlist, error)
	AddProduct(ctx context.Context, userID, productID primitive.ObjectID) (*domain.Wishlist, error)
	RemoveProduct(ctx context.Context, userID, productID primitive.ObjectID) (*domain.Wishlist, error)
}

type WishlistHandler struct {
	wishlists WishlistStore
	products  ProductGetter
}

func NewWishlistHandler(wishlists WishlistStore, products ProductGetter) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists, products: products}
}

func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	wishlist, err := h.wishlists.GetPopulated(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": wishlist})
}

type wishlistInput struct {
	ProductID string `json:"productId" binding:"required"`
}

func (h *WishlistHandler) AddToWishlist(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	var input wishlistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), input.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	wishlist, err := h.wishlists.AddProduct(c.Request.Context(), userID, product.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product added to wishlist", "wishlist": wishlist})
}

func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		respondError(c, newAPIError(http.StatusNotFound, "Product not found"))
		return
	}

	wishlist, err := h.wishlists.RemoveProduct(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed from wishlist", "wishlist": wishlist})
}

// ToggleWishlist adds the product when absent and removes it when
// present.
func (h *WishlistHandler) ToggleWishlist(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	var input wishlistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), input.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	current, err := h.wishlists.GetByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if current.Contains(product.ID) {
		wishlist, err := h.wishlists.RemoveProduct(c.Request.Context(), userID, product.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product removed from wishlist", "wishlist": wishlist})
		return
	}

	wishlist, err := h.wishlists.AddProduct(c.Request.Context(), userID, product.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product added to wishlist", "wishlist": wishlist})
}
