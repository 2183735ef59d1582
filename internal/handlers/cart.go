package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AyaOsaama/furniture-api/internal/domain"
	"github.com/AyaOsaama/furniture-api/internal/repository"
)

// CartStore is what the cart handler needs from the cart collection.
type CartStore interface {
	Create(ctx context.Context, item *domain.CartItem) error
	FindByUserAndProduct(ctx context.Context, userID, productID primitive.ObjectID) (*domain.CartItem, error)
	IncrementQuantity(ctx context.Context, id primitive.ObjectID, delta int) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.CartItem, error)
	Delete(ctx context.Context, id string) error
	ClearUser(ctx context.Context, userID primitive.ObjectID) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.PopulatedCartItem, error)
	DistinctUserCount(ctx context.Context) (int, error)
	TopProducts(ctx context.Context, limit int64) ([]repository.TopCartProduct, error)
	TotalValue(ctx context.Context) (float64, error)
	TotalItems(ctx context.Context) (int64, error)
}

// ProductGetter resolves products for the stock check on add-to-cart.
type ProductGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

const topCartProductsLimit = 5

type CartHandler struct {
	cart     CartStore
	products ProductGetter
}

func NewCartHandler(cart CartStore, products ProductGetter) *CartHandler {
	return &CartHandler{cart: cart, products: products}
}

type addToCartInput struct {
	ProductID       string  `json:"productId" binding:"required"`
	Quantity        int     `json:"quantity" binding:"required,gt=0"`
	PriceAtAddition float64 `json:"priceAtAddition" binding:"required,gt=0"`
}

// AddToCart creates a cart item for the (user, product) pair, or bumps
// the quantity of the existing one.
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	var input addToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), input.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			respondError(c, newAPIError(http.StatusNotFound, "Product not found"))
		} else {
			respondError(c, err)
		}
		return
	}

	if input.Quantity > product.TotalStock() {
		respondError(c, newAPIError(http.StatusBadRequest, "Not enough stock available"))
		return
	}

	existing, err := h.cart.FindByUserAndProduct(c.Request.Context(), userID, product.ID)
	if err == nil {
		updated, err := h.cart.IncrementQuantity(c.Request.Context(), existing.ID, input.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item updated", "item": updated})
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}

	item := &domain.CartItem{
		UserID:          userID,
		ProductID:       product.ID,
		Quantity:        input.Quantity,
		PriceAtAddition: input.PriceAtAddition,
	}
	if err := h.cart.Create(c.Request.Context(), item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart", "item": item})
}

func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	cart, err := h.cart.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

type updateCartInput struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var input updateCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	updated, err := h.cart.UpdateQuantity(c.Request.Context(), c.Param("cartItemId"), input.Quantity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			respondError(c, newAPIError(http.StatusNotFound, "Cart item not found"))
		} else {
			respondError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated", "cartProduct": updated})
}

func (h *CartHandler) DeleteCartItem(c *gin.Context) {
	err := h.cart.Delete(c.Request.Context(), c.Param("cartItemId"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			respondError(c, newAPIError(http.StatusNotFound, "Cart item not found"))
		} else {
			respondError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	if err := h.cart.ClearUser(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

func (h *CartHandler) GetUsersWithCartItems(c *gin.Context) {
	count, err := h.cart.DistinctUserCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userCount": count})
}

func (h *CartHandler) GetTopProductsInCart(c *gin.Context) {
	topProducts, err := h.cart.TopProducts(c.Request.Context(), topCartProductsLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topProducts": topProducts})
}

func (h *CartHandler) GetTotalCartValue(c *gin.Context) {
	totalValue, err := h.cart.TotalValue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalValue": totalValue})
}

func (h *CartHandler) GetTotalCartItems(c *gin.Context) {
	totalItems, err := h.cart.TotalItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalItems": totalItems})
}
