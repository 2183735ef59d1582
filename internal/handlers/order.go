package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AyaOsaama/furniture-api/internal/domain"
)

// OrderStore is what the order handler needs from the order collection.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*domain.Order, error)
}

type OrderHandler struct {
	orders   OrderStore
	products ProductGetter
}

func NewOrderHandler(orders OrderStore, products ProductGetter) *OrderHandler {
	return &OrderHandler{orders: orders, products: products}
}

// CreateOrder prices each line from the product's first variant at
// order time and persists the order as pending.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	var input domain.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	items := make([]domain.OrderItem, 0, len(input.Items))
	total := 0.0
	for _, in := range input.Items {
		product, err := h.products.GetByID(c.Request.Context(), in.ProductID)
		if err != nil {
			respondError(c, err)
			return
		}
		if len(product.Variants) == 0 {
			respondError(c, newAPIError(http.StatusBadRequest, "Product has no purchasable variants"))
			return
		}

		price := product.Variants[0].EffectivePrice()
		items = append(items, domain.OrderItem{
			ProductID:    product.ID,
			Quantity:     in.Quantity,
			PriceAtOrder: price,
		})
		total += price * float64(in.Quantity)
	}

	order := &domain.Order{
		UserID:      userID,
		Items:       items,
		TotalAmount: total,
		Status:      domain.StatusPending,
	}
	if err := h.orders.Create(c.Request.Context(), order); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order created", "order": order})
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	order, err := h.orders.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var input domain.UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), input.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}
