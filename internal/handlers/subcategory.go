package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/AyaOsaama/furniture-api/internal/domain"
)

// SubcategoryStore is what the subcategory handler needs.
type SubcategoryStore interface {
	Create(ctx context.Context, subcategory *domain.Subcategory) error
	GetByID(ctx context.Context, id string) (*domain.Subcategory, error)
	List(ctx context.Context) ([]*domain.Subcategory, error)
	Update(ctx context.Context, id string, set bson.M) error
	Delete(ctx context.Context, id string) error
}

type SubcategoryHandler struct {
	subcategories SubcategoryStore
}

func NewSubcategoryHandler(subcategories SubcategoryStore) *SubcategoryHandler {
	return &SubcategoryHandler{subcategories: subcategories}
}

type subcategoryInput struct {
	Name domain.Localized `json:"name"`
	Tags []string         `json:"tags"`
}

func (h *SubcategoryHandler) CreateSubcategory(c *gin.Context) {
	var input subcategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	subcategory := &domain.Subcategory{Name: input.Name, Tags: input.Tags}
	if err := h.subcategories.Create(c.Request.Context(), subcategory); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Subcategory created", "subcategory": subcategory})
}

func (h *SubcategoryHandler) GetAllSubcategories(c *gin.Context) {
	subcategories, err := h.subcategories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subcategories": subcategories})
}

func (h *SubcategoryHandler) GetSubcategoryByID(c *gin.Context) {
	subcategory, err := h.subcategories.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subcategory": subcategory})
}

func (h *SubcategoryHandler) UpdateSubcategory(c *gin.Context) {
	var input subcategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	set := bson.M{"name": input.Name}
	if input.Tags != nil {
		set["tags"] = input.Tags
	}
	if err := h.subcategories.Update(c.Request.Context(), c.Param("id"), set); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subcategory updated"})
}

func (h *SubcategoryHandler) DeleteSubcategory(c *gin.Context) {
	if err := h.subcategories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subcategory deleted"})
}
