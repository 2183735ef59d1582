package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AyaOsaama/furniture-api/internal/domain"
	"github.com/AyaOsaama/furniture-api/internal/repository"
)

// RatingStore is what the rating handler needs from the rating
// collection.
type RatingStore interface {
	Create(ctx context.Context, rating *domain.Rating) error
	List(ctx context.Context) ([]domain.PopulatedRating, int64, error)
	GetByID(ctx context.Context, id string) (*domain.Rating, error)
	Delete(ctx context.Context, id string) error
	ClearComment(ctx context.Context, id string) (*domain.Rating, error)
	TotalRatings(ctx context.Context) (int64, error)
	AverageOverall(ctx context.Context) (float64, error)
	Distribution(ctx context.Context) ([]repository.RatingBucket, error)
	MostRatedProducts(ctx context.Context, limit int64) ([]repository.MostRatedProduct, error)
	WithCommentsCount(ctx context.Context) (int64, error)
}

// PurchaseChecker answers whether a user has a paid order containing a
// product; the order store implements it.
type PurchaseChecker interface {
	HasPaidOrderForProduct(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
}

// RollupRecomputer rewrites a product's derived rating fields.
type RollupRecomputer interface {
	Recompute(ctx context.Context, productID string) error
}

const mostRatedProductsLimit = 5

type RatingHandler struct {
	ratings   RatingStore
	purchases PurchaseChecker
	rollup    RollupRecomputer
}

func NewRatingHandler(ratings RatingStore, purchases PurchaseChecker, rollup RollupRecomputer) *RatingHandler {
	return &RatingHandler{ratings: ratings, purchases: purchases, rollup: rollup}
}

type createRatingInput struct {
	UserID    string           `json:"userId" binding:"required"`
	ProductID string           `json:"productId" binding:"required"`
	Value     int              `json:"value" binding:"required,min=1,max=5"`
	Comment   domain.Localized `json:"comment"`
}

// CreateRating persists a rating and synchronously recomputes the
// product's rollup. The purchase gate runs first: without a paid order
// containing the product nothing is created.
func (h *RatingHandler) CreateRating(c *gin.Context) {
	var input createRatingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	userID, err := primitive.ObjectIDFromHex(input.UserID)
	if err != nil {
		respondError(c, newAPIError(http.StatusBadRequest, "Invalid user id"))
		return
	}
	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		respondError(c, newAPIError(http.StatusBadRequest, "Invalid product id"))
		return
	}

	purchased, err := h.purchases.HasPaidOrderForProduct(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !purchased {
		respondError(c, newAPIError(http.StatusForbidden, "You can only rate products you have purchased"))
		return
	}

	rating := &domain.Rating{
		UserID:    userID,
		ProductID: productID,
		Value:     input.Value,
		Comment:   input.Comment,
	}
	if err := h.ratings.Create(c.Request.Context(), rating); err != nil {
		respondError(c, err)
		return
	}

	// A rollup failure after the insert leaves the rating in place and
	// the product stale; there is no rollback.
	if err := h.rollup.Recompute(c.Request.Context(), input.ProductID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Rating created and product updated", "rating": rating})
}

func (h *RatingHandler) GetAllRatings(c *gin.Context) {
	ratings, totalCount, err := h.ratings.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "All ratings",
		"totalCount": totalCount,
		"results":    len(ratings),
		"ratings":    ratings,
	})
}

func (h *RatingHandler) GetRatingByID(c *gin.Context) {
	rating, err := h.ratings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

// DeleteRating removes the document without touching the product
// rollup, matching the write paths the storefront has always had.
func (h *RatingHandler) DeleteRating(c *gin.Context) {
	if err := h.ratings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearRatingComment blanks both localized comments and recomputes the
// product rollup.
func (h *RatingHandler) ClearRatingComment(c *gin.Context) {
	rating, err := h.ratings.ClearComment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.rollup.Recompute(c.Request.Context(), rating.ProductID.Hex()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment removed", "rating": rating})
}

func (h *RatingHandler) GetTotalRatings(c *gin.Context) {
	count, err := h.ratings.TotalRatings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalRatings": count})
}

func (h *RatingHandler) GetAverageRating(c *gin.Context) {
	average, err := h.ratings.AverageOverall(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"averageRating": average})
}

func (h *RatingHandler) GetRatingDistribution(c *gin.Context) {
	distribution, err := h.ratings.Distribution(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratingDistribution": distribution})
}

func (h *RatingHandler) GetMostRatedProducts(c *gin.Context) {
	topRatedProducts, err := h.ratings.MostRatedProducts(c.Request.Context(), mostRatedProductsLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topRatedProducts": topRatedProducts})
}

func (h *RatingHandler) GetRatingsWithComments(c *gin.Context) {
	count, err := h.ratings.WithCommentsCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratingsWithComments": count})
}
