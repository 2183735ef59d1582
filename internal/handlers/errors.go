package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AyaOsaama/furniture-api/internal/middleware"
	"github.com/AyaOsaama/furniture-api/internal/repository"
)

// apiError is a domain error carrying the HTTP status it should map to.
// Handlers construct these at the failure site and hand them to
// respondError.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string { return e.Message }

func newAPIError(status int, message string) *apiError {
	return &apiError{Status: status, Message: message}
}

// respondError is the single place errors become HTTP responses.
// Repository sentinels map to 404, apiErrors keep their status, and
// anything else surfaces as a generic 500.
func respondError(c *gin.Context, err error) {
	var ae *apiError
	switch {
	case errors.As(err, &ae):
		c.JSON(ae.Status, gin.H{"error": ae.Message})
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrInvalidID):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("Unhandled error for %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// userIDFrom pulls the authenticated user's ObjectID out of the gin
// context. Auth middleware must have run on the route.
func userIDFrom(c *gin.Context) (primitive.ObjectID, bool) {
	raw, ok := c.Get(middleware.UserIDKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authenticated user"})
		return primitive.NilObjectID, false
	}
	hex, _ := raw.(string)
	userID, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authenticated user id"})
		return primitive.NilObjectID, false
	}
	return userID, true
}
