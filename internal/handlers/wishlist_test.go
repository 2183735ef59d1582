package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AyaOsaama/furniture-api/internal/domain"
)

// fakeWishlistStore keeps one wishlist document per user, like the
// Mongo upsert does.
type fakeWishlistStore struct {
	byUser map[primitive.ObjectID]*domain.Wishlist
}

func newFakeWishlistStore() *fakeWishlistStore {
	return &fakeWishlistStore{byUser: map[primitive.ObjectID]*domain.Wishlist{}}
}

func (f *fakeWishlistStore) GetByUser(_ context.Context, userID primitive.ObjectID) (*domain.Wishlist, error) {
	if w, ok := f.byUser[userID]; ok {
		copied := *w
		return &copied, nil
	}
	return &domain.Wishlist{UserID: userID, Products: []primitive.ObjectID{}}, nil
}

func (f *fakeWishlistStore) GetPopulated(_ context.Context, userID primitive.ObjectID) (*domain.PopulatedWishlist, error) {
	w, _ := f.GetByUser(context.Background(), userID)
	return &domain.PopulatedWishlist{ID: w.ID, UserID: w.UserID, Products: []domain.Product{}}, nil
}

func (f *fakeWishlistStore) AddProduct(_ context.Context, userID, productID primitive.ObjectID) (*domain.Wishlist, error) {
	w, ok := f.byUser[userID]
	if !ok {
		w = &domain.Wishlist{ID: primitive.NewObjectID(), UserID: userID, Products: []primitive.ObjectID{}}
		f.byUser[userID] = w
	}
	if !w.Contains(productID) {
		w.Products = append(w.Products, productID)
	}
	copied := *w
	return &copied, nil
}

func (f *fakeWishlistStore) RemoveProduct(_ context.Context, userID, productID primitive.ObjectID) (*domain.Wishlist, error) {
	w, err := f.GetByUser(context.Background(), userID)
	if err != nil {
		return nil, err
	}
	kept := w.Products[:0]
	for _, id := range w.Products {
		if id != productID {
			kept = append(kept, id)
		}
	}
	w.Products = kept
	f.byUser[userID] = w
	copied := *w
	return &copied, nil
}

func newWishlistEngine(userID primitive.ObjectID, wishlists *fakeWishlistStore, products *fakeProductStore) *gin.Engine {
	h := NewWishlistHandler(wishlists, products)

	engine := gin.New()
	group := engine.Group("/api/wishlist", asUser(userID))
	group.GET("", h.GetWishlist)
	group.POST("", h.AddToWishlist)
	group.POST("/toggle", h.ToggleWishlist)
	group.DELETE("/:productId", h.RemoveFromWishlist)
	return engine
}

func TestAddToWishlistIsIdempotent(t *testing.T) {
	userID := primitive.NewObjectID()
	wishlists := newFakeWishlistStore()
	products := newFakeProductStore()
	product := products.add(stockedProduct(100, 5))

	engine := newWishlistEngine(userID, wishlists, products)

	for i := 0; i < 2; i++ {
		rec := doJSON(t, engine, http.MethodPost, "/api/wishlist", gin.H{"productId": product.ID.Hex()})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	w, err := wishlists.GetByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, w.Products, 1)
}

func TestAddToWishlistUnknownProduct(t *testing.T) {
	userID := primitive.NewObjectID()
	engine := newWishlistEngine(userID, newFakeWishlistStore(), newFakeProductStore())

	rec := doJSON(t, engine, http.MethodPost, "/api/wishlist", gin.H{"productId": primitive.NewObjectID().Hex()})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleWishlistAddsThenRemoves(t *testing.T) {
	userID := primitive.NewObjectID()
	wishlists := newFakeWishlistStore()
	products := newFakeProductStore()
	product := products.add(stockedProduct(100, 5))

	engine := newWishlistEngine(userID, wishlists, products)

	rec := doJSON(t, engine, http.MethodPost, "/api/wishlist/toggle", gin.H{"productId": product.ID.Hex()})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Product added to wishlist", decodeBody(t, rec)["message"])

	rec = doJSON(t, engine, http.MethodPost, "/api/wishlist/toggle", gin.H{"productId": product.ID.Hex()})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Product removed from wishlist", decodeBody(t, rec)["message"])

	w, err := wishlists.GetByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Empty(t, w.Products)
}

func TestRemoveFromWishlist(t *testing.T) {
	userID := primitive.NewObjectID()
	wishlists := newFakeWishlistStore()
	products := newFakeProductStore()
	product := products.add(stockedProduct(100, 5))

	_, err := wishlists.AddProduct(context.Background(), userID, product.ID)
	require.NoError(t, err)

	engine := newWishlistEngine(userID, wishlists, products)

	rec := doJSON(t, engine, http.MethodDelete, "/api/wishlist/"+product.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	w, err := wishlists.GetByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Empty(t, w.Products)
}
