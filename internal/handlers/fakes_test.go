package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AyaOsaama/furniture-api/internal/domain"
	"github.com/AyaOsaama/furniture-api/internal/middleware"
	"github.com/AyaOsaama/furniture-api/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser injects an authenticated user id the way the auth middleware
// would.
func asUser(userID primitive.ObjectID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID.Hex())
		c.Next()
	}
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func doMultipart(t *testing.T, engine *gin.Engine, method, path string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// fakeCartStore keeps cart items in memory and computes the analytics
// the Mongo pipelines would.
type fakeCartStore struct {
	items map[primitive.ObjectID]*domain.CartItem
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{items: map[primitive.ObjectID]*domain.CartItem{}}
}

func (f *fakeCartStore) Create(_ context.Context, item *domain.CartItem) error {
	item.ID = primitive.NewObjectID()
	item.CreatedAt = time.Now()
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeCartStore) FindByUserAndProduct(_ context.Context, userID, productID primitive.ObjectID) (*domain.CartItem, error) {
	for _, item := range f.items {
		if item.UserID == userID && item.ProductID == productID {
			copied := *item
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("cart item: %w", repository.ErrNotFound)
}

func (f *fakeCartStore) IncrementQuantity(_ context.Context, id primitive.ObjectID, delta int) (*domain.CartItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("cart item: %w", repository.ErrNotFound)
	}
	item.Quantity += delta
	copied := *item
	return &copied, nil
}

func (f *fakeCartStore) UpdateQuantity(_ context.Context, id string, quantity int) (*domain.CartItem, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", id, repository.ErrInvalidID)
	}
	item, ok := f.items[objID]
	if !ok {
		return nil, fmt.Errorf("cart item: %w", repository.ErrNotFound)
	}
	item.Quantity = quantity
	copied := *item
	return &copied, nil
}

func (f *fakeCartStore) Delete(_ context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%q: %w", id, repository.ErrInvalidID)
	}
	if _, ok := f.items[objID]; !ok {
		return fmt.Errorf("cart item: %w", repository.ErrNotFound)
	}
	delete(f.items, objID)
	return nil
}

func (f *fakeCartStore) ClearUser(_ context.Context, userID primitive.ObjectID) error {
	for id, item := range f.items {
		if item.UserID == userID {
			delete(f.items, id)
		}
	}
	return nil
}

func (f *fakeCartStore) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.PopulatedCartItem, error) {
	result := []domain.PopulatedCartItem{}
	for _, item := range f.items {
		if item.UserID == userID {
			result = append(result, domain.PopulatedCartItem{CartItem: *item})
		}
	}
	return result, nil
}

func (f *fakeCartStore) DistinctUserCount(_ context.Context) (int, error) {
	users := map[primitive.ObjectID]bool{}
	for _, item := range f.items {
		users[item.UserID] = true
	}
	return len(users), nil
}

func (f *fakeCartStore) TopProducts(_ context.Context, limit int64) ([]repository.TopCartProduct, error) {
	totals := map[primitive.ObjectID]int64{}
	for _, item := range f.items {
		totals[item.ProductID] += int64(item.Quantity)
	}

	result := []repository.TopCartProduct{}
	for productID, total := range totals {
		result = append(result, repository.TopCartProduct{ProductID: productID, TotalQuantity: total})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalQuantity != result[j].TotalQuantity {
			return result[i].TotalQuantity > result[j].TotalQuantity
		}
		return result[i].ProductID.Hex() < result[j].ProductID.Hex()
	})
	if int64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeCartStore) TotalValue(_ context.Context) (float64, error) {
	total := 0.0
	for _, item := range f.items {
		total += float64(item.Quantity) * item.PriceAtAddition
	}
	return total, nil
}

func (f *fakeCartStore) TotalItems(_ context.Context) (int64, error) {
	var total int64
	for _, item := range f.items {
		total += int64(item.Quantity)
	}
	return total, nil
}

// fakeProductStore keeps products in memory. It also serves as the
// rollup's product sink in the rating tests.
type fakeProductStore struct {
	products map[primitive.ObjectID]*domain.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[primitive.ObjectID]*domain.Product{}}
}

func (f *fakeProductStore) add(product *domain.Product) *domain.Product {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	f.products[product.ID] = product
	return product
}

func (f *fakeProductStore) Create(_ context.Context, product *domain.Product) error {
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	for i := range product.Variants {
		if product.Variants[i].ID.IsZero() {
			product.Variants[i].ID = primitive.NewObjectID()
		}
	}
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeProductStore) GetByID(_ context.Context, id string) (*domain.Product, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", id, repository.ErrInvalidID)
	}
	product, ok := f.products[objID]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
	}
	copied := *product
	return &copied, nil
}

func (f *fakeProductStore) List(_ context.Context, _ bson.M) ([]*domain.Product, int64, error) {
	result := []*domain.Product{}
	for _, product := range f.products {
		copied := *product
		result = append(result, &copied)
	}
	return result, int64(len(result)), nil
}

func (f *fakeProductStore) Update(_ context.Context, id string, set bson.M) (*domain.Product, error) {
	product, err := f.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	if brand, ok := set["brand"].(string); ok {
		product.Brand = brand
	}
	if variants, ok := set["variants"].([]domain.Variant); ok {
		product.Variants = variants
	}
	f.products[product.ID] = product
	copied := *product
	return &copied, nil
}

func (f *fakeProductStore) Delete(_ context.Context, id string) error {
	product, err := f.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	delete(f.products, product.ID)
	return nil
}

func (f *fakeProductStore) AddVariant(_ context.Context, id string, variant domain.Variant) (*domain.Product, error) {
	product, err := f.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	if variant.ID.IsZero() {
		variant.ID = primitive.NewObjectID()
	}
	product.Variants = append(product.Variants, variant)
	f.products[product.ID] = product
	copied := *product
	return &copied, nil
}

func (f *fakeProductStore) SetVariants(_ context.Context, id string, variants []domain.Variant) (*domain.Product, error) {
	return f.Update(context.Background(), id, bson.M{"variants": variants})
}

func (f *fakeProductStore) RemoveVariant(_ context.Context, id string, variantID primitive.ObjectID) (*domain.Product, error) {
	product, err := f.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	variants := []domain.Variant{}
	for _, v := range product.Variants {
		if v.ID != variantID {
			variants = append(variants, v)
		}
	}
	product.Variants = variants
	f.products[product.ID] = product
	copied := *product
	return &copied, nil
}

func (f *fakeProductStore) SetRatingRollup(_ context.Context, id string, average float64, count int) error {
	product, err := f.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	product.AverageRating = average
	product.RatingCount = count
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductStore) TotalProducts(_ context.Context) (int64, error) {
	return int64(len(f.products)), nil
}

func (f *fakeProductStore) TotalVariants(_ context.Context) (int64, error) {
	var total int64
	for _, product := range f.products {
		total += int64(len(product.Variants))
	}
	return total, nil
}

func (f *fakeProductStore) BrandsCount(_ context.Context) (int64, error) {
	brands := map[string]bool{}
	for _, product := range f.products {
		brands[product.Brand] = true
	}
	return int64(len(brands)), nil
}

func (f *fakeProductStore) TopRatedVariants(_ context.Context, limit int64) ([]repository.TopRatedVariant, error) {
	result := []repository.TopRatedVariant{}
	for _, product := range f.products {
		for _, v := range product.Variants {
			result = append(result, repository.TopRatedVariant{
				Name:          v.Name,
				AverageRating: v.AverageRating,
				RatingCount:   v.RatingCount,
				Image:         v.Image,
			})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AverageRating > result[j].AverageRating
	})
	if int64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeProductStore) DiscountedVariantsCount(_ context.Context) (int64, error) {
	var count int64
	for _, product := range f.products {
		for _, v := range product.Variants {
			if v.DiscountPrice > 0 {
				count++
			}
		}
	}
	return count, nil
}

func (f *fakeProductStore) LowStockVariantsCount(_ context.Context, threshold int) (int64, error) {
	var count int64
	for _, product := range f.products {
		for _, v := range product.Variants {
			if v.InStock <= threshold {
				count++
			}
		}
	}
	return count, nil
}

// fakeRatingStore keeps ratings in memory; it backs both the rating
// handler and the rollup recomputer in tests.
type fakeRatingStore struct {
	ratings map[primitive.ObjectID]*domain.Rating
}

func newFakeRatingStore() *fakeRatingStore {
	return &fakeRatingStore{ratings: map[primitive.ObjectID]*domain.Rating{}}
}

func (f *fakeRatingStore) Create(_ context.Context, rating *domain.Rating) error {
	rating.ID = primitive.NewObjectID()
	rating.CreatedAt = time.Now()
	copied := *rating
	f.ratings[rating.ID] = &copied
	return nil
}

func (f *fakeRatingStore) List(_ context.Context) ([]domain.PopulatedRating, int64, error) {
	result := []domain.PopulatedRating{}
	for _, rating := range f.ratings {
		result = append(result, domain.PopulatedRating{Rating: *rating})
	}
	return result, int64(len(result)), nil
}

func (f *fakeRatingStore) GetByID(_ context.Context, id string) (*domain.Rating, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", id, repository.ErrInvalidID)
	}
	rating, ok := f.ratings[objID]
	if !ok {
		return nil, fmt.Errorf("rating %s: %w", id, repository.ErrNotFound)
	}
	copied := *rating
	return &copied, nil
}

func (f *fakeRatingStore) Delete(_ context.Context, id string) error {
	rating, err := f.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	delete(f.ratings, rating.ID)
	return nil
}

func (f *fakeRatingStore) ClearComment(_ context.Context, id string) (*domain.Rating, error) {
	rating, err := f.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	f.ratings[rating.ID].Comment = domain.Localized{}
	rating.Comment = domain.Localized{}
	return rating, nil
}

func (f *fakeRatingStore) ListByProduct(_ context.Context, productID string) ([]*domain.Rating, error) {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", productID, repository.ErrInvalidID)
	}
	result := []*domain.Rating{}
	for _, rating := range f.ratings {
		if rating.ProductID == objID {
			copied := *rating
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeRatingStore) TotalRatings(_ context.Context) (int64, error) {
	return int64(len(f.ratings)), nil
}

func (f *fakeRatingStore) AverageOverall(_ context.Context) (float64, error) {
	if len(f.ratings) == 0 {
		return 0, nil
	}
	sum := 0
	for _, rating := range f.ratings {
		sum += rating.Value
	}
	avg := float64(sum) / float64(len(f.ratings))
	return float64(int(avg*100+0.5)) / 100, nil
}

func (f *fakeRatingStore) Distribution(_ context.Context) ([]repository.RatingBucket, error) {
	counts := map[int]int64{}
	for _, rating := range f.ratings {
		counts[rating.Value]++
	}
	result := []repository.RatingBucket{}
	for value := 1; value <= 5; value++ {
		if counts[value] > 0 {
			result = append(result, repository.RatingBucket{Value: value, Count: counts[value]})
		}
	}
	return result, nil
}

func (f *fakeRatingStore) MostRatedProducts(_ context.Context, limit int64) ([]repository.MostRatedProduct, error) {
	counts := map[primitive.ObjectID]int64{}
	sums := map[primitive.ObjectID]int{}
	for _, rating := range f.ratings {
		counts[rating.ProductID]++
		sums[rating.ProductID] += rating.Value
	}
	result := []repository.MostRatedProduct{}
	for productID, count := range counts {
		avg := float64(sums[productID]) / float64(count)
		result = append(result, repository.MostRatedProduct{
			ProductID: productID,
			Count:     count,
			Avg:       float64(int(avg*10+0.5)) / 10,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	if int64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeRatingStore) WithCommentsCount(_ context.Context) (int64, error) {
	var count int64
	for _, rating := range f.ratings {
		if rating.HasComment() {
			count++
		}
	}
	return count, nil
}

// fakePurchases answers the rating purchase gate from a fixed set of
// paid (user, product) pairs.
type fakePurchases struct {
	paid map[[2]primitive.ObjectID]bool
}

func newFakePurchases() *fakePurchases {
	return &fakePurchases{paid: map[[2]primitive.ObjectID]bool{}}
}

func (f *fakePurchases) markPaid(userID, productID primitive.ObjectID) {
	f.paid[[2]primitive.ObjectID{userID, productID}] = true
}

func (f *fakePurchases) HasPaidOrderForProduct(_ context.Context, userID, productID primitive.ObjectID) (bool, error) {
	return f.paid[[2]primitive.ObjectID{userID, productID}], nil
}
