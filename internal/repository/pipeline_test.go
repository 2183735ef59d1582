package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// stageNames extracts the operator of each pipeline stage, in order.
func stageNames(pipeline mongo.Pipeline) []string {
	names := make([]string, 0, len(pipeline))
	for _, stage := range pipeline {
		names = append(names, stage[0].Key)
	}
	return names
}

// stage returns the value of the first stage with the given operator.
func stage(t *testing.T, pipeline mongo.Pipeline, operator string) interface{} {
	t.Helper()
	for _, s := range pipeline {
		if s[0].Key == operator {
			return s[0].Value
		}
	}
	t.Fatalf("pipeline has no %s stage", operator)
	return nil
}

func TestTopCartProductsPipelineShape(t *testing.T) {
	pipeline := topCartProductsPipeline(5)

	require.Equal(t,
		[]string{"$group", "$sort", "$limit", "$lookup", "$unwind", "$project"},
		stageNames(pipeline))
	require.EqualValues(t, 5, stage(t, pipeline, "$limit"))

	// Descending by summed quantity, grouped by product.
	group := stage(t, pipeline, "$group").(bson.D)
	require.Equal(t, "$productId", group[0].Value)
	sort := stage(t, pipeline, "$sort").(bson.D)
	require.Equal(t, "totalQuantity", sort[0].Key)
	require.Equal(t, -1, sort[0].Value)

	lookup := stage(t, pipeline, "$lookup").(bson.D)
	require.Equal(t, productCollectionName, lookup[0].Value)
}

func TestTotalCartValuePipelineMultipliesPriceByQuantity(t *testing.T) {
	pipeline := totalCartValuePipeline()
	require.Equal(t, []string{"$group"}, stageNames(pipeline))

	group := stage(t, pipeline, "$group").(bson.D)
	require.Nil(t, group[0].Value)

	sum := group[1].Value.(bson.D)[0].Value.(bson.D)
	require.Equal(t, "$multiply", sum[0].Key)
	require.Equal(t, bson.A{"$priceAtAddition", "$quantity"}, sum[0].Value)
}

func TestCartByUserPipelinePreservesItemsWithMissingProducts(t *testing.T) {
	pipeline := cartByUserPipeline(primitive.NewObjectID())
	require.Equal(t, []string{"$match", "$lookup", "$unwind"}, stageNames(pipeline))

	unwind := stage(t, pipeline, "$unwind").(bson.D)
	require.Equal(t, "$product", unwind[0].Value)
	require.Equal(t, true, unwind[1].Value)
}

func TestRatingDistributionPipelineSortsAscending(t *testing.T) {
	pipeline := ratingDistributionPipeline()
	require.Equal(t, []string{"$group", "$sort"}, stageNames(pipeline))

	group := stage(t, pipeline, "$group").(bson.D)
	require.Equal(t, "$value", group[0].Value)

	sort := stage(t, pipeline, "$sort").(bson.D)
	require.Equal(t, "_id", sort[0].Key)
	require.Equal(t, 1, sort[0].Value)
}

func TestMostRatedProductsPipelineShape(t *testing.T) {
	pipeline := mostRatedProductsPipeline(5)

	require.Equal(t,
		[]string{"$group", "$sort", "$limit", "$lookup", "$unwind", "$project"},
		stageNames(pipeline))
	require.EqualValues(t, 5, stage(t, pipeline, "$limit"))

	// The average surfaces rounded to one decimal place.
	project := stage(t, pipeline, "$project").(bson.D)
	var rounded bool
	for _, field := range project {
		if field.Key == "avg" {
			round := field.Value.(bson.D)
			require.Equal(t, "$round", round[0].Key)
			require.Equal(t, bson.A{"$avg", 1}, round[0].Value)
			rounded = true
		}
	}
	require.True(t, rounded)
}

func TestVariantCountingPipelines(t *testing.T) {
	pipeline := totalVariantsPipeline()
	require.Equal(t, []string{"$project", "$group"}, stageNames(pipeline))

	pipeline = brandsCountPipeline()
	require.Equal(t, []string{"$group", "$count"}, stageNames(pipeline))
	require.Equal(t, "brandsCount", stage(t, pipeline, "$count"))

	pipeline = discountedVariantsPipeline()
	require.Equal(t, []string{"$unwind", "$match", "$count"}, stageNames(pipeline))

	pipeline = lowStockVariantsPipeline(5)
	match := stage(t, pipeline, "$match").(bson.D)
	threshold := match[0].Value.(bson.D)
	require.Equal(t, "$lte", threshold[0].Key)
	require.Equal(t, 5, threshold[0].Value)
}

func TestTopRatedVariantsPipelineSortsByVariantRating(t *testing.T) {
	pipeline := topRatedVariantsPipeline(5)
	require.Equal(t, []string{"$unwind", "$sort", "$limit", "$project"}, stageNames(pipeline))

	sort := stage(t, pipeline, "$sort").(bson.D)
	require.Equal(t, "variants.averageRating", sort[0].Key)
	require.Equal(t, -1, sort[0].Value)
}
