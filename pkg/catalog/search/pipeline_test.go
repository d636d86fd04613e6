package search

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cosmetia/cosmetia/pkg/catalog/criteria"
	"github.com/cosmetia/cosmetia/pkg/catalog/sorting"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	tmpl, err := DefaultScoreTemplate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewBuilder(tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return b
}

func TestFilter_EmptyCriteriaMatchesEverything(t *testing.T) {
	b := newTestBuilder(t)
	filter := b.Filter(criteria.Criteria{})
	if len(filter) != 0 {
		t.Fatalf("filter = %v, want empty document", filter)
	}
}

func TestFilter_IngredientPredicates(t *testing.T) {
	b := newTestBuilder(t)

	filter := b.Filter(criteria.Criteria{
		IncludeIngredientNames: []string{"A"},
		ExcludeIngredientNames: []string{"B"},
	})

	ingredients, ok := filter["ingredients"].(bson.M)
	if !ok {
		t.Fatalf("missing ingredients predicate in %v", filter)
	}
	if !reflect.DeepEqual(ingredients["$all"], []string{"A"}) {
		t.Errorf("$all = %v, want [A]", ingredients["$all"])
	}
	if !reflect.DeepEqual(ingredients["$nin"], []string{"B"}) {
		t.Errorf("$nin = %v, want [B]", ingredients["$nin"])
	}
}

// A name in both sets keeps its $nin entry, so documents containing it can
// never match: exclusion wins over inclusion.
func TestFilter_IngredientExclusionPrecedence(t *testing.T) {
	b := newTestBuilder(t)

	filter := b.Filter(criteria.Criteria{
		IncludeIngredientNames: []string{"A", "B"},
		ExcludeIngredientNames: []string{"B"},
	})

	ingredients := filter["ingredients"].(bson.M)
	nin := ingredients["$nin"].([]string)
	if len(nin) != 1 || nin[0] != "B" {
		t.Fatalf("$nin = %v, want [B] regardless of inclusion", nin)
	}
}

func TestFilter_BrandInclusionWinsOverExclusion(t *testing.T) {
	b := newTestBuilder(t)

	filter := b.Filter(criteria.Criteria{
		IncludeBrandNames: []string{"Lumene"},
		ExcludeBrandNames: []string{"Ziaja"},
	})

	brand, ok := filter["brand"].(bson.M)
	if !ok {
		t.Fatalf("missing brand predicate in %v", filter)
	}
	if !reflect.DeepEqual(brand, bson.M{"$in": []string{"Lumene"}}) {
		t.Errorf("brand predicate = %v, want $in only", brand)
	}
}

func TestFilter_BrandExclusionAloneApplies(t *testing.T) {
	b := newTestBuilder(t)

	filter := b.Filter(criteria.Criteria{ExcludeBrandNames: []string{"Ziaja"}})
	if !reflect.DeepEqual(filter["brand"], bson.M{"$nin": []string{"Ziaja"}}) {
		t.Errorf("brand predicate = %v, want $nin", filter["brand"])
	}
}

func TestFilter_ProviderCategoryRatingLiked(t *testing.T) {
	b := newTestBuilder(t)
	min := 7

	filter := b.Filter(criteria.Criteria{
		ProviderNames: []string{"Douglas"},
		CategoryNames: []string{"Serums", "Creams"},
		MinRating:     &min,
		LikedOnly:     true,
		CurrentUserID: "u1",
	})

	if !reflect.DeepEqual(filter["provider"], bson.M{"$in": []string{"Douglas"}}) {
		t.Errorf("provider predicate = %v", filter["provider"])
	}
	if !reflect.DeepEqual(filter["categories"], bson.M{"$in": []string{"Serums", "Creams"}}) {
		t.Errorf("categories predicate = %v", filter["categories"])
	}
	if !reflect.DeepEqual(filter["rating"], bson.M{"$gte": 7}) {
		t.Errorf("rating predicate = %v", filter["rating"])
	}
	if filter["liked_by"] != "u1" {
		t.Errorf("liked_by predicate = %v, want u1", filter["liked_by"])
	}
}

func TestFilter_LikedOnlyRequiresUser(t *testing.T) {
	b := newTestBuilder(t)
	filter := b.Filter(criteria.Criteria{LikedOnly: true})
	if _, ok := filter["liked_by"]; ok {
		t.Fatal("liked_by predicate must not apply without a current user")
	}
}

func TestFilter_PhrasePredicate(t *testing.T) {
	b := newTestBuilder(t)

	filter := b.Filter(criteria.Criteria{PhraseKeywords: []string{"aloe", "gel"}})
	or, ok := filter["$or"].([]bson.M)
	if !ok || len(or) != 3 {
		t.Fatalf("$or = %v, want three alternatives", filter["$or"])
	}

	pattern := or[0]["name"].(primitive.Regex)
	if pattern.Options != "i" {
		t.Errorf("regex options = %q, want i", pattern.Options)
	}
	if pattern.Pattern != `\b(aloe|gel)\b` {
		t.Errorf("regex pattern = %q", pattern.Pattern)
	}
	if _, ok := or[1]["brand"]; !ok {
		t.Error("missing brand alternative")
	}
	if _, ok := or[2]["short_description"]; !ok {
		t.Error("missing short_description alternative")
	}
}

func TestPipeline_StageOrder(t *testing.T) {
	b := newTestBuilder(t)

	c := criteria.Criteria{
		PhraseKeywords:    []string{"serum"},
		HasMatchScoreSort: true,
		SortSpecs: []sorting.Spec{
			{Direction: sorting.Descending, Field: sorting.FieldMatchScore},
		},
	}

	pipeline, err := b.Pipeline(c, PageRequest{Number: 2, Size: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stages := stageNames(pipeline)
	want := []string{"$match", "$addFields", "$sort", "$skip", "$limit"}
	if !reflect.DeepEqual(stages, want) {
		t.Fatalf("stage order = %v, want %v", stages, want)
	}

	if skip := pipeline[3][0].Value; skip != int64(20) {
		t.Errorf("$skip = %v, want 20", skip)
	}
	if limit := pipeline[4][0].Value; limit != int64(10) {
		t.Errorf("$limit = %v, want 10", limit)
	}
}

func TestPipeline_NoScoreStageWithoutMatchScoreSort(t *testing.T) {
	b := newTestBuilder(t)

	c := criteria.Criteria{PhraseKeywords: []string{"serum"}}
	pipeline, err := b.Pipeline(c, PageRequest{Number: 0, Size: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"$match", "$sort", "$skip", "$limit"}
	if got := stageNames(pipeline); !reflect.DeepEqual(got, want) {
		t.Fatalf("stage order = %v, want %v", got, want)
	}
}

func TestPipeline_NoScoreStageWithoutKeywords(t *testing.T) {
	b := newTestBuilder(t)

	c := criteria.Criteria{
		HasMatchScoreSort: true,
		SortSpecs: []sorting.Spec{
			{Direction: sorting.Descending, Field: sorting.FieldMatchScore},
		},
	}
	pipeline, err := b.Pipeline(c, PageRequest{Number: 0, Size: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, stage := range stageNames(pipeline) {
		if stage == "$addFields" {
			t.Fatal("score stage must not run without keywords")
		}
	}
}

func TestCountPipeline_SharesFilterWithPagePipeline(t *testing.T) {
	b := newTestBuilder(t)

	c := criteria.Criteria{
		IncludeIngredientNames: []string{"Aloe"},
		ExcludeIngredientNames: []string{"Paraben"},
	}

	pagePipeline, err := b.Pipeline(c, PageRequest{Number: 0, Size: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	countPipeline := b.CountPipeline(c)

	if !reflect.DeepEqual(pagePipeline[0], countPipeline[0]) {
		t.Fatalf("count $match %v differs from page $match %v", countPipeline[0], pagePipeline[0])
	}
	if countPipeline[1][0].Key != "$count" {
		t.Fatalf("second count stage = %v, want $count", countPipeline[1][0].Key)
	}
}

func TestSortDocument(t *testing.T) {
	specs := []sorting.Spec{
		{Direction: sorting.Descending, Field: sorting.FieldRating},
		{Direction: sorting.Ascending, Field: sorting.FieldRateCount},
	}
	want := bson.D{
		{Key: "rating", Value: -1},
		{Key: "rate_count", Value: 1},
		{Key: "_id", Value: 1},
	}
	if got := sortDocument(specs); !reflect.DeepEqual(got, want) {
		t.Errorf("sortDocument = %v, want %v", got, want)
	}
}

func TestSortDocument_EmptySpecsStillDeterministic(t *testing.T) {
	want := bson.D{{Key: "_id", Value: 1}}
	if got := sortDocument(nil); !reflect.DeepEqual(got, want) {
		t.Errorf("sortDocument(nil) = %v, want %v", got, want)
	}
}

func stageNames(pipeline []bson.D) []string {
	names := make([]string, len(pipeline))
	for i, stage := range pipeline {
		names[i] = stage[0].Key
	}
	return names
}
