package search

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cosmetia/cosmetia/pkg/catalog/criteria"
	"github.com/cosmetia/cosmetia/pkg/catalog/sorting"
)

// countField is the output field of the $count stage.
const countField = "total"

// Builder compiles Criteria into aggregation pipelines. The same $match
// document backs both the page pipeline and the count pipeline, so total
// count and page content are always computed against an identical
// predicate.
type Builder struct {
	scoreTemplate *ScoreTemplate
}

// NewBuilder creates a Builder with the given score template.
func NewBuilder(scoreTemplate *ScoreTemplate) (*Builder, error) {
	if scoreTemplate == nil {
		return nil, fmt.Errorf("score template is required")
	}
	return &Builder{scoreTemplate: scoreTemplate}, nil
}

// Filter builds the single $match document: a conjunction of the six
// predicates, each omitted when its criterion is absent.
//
// Ingredient exclusion takes precedence over inclusion: both operators
// apply to the same field, so a document containing an excluded name is
// rejected even when the name also appears in the inclusion set. Brand
// precedence runs the other way: a non-empty inclusion list makes the
// exclusion list inert.
func (b *Builder) Filter(c criteria.Criteria) bson.M {
	filter := bson.M{}

	ingredients := bson.M{}
	if len(c.IncludeIngredientNames) > 0 {
		ingredients["$all"] = c.IncludeIngredientNames
	}
	if len(c.ExcludeIngredientNames) > 0 {
		ingredients["$nin"] = c.ExcludeIngredientNames
	}
	if len(ingredients) > 0 {
		filter["ingredients"] = ingredients
	}

	if len(c.IncludeBrandNames) > 0 {
		filter["brand"] = bson.M{"$in": c.IncludeBrandNames}
	} else if len(c.ExcludeBrandNames) > 0 {
		filter["brand"] = bson.M{"$nin": c.ExcludeBrandNames}
	}

	if len(c.ProviderNames) > 0 {
		filter["provider"] = bson.M{"$in": c.ProviderNames}
	}
	if len(c.CategoryNames) > 0 {
		filter["categories"] = bson.M{"$in": c.CategoryNames}
	}
	if c.MinRating != nil {
		filter["rating"] = bson.M{"$gte": *c.MinRating}
	}

	if c.HasPhrase() {
		pattern := primitive.Regex{Pattern: KeywordPattern(c.PhraseKeywords), Options: "i"}
		filter["$or"] = []bson.M{
			{"name": pattern},
			{"brand": pattern},
			{"short_description": pattern},
		}
	}

	if c.LikedOnly && c.CurrentUserID != "" {
		filter["liked_by"] = c.CurrentUserID
	}

	return filter
}

// Pipeline builds the full page pipeline:
// $match -> optional $addFields match_score -> $sort -> $skip -> $limit.
func (b *Builder) Pipeline(c criteria.Criteria, page PageRequest) (mongo.Pipeline, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: b.Filter(c)}},
	}

	if c.NeedsMatchScore() {
		expr, err := b.scoreTemplate.Expression(KeywordPattern(c.PhraseKeywords))
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, bson.D{{Key: "$addFields", Value: bson.M{
			sorting.FieldMatchScore.DocumentKey(): expr,
		}}})
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: sortDocument(c.SortSpecs)}},
		bson.D{{Key: "$skip", Value: int64(page.Number) * int64(page.Size)}},
		bson.D{{Key: "$limit", Value: int64(page.Size)}},
	)
	return pipeline, nil
}

// CountPipeline builds the companion count query over the same filter.
func (b *Builder) CountPipeline(c criteria.Criteria) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: b.Filter(c)}},
		bson.D{{Key: "$count", Value: countField}},
	}
}

// sortDocument translates specs into an ordered $sort document, appending
// _id so pagination stays deterministic even on full ties or when no sort
// was requested.
func sortDocument(specs []sorting.Spec) bson.D {
	doc := make(bson.D, 0, len(specs)+1)
	for _, spec := range specs {
		doc = append(doc, bson.E{Key: spec.Field.DocumentKey(), Value: int(spec.Direction)})
	}
	return append(doc, bson.E{Key: "_id", Value: 1})
}
