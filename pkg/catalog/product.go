// Package catalog defines the product document model and the error
// taxonomy shared by the search and rating subsystems.
package catalog

import "time"

// Collection names in the document store.
const (
	ProductsCollection = "products"
)

// Product is the document stored in the products collection.
//
// RatingSum, Ratings and RateCount form the rating aggregate: RateCount is
// always len(Ratings), Rating is RatingSum/RateCount truncated toward zero
// and 0 while no ratings exist. The aggregate is only ever mutated through
// rating.Maintainer, which recomputes the derived fields server-side in the
// same atomic update that changes Ratings.
type Product struct {
	ID               string   `bson:"_id" json:"id"`
	Name             string   `bson:"name" json:"name"`
	Brand            string   `bson:"brand" json:"brand"`
	Provider         string   `bson:"provider" json:"provider"`
	ShortDescription string   `bson:"short_description" json:"shortDescription"`
	Categories       []string `bson:"categories" json:"categories"`
	Ingredients      []string `bson:"ingredients" json:"ingredients"`

	Rating        int            `bson:"rating" json:"rating"`
	RatingSum     int            `bson:"rating_sum" json:"-"`
	Ratings       map[string]int `bson:"ratings" json:"-"`
	RateCount     int            `bson:"rate_count" json:"rateCount"`
	OpinionsCount int            `bson:"opinions_count" json:"opinionsCount"`
	LikedBy       []string       `bson:"liked_by" json:"-"`

	// MatchScore is annotated by the search pipeline when a match-score
	// sort is requested. It is never persisted.
	MatchScore float64 `bson:"match_score,omitempty" json:"matchScore,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// NewProduct returns a product with an empty rating aggregate.
func NewProduct(id, name, brand, provider, shortDescription string, categories, ingredients []string, now time.Time) *Product {
	return &Product{
		ID:               id,
		Name:             name,
		Brand:            brand,
		Provider:         provider,
		ShortDescription: shortDescription,
		Categories:       categories,
		Ingredients:      ingredients,
		Ratings:          map[string]int{},
		LikedBy:          []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Rating bounds for a single user rating.
const (
	MinUserRating = 0
	MaxUserRating = 10
)

// ValidUserRating reports whether r is an acceptable per-user rating.
func ValidUserRating(r int) bool {
	return r >= MinUserRating && r <= MaxUserRating
}
