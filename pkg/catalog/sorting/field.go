// Package sorting defines the closed set of product sort fields and the
// compact sorting-signature token format ("a-rating", "d-match-score").
package sorting

// Field identifies a sortable product attribute.
type Field string

const (
	FieldRating        Field = "rating"
	FieldRateCount     Field = "rateCount"
	FieldOpinionsCount Field = "opinionsCount"
	FieldMatchScore    Field = "matchScore"
)

// fieldTokens maps the kebab-case external spelling of each field to its
// Field value. Lookup is case-sensitive: "Rate-Count" is not a legal token.
var fieldTokens = map[string]Field{
	"rating":         FieldRating,
	"rate-count":     FieldRateCount,
	"opinions-count": FieldOpinionsCount,
	"match-score":    FieldMatchScore,
}

// documentKeys maps each field to its document (bson) key for $sort.
var documentKeys = map[Field]string{
	FieldRating:        "rating",
	FieldRateCount:     "rate_count",
	FieldOpinionsCount: "opinions_count",
	FieldMatchScore:    "match_score",
}

// Fields returns every legal field, in registry order.
func Fields() []Field {
	return []Field{FieldRating, FieldRateCount, FieldOpinionsCount, FieldMatchScore}
}

// FieldFromToken resolves a kebab-case spelling to its Field.
func FieldFromToken(token string) (Field, bool) {
	f, ok := fieldTokens[token]
	return f, ok
}

// Token returns the kebab-case external spelling of f.
func (f Field) Token() string {
	for token, field := range fieldTokens {
		if field == f {
			return token
		}
	}
	return string(f)
}

// DocumentKey returns the document field f sorts on.
func (f Field) DocumentKey() string {
	return documentKeys[f]
}
