package catalog

import "errors"

// Sentinel errors shared across the catalog subsystems. Handlers branch on
// these with errors.Is; wrapping sites add context with fmt.Errorf("%w").
var (
	// ErrInvalidSortingOption is returned by the sorting-signature parser
	// for a malformed or unknown sort token.
	ErrInvalidSortingOption = errors.New("invalid sorting option")

	// ErrProductNotFound is returned when a referenced product id has no
	// document.
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateReview is returned when a user adds a review to a
	// product they already rated.
	ErrDuplicateReview = errors.New("review already exists for user")

	// ErrMissingReview is returned when a user edits or deletes a review
	// that does not exist.
	ErrMissingReview = errors.New("no review exists for user")

	// ErrInvalidRating is returned when a per-user rating is outside the
	// accepted range.
	ErrInvalidRating = errors.New("rating out of range")

	// ErrScoreTemplate is returned at startup when the match-score
	// expression template cannot be parsed. It is a configuration error,
	// never a per-request failure.
	ErrScoreTemplate = errors.New("malformed score expression template")
)
