// Package criteria models the fully-resolved filter and sort intent of one
// product search request, and the compiler that produces it from raw
// request parameters.
package criteria

import (
	"github.com/cosmetia/cosmetia/pkg/catalog/sorting"
)

// Criteria is the immutable, fully-resolved description of a search
// request. It carries names and keywords only, never raw reference ids:
// resolution against the reference-data service happens in the Compiler,
// so the query builder downstream does no I/O besides the page queries.
// Construct once per request via Compiler.Compile and do not mutate.
type Criteria struct {
	IncludeIngredientNames []string
	ExcludeIngredientNames []string

	// IncludeBrandNames and ExcludeBrandNames are mutually exclusive in
	// effect: when both are present the inclusion list wins and the
	// exclusion list is ignored by the query builder.
	IncludeBrandNames []string
	ExcludeBrandNames []string

	ProviderNames []string
	CategoryNames []string

	// MinRating is an inclusive lower bound; nil means no bound.
	MinRating *int

	// PhraseKeywords are the lowercased whitespace-split tokens of the
	// free-text phrase. An empty phrase yields an empty slice, not nil
	// semantics that differ from it.
	PhraseKeywords []string

	// SortSpecs are ordered by precedence; the first spec is primary.
	SortSpecs []sorting.Spec

	// HasMatchScoreSort is true iff any sort spec references the derived
	// match-score field.
	HasMatchScoreSort bool

	// LikedOnly narrows results to products liked by CurrentUserID.
	LikedOnly     bool
	CurrentUserID string
}

// HasPhrase reports whether any phrase keyword survives normalization.
func (c Criteria) HasPhrase() bool {
	return len(c.PhraseKeywords) > 0
}

// NeedsMatchScore reports whether the pipeline must annotate documents
// with the transient match score: a match-score sort alone is inert
// without keywords to score against.
func (c Criteria) NeedsMatchScore() bool {
	return c.HasMatchScoreSort && c.HasPhrase()
}
