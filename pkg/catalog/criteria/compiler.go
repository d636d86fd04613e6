package criteria

import (
	"context"
	"fmt"
	"strings"

	"github.com/cosmetia/cosmetia/pkg/catalog/sorting"
	"github.com/cosmetia/cosmetia/pkg/refdata"
)

// Request carries the raw, optional search parameters as supplied by the
// caller. Id slices reference the external reference-data service; empty
// slices and zero values mean "criterion absent".
type Request struct {
	IngredientIDs        []string
	ExcludeIngredientIDs []string
	BrandIDs             []string
	ExcludeBrandIDs      []string
	ProviderIDs          []string
	CategoryIDs          []string

	MinRating *int
	Phrase    string

	LikedOnly     bool
	CurrentUserID string

	SortTokens []string
}

// Compiler resolves a Request into a Criteria value.
type Compiler struct {
	resolver refdata.Resolver
}

// NewCompiler creates a Compiler using the given reference-data resolver.
func NewCompiler(resolver refdata.Resolver) (*Compiler, error) {
	if resolver == nil {
		return nil, fmt.Errorf("reference resolver is required")
	}
	return &Compiler{resolver: resolver}, nil
}

// Compile resolves every id-set to names, normalizes the phrase, and
// parses the sort tokens.
//
// Ids with no match in the reference data are silently dropped from the
// resulting name sets. A malformed sort token aborts compilation with
// catalog.ErrInvalidSortingOption; sort tokens are never silently dropped.
func (c *Compiler) Compile(ctx context.Context, req Request) (Criteria, error) {
	specs, err := sorting.ParseSignatures(req.SortTokens)
	if err != nil {
		return Criteria{}, err
	}

	hasMatchScore := false
	for _, spec := range specs {
		if spec.Field == sorting.FieldMatchScore {
			hasMatchScore = true
			break
		}
	}

	resolved := Criteria{
		MinRating:         req.MinRating,
		PhraseKeywords:    SplitPhrase(req.Phrase),
		SortSpecs:         specs,
		HasMatchScoreSort: hasMatchScore,
		LikedOnly:         req.LikedOnly,
		CurrentUserID:     req.CurrentUserID,
	}

	if resolved.IncludeIngredientNames, err = c.names(ctx, refdata.KindIngredient, req.IngredientIDs); err != nil {
		return Criteria{}, err
	}
	if resolved.ExcludeIngredientNames, err = c.names(ctx, refdata.KindIngredient, req.ExcludeIngredientIDs); err != nil {
		return Criteria{}, err
	}
	if resolved.IncludeBrandNames, err = c.names(ctx, refdata.KindBrand, req.BrandIDs); err != nil {
		return Criteria{}, err
	}
	if resolved.ExcludeBrandNames, err = c.names(ctx, refdata.KindBrand, req.ExcludeBrandIDs); err != nil {
		return Criteria{}, err
	}
	if resolved.ProviderNames, err = c.names(ctx, refdata.KindProvider, req.ProviderIDs); err != nil {
		return Criteria{}, err
	}
	if resolved.CategoryNames, err = c.names(ctx, refdata.KindCategory, req.CategoryIDs); err != nil {
		return Criteria{}, err
	}

	return resolved, nil
}

func (c *Compiler) names(ctx context.Context, kind refdata.Kind, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	resolved, err := c.resolver.ResolveNames(ctx, kind, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s ids: %w", kind, err)
	}
	return refdata.Names(resolved), nil
}

// SplitPhrase normalizes a free-text phrase into lowercase keywords:
// URL-encoded and literal space runs collapse to single separators, and
// duplicates are removed preserving first occurrence. An empty or
// whitespace-only phrase yields an empty keyword set.
func SplitPhrase(phrase string) []string {
	normalized := strings.ReplaceAll(phrase, "%20", " ")
	normalized = strings.ReplaceAll(normalized, "+", " ")

	keywords := []string{}
	seen := map[string]struct{}{}
	for _, token := range strings.Fields(normalized) {
		token = strings.ToLower(token)
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}
	return keywords
}
