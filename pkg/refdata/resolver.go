// Package refdata resolves reference-data ids (ingredients, brands,
// providers, categories) to display names. The relational reference store
// itself is an external collaborator; this package only models the lookup
// boundary the search criteria compiler needs.
package refdata

import "context"

// Kind identifies a reference-data namespace.
type Kind string

const (
	KindIngredient Kind = "ingredient"
	KindBrand      Kind = "brand"
	KindProvider   Kind = "provider"
	KindCategory   Kind = "category"
)

// collections maps each kind to its backing collection.
var collections = map[Kind]string{
	KindIngredient: "ingredients",
	KindBrand:      "brands",
	KindProvider:   "providers",
	KindCategory:   "categories",
}

// Resolver resolves sets of reference ids to names. The result maps each
// id that exists to its name; ids with no match are absent, never errored.
type Resolver interface {
	ResolveNames(ctx context.Context, kind Kind, ids []string) (map[string]string, error)
}

// Names returns just the resolved names from a ResolveNames result.
func Names(resolved map[string]string) []string {
	if len(resolved) == 0 {
		return nil
	}
	names := make([]string, 0, len(resolved))
	for _, name := range resolved {
		names = append(names, name)
	}
	return names
}
