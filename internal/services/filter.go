package services

import (
	"net/url"
	"strings"

	"github.com/athujoshi24/legendary-panel/internal/repository"
)

// Query parameters accepted by the recipe list. The second name of each
// pair is an alias.
var (
	tagFilterParams        = []string{"tags", "tag_names"}
	ingredientFilterParams = []string{"ingredients", "ingredient_names"}
)

// ParseRecipeFilter reads the comma-separated name filters from a query
// string. Tokens are used verbatim; an absent or empty parameter does not filter.
func ParseRecipeFilter(q url.Values) repository.RecipeFilter {
	return repository.RecipeFilter{
		TagNames:        splitNames(q, tagFilterParams),
		IngredientNames: splitNames(q, ingredientFilterParams),
	}
}

func splitNames(q url.Values, params []string) []string {
	for _, p := range params {
		if v := q.Get(p); v != "" {
			return strings.Split(v, ",")
		}
	}
	return nil
}
