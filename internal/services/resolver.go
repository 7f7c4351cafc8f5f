package services

import (
	"context"

	"github.com/athujoshi24/legendary-panel/internal/models"
	"github.com/athujoshi24/legendary-panel/internal/repository"
	appErr "github.com/athujoshi24/legendary-panel/pkg/errors"
)

// AssociationResolver maps the tag and ingredient names a recipe write
// submits onto the caller's stored rows. It never creates rows.
type AssociationResolver struct {
	tags        repository.AttributeRepository[models.Tag]
	ingredients repository.AttributeRepository[models.Ingredient]
}

func NewAssociationResolver(tags repository.AttributeRepository[models.Tag], ingredients repository.AttributeRepository[models.Ingredient]) *AssociationResolver {
	return &AssociationResolver{tags: tags, ingredients: ingredients}
}

func (r *AssociationResolver) ResolveTags(ctx context.Context, ownerID uint, names []string) ([]models.Tag, error) {
	return resolveNames(ctx, r.tags, ownerID, names)
}

func (r *AssociationResolver) ResolveIngredients(ctx context.Context, ownerID uint, names []string) ([]models.Ingredient, error) {
	return resolveNames(ctx, r.ingredients, ownerID, names)
}

// resolveNames returns one row per distinct name, in first-seen order. When
// the owner has several rows with a name the lowest id is used.
func resolveNames[T models.Attribute](ctx context.Context, repo repository.AttributeRepository[T], ownerID uint, names []string) ([]T, error) {
	distinct := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		distinct = append(distinct, n)
	}
	if len(distinct) == 0 {
		return []T{}, nil
	}

	found, err := repo.FindByNames(ctx, ownerID, distinct)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]T, len(found))
	for _, row := range found {
		if _, ok := byName[row.AttrName()]; !ok {
			byName[row.AttrName()] = row
		}
	}

	out := make([]T, 0, len(distinct))
	var missing []string
	for _, n := range distinct {
		row, ok := byName[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		out = append(out, row)
	}
	if len(missing) > 0 {
		return nil, appErr.MissingReference(models.AttributeKind[T](), missing)
	}
	return out, nil
}
