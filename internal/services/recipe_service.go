package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/athujoshi24/legendary-panel/internal/models"
	"github.com/athujoshi24/legendary-panel/internal/repository"
	"github.com/athujoshi24/legendary-panel/pkg/logger"
	"github.com/athujoshi24/legendary-panel/pkg/validation"
)

type RecipeService interface {
	List(ctx context.Context, ownerID uint, filter repository.RecipeFilter) ([]models.Recipe, error)
	Get(ctx context.Context, ownerID, id uint) (*models.Recipe, error)
	Create(ctx context.Context, ownerID uint, input *RecipeInput) (*models.Recipe, error)
	// Update applies input to an owned recipe. With full set, omitted scalar
	// fields are cleared and omitted association lists are emptied; otherwise
	// omitted fields keep their stored value. A present list always replaces
	// the stored set.
	Update(ctx context.Context, ownerID, id uint, input *RecipeInput, full bool) (*models.Recipe, error)
	Delete(ctx context.Context, ownerID, id uint) error
}

// RecipeInput is a recipe write as submitted by a client. Nil means omitted.
type RecipeInput struct {
	Title              *string
	Type               *string
	CookingInstruction *string
	Tags               *[]string
	Ingredients        *[]string
}

type recipeFields struct {
	Title              string `json:"title" validate:"required,notblank,max=255"`
	Type               string `json:"type" validate:"required,oneof=VEG NON-VEG"`
	CookingInstruction string `json:"cookingInstruction" validate:"max=2000"`
}

type recipeService struct {
	recipeRepo repository.RecipeRepository
	resolver   *AssociationResolver
	validate   *validation.Validator
}

func NewRecipeService(recipeRepo repository.RecipeRepository, resolver *AssociationResolver) RecipeService {
	return &recipeService{recipeRepo: recipeRepo, resolver: resolver, validate: validation.New()}
}

var _ RecipeService = (*recipeService)(nil)

func (s *recipeService) List(ctx context.Context, ownerID uint, filter repository.RecipeFilter) ([]models.Recipe, error) {
	logger.L().Debug("list recipes",
		zap.Uint("user_id", ownerID),
		zap.Strings("tags", filter.TagNames),
		zap.Strings("ingredients", filter.IngredientNames))
	return s.recipeRepo.List(ctx, ownerID, filter)
}

func (s *recipeService) Get(ctx context.Context, ownerID, id uint) (*models.Recipe, error) {
	var r models.Recipe
	if err := s.recipeRepo.GetByOwner(ctx, ownerID, id, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *recipeService) Create(ctx context.Context, ownerID uint, input *RecipeInput) (*models.Recipe, error) {
	logger.L().Info("create recipe called", zap.Uint("user_id", ownerID))

	fields := mergeFields(recipeFields{}, input)
	if err := s.validate.Struct(fields); err != nil {
		return nil, err
	}
	links, err := s.resolveLinks(ctx, ownerID, input, true)
	if err != nil {
		return nil, err
	}

	r := &models.Recipe{
		UserID:             ownerID,
		Title:              fields.Title,
		Type:               models.Category(fields.Type),
		CookingInstruction: fields.CookingInstruction,
	}
	if err := s.recipeRepo.CreateWithLinks(ctx, r, links); err != nil {
		return nil, err
	}

	logger.L().Info("recipe created", zap.Uint("recipe_id", r.ID), zap.Uint("user_id", ownerID))
	return r, nil
}

func (s *recipeService) Update(ctx context.Context, ownerID, id uint, input *RecipeInput, full bool) (*models.Recipe, error) {
	logger.L().Info("update recipe called", zap.Uint("recipe_id", id), zap.Uint("user_id", ownerID), zap.Bool("full", full))

	existing, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	base := recipeFields{}
	if !full {
		base = recipeFields{
			Title:              existing.Title,
			Type:               string(existing.Type),
			CookingInstruction: existing.CookingInstruction,
		}
	}
	fields := mergeFields(base, input)
	if err := s.validate.Struct(fields); err != nil {
		return nil, err
	}
	links, err := s.resolveLinks(ctx, ownerID, input, full)
	if err != nil {
		return nil, err
	}

	columns := []string{"title", "type", "cooking_instruction"}
	if !full {
		columns = columns[:0]
		if input.Title != nil {
			columns = append(columns, "title")
		}
		if input.Type != nil {
			columns = append(columns, "type")
		}
		if input.CookingInstruction != nil {
			columns = append(columns, "cooking_instruction")
		}
	}

	r := &models.Recipe{
		ID:                 existing.ID,
		UserID:             ownerID,
		Title:              fields.Title,
		Type:               models.Category(fields.Type),
		CookingInstruction: fields.CookingInstruction,
	}
	if err := s.recipeRepo.UpdateWithLinks(ctx, r, columns, links); err != nil {
		return nil, err
	}

	logger.L().Info("recipe updated", zap.Uint("recipe_id", r.ID), zap.Uint("user_id", ownerID))
	return r, nil
}

func (s *recipeService) Delete(ctx context.Context, ownerID, id uint) error {
	if err := s.recipeRepo.DeleteByOwner(ctx, ownerID, id); err != nil {
		return err
	}
	logger.L().Info("recipe deleted", zap.Uint("recipe_id", id), zap.Uint("user_id", ownerID))
	return nil
}

func mergeFields(base recipeFields, in *RecipeInput) recipeFields {
	if in.Title != nil {
		base.Title = *in.Title
	}
	if in.Type != nil {
		base.Type = *in.Type
	}
	if in.CookingInstruction != nil {
		base.CookingInstruction = *in.CookingInstruction
	}
	return base
}

// resolveLinks turns submitted names into owned rows. With all set, an
// omitted list becomes an empty replacement set.
func (s *recipeService) resolveLinks(ctx context.Context, ownerID uint, in *RecipeInput, all bool) (repository.RecipeLinks, error) {
	var links repository.RecipeLinks

	if in.Tags != nil || all {
		var names []string
		if in.Tags != nil {
			names = *in.Tags
		}
		tags, err := s.resolver.ResolveTags(ctx, ownerID, names)
		if err != nil {
			return links, err
		}
		links.Tags = &tags
	}
	if in.Ingredients != nil || all {
		var names []string
		if in.Ingredients != nil {
			names = *in.Ingredients
		}
		ingredients, err := s.resolver.ResolveIngredients(ctx, ownerID, names)
		if err != nil {
			return links, err
		}
		links.Ingredients = &ingredients
	}
	return links, nil
}
