package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/athujoshi24/legendary-panel/internal/models"
	appErr "github.com/athujoshi24/legendary-panel/pkg/errors"
)

// RecipeFilter narrows a recipe listing. Within a list any name matches;
// both lists must match when both are set. Empty lists do not filter.
type RecipeFilter struct {
	TagNames        []string
	IngredientNames []string
}

// RecipeLinks carries replacement association sets for a write. A nil field
// leaves the stored set untouched; an empty slice clears it.
type RecipeLinks struct {
	Tags        *[]models.Tag
	Ingredients *[]models.Ingredient
}

type RecipeRepository interface {
	BaseRepository[models.Recipe]
	List(ctx context.Context, ownerID uint, filter RecipeFilter) ([]models.Recipe, error)
	CreateWithLinks(ctx context.Context, recipe *models.Recipe, links RecipeLinks) error
	// UpdateWithLinks writes the named columns and the given links of an owned
	// recipe in one transaction, then reloads it into recipe.
	UpdateWithLinks(ctx context.Context, recipe *models.Recipe, columns []string, links RecipeLinks) error
	DeleteByOwner(ctx context.Context, ownerID uint, id uint) error
}

type recipeRepository struct {
	BaseRepository[models.Recipe]
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{BaseRepository: NewBaseRepository[models.Recipe](db, "recipe"), db: db}
}

func withLinks(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id ASC") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredients.id ASC") })
}

func (r *recipeRepository) List(ctx context.Context, ownerID uint, filter RecipeFilter) ([]models.Recipe, error) {
	q := withLinks(r.db.WithContext(ctx)).Where("recipes.user_id = ?", ownerID)

	// IN (subquery) keeps each recipe once however many names it matches
	if len(filter.TagNames) > 0 {
		q = q.Where("recipes.id IN (?)", r.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.name IN ?", filter.TagNames))
	}
	if len(filter.IngredientNames) > 0 {
		q = q.Where("recipes.id IN (?)", r.db.Table("recipe_ingredients").
			Select("recipe_ingredients.recipe_id").
			Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
			Where("ingredients.name IN ?", filter.IngredientNames))
	}

	out := []models.Recipe{}
	if err := q.Order("recipes.id ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list recipes failed")
	}
	return out, nil
}

// GetByOwner loads an owned recipe with its tags and ingredients.
func (r *recipeRepository) GetByOwner(ctx context.Context, ownerID uint, id uint, dest *models.Recipe) error {
	err := withLinks(r.db.WithContext(ctx)).Where("id = ? AND user_id = ?", id, ownerID).First(dest).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "recipe not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get recipe failed")
	}
	return nil
}

func (r *recipeRepository) CreateWithLinks(ctx context.Context, recipe *models.Recipe, links RecipeLinks) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
		tx.Rollback()
		return appErr.Wrap(err, appErr.CodeInternal, "create recipe failed")
	}
	if err := replaceLinks(tx, recipe, links); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}
	return r.GetByOwner(ctx, recipe.UserID, recipe.ID, recipe)
}

func (r *recipeRepository) UpdateWithLinks(ctx context.Context, recipe *models.Recipe, columns []string, links RecipeLinks) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	if err := ensureOwned(tx, recipe.UserID, recipe.ID); err != nil {
		tx.Rollback()
		return err
	}
	if len(columns) > 0 {
		recipe.UpdatedAt = time.Now()
		res := tx.Model(&models.Recipe{}).
			Where("id = ? AND user_id = ?", recipe.ID, recipe.UserID).
			Select(append(columns, "updated_at")).
			Omit(clause.Associations).
			Updates(recipe)
		if res.Error != nil {
			tx.Rollback()
			return appErr.Wrap(res.Error, appErr.CodeInternal, "update recipe failed")
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			return appErr.New(appErr.CodeNotFound, "recipe not found")
		}
	}
	if err := replaceLinks(tx, recipe, links); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}

	fresh := models.Recipe{}
	if err := r.GetByOwner(ctx, recipe.UserID, recipe.ID, &fresh); err != nil {
		return err
	}
	*recipe = fresh
	return nil
}

func (r *recipeRepository) DeleteByOwner(ctx context.Context, ownerID uint, id uint) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	recipe := models.Recipe{ID: id, UserID: ownerID}
	if err := ensureOwned(tx, ownerID, id); err != nil {
		tx.Rollback()
		return err
	}

	empty := RecipeLinks{Tags: &[]models.Tag{}, Ingredients: &[]models.Ingredient{}}
	if err := replaceLinks(tx, &recipe, empty); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.Recipe{}, "id = ? AND user_id = ?", id, ownerID).Error; err != nil {
		tx.Rollback()
		return appErr.Wrap(err, appErr.CodeInternal, "delete recipe failed")
	}

	if err := tx.Commit().Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}
	return nil
}

// ensureOwned reports not_found unless the owner's recipe row exists in tx.
func ensureOwned(tx *gorm.DB, ownerID uint, id uint) error {
	var count int64
	if err := tx.Model(&models.Recipe{}).Where("id = ? AND user_id = ?", id, ownerID).Count(&count).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "get recipe failed")
	}
	if count == 0 {
		return appErr.New(appErr.CodeNotFound, "recipe not found")
	}
	return nil
}

// replaceLinks swaps the association sets named in links for their new contents.
func replaceLinks(tx *gorm.DB, recipe *models.Recipe, links RecipeLinks) error {
	if links.Tags != nil {
		assoc := tx.Model(recipe).Association("Tags")
		var err error
		if len(*links.Tags) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(*links.Tags)
		}
		if err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "replace recipe tags failed")
		}
	}
	if links.Ingredients != nil {
		assoc := tx.Model(recipe).Association("Ingredients")
		var err error
		if len(*links.Ingredients) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(*links.Ingredients)
		}
		if err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "replace recipe ingredients failed")
		}
	}
	return nil
}
