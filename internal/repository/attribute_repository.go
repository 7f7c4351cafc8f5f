package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/athujoshi24/legendary-panel/internal/models"
	appErr "github.com/athujoshi24/legendary-panel/pkg/errors"
)

// AttributeRepository stores owner-scoped, name-keyed rows (tags or ingredients).
type AttributeRepository[T models.Attribute] interface {
	BaseRepository[T]
	// FindByNames returns the owner's rows whose name is in names, ordered by id.
	// Several rows may share a name.
	FindByNames(ctx context.Context, ownerID uint, names []string) ([]T, error)
}

type attributeRepository[T models.Attribute] struct {
	BaseRepository[T]
	db   *gorm.DB
	kind string
}

func NewAttributeRepository[T models.Attribute](db *gorm.DB) AttributeRepository[T] {
	kind := models.AttributeKind[T]()
	return &attributeRepository[T]{BaseRepository: NewBaseRepository[T](db, kind), db: db, kind: kind}
}

func NewTagRepository(db *gorm.DB) AttributeRepository[models.Tag] {
	return NewAttributeRepository[models.Tag](db)
}

func NewIngredientRepository(db *gorm.DB) AttributeRepository[models.Ingredient] {
	return NewAttributeRepository[models.Ingredient](db)
}

func (r *attributeRepository[T]) FindByNames(ctx context.Context, ownerID uint, names []string) ([]T, error) {
	out := []T{}
	if len(names) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND name IN ?", ownerID, names).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "find "+r.kind+" by name failed")
	}
	return out, nil
}
