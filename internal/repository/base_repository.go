package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	appErr "github.com/athujoshi24/legendary-panel/pkg/errors"
)

// BaseRepository defines common CRUD operations. The owner-scoped variants
// filter on the user_id column so callers never see another user's rows.
type BaseRepository[T any] interface {
	Create(ctx context.Context, obj *T) error
	GetByID(ctx context.Context, id any, dest *T) error
	Update(ctx context.Context, obj *T) error
	Delete(ctx context.Context, id any) error

	ListByOwner(ctx context.Context, ownerID uint) ([]T, error)
	GetByOwner(ctx context.Context, ownerID uint, id uint, dest *T) error
}

type baseRepository[T any] struct {
	db   *gorm.DB
	name string
}

// NewBaseRepository returns a repository for T; name is used in error messages.
func NewBaseRepository[T any](db *gorm.DB, name string) BaseRepository[T] {
	return &baseRepository[T]{db: db, name: name}
}

func (r *baseRepository[T]) Create(ctx context.Context, obj *T) error {
	if err := r.db.WithContext(ctx).Create(obj).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "create "+r.name+" failed")
	}
	return nil
}

func (r *baseRepository[T]) GetByID(ctx context.Context, id any, dest *T) error {
	if err := r.db.WithContext(ctx).First(dest, "id = ?", id).Error; err != nil {
		return r.notFoundOr(err, "get")
	}
	return nil
}

func (r *baseRepository[T]) Update(ctx context.Context, obj *T) error {
	if err := r.db.WithContext(ctx).Save(obj).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "update "+r.name+" failed")
	}
	return nil
}

func (r *baseRepository[T]) Delete(ctx context.Context, id any) error {
	var t T
	res := r.db.WithContext(ctx).Delete(&t, "id = ?", id)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "delete "+r.name+" failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, fmt.Sprintf("%s %v not found", r.name, id))
	}
	return nil
}

func (r *baseRepository[T]) ListByOwner(ctx context.Context, ownerID uint) ([]T, error) {
	out := []T{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list "+r.name+" by owner failed")
	}
	return out, nil
}

func (r *baseRepository[T]) GetByOwner(ctx context.Context, ownerID uint, id uint, dest *T) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(dest).Error; err != nil {
		return r.notFoundOr(err, "get")
	}
	return nil
}

func (r *baseRepository[T]) notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return appErr.New(appErr.CodeNotFound, r.name+" not found")
	}
	return appErr.Wrap(err, appErr.CodeInternal, op+" "+r.name+" failed")
}
