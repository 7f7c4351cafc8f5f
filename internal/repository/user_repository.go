package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/athujoshi24/legendary-panel/internal/models"
	appErr "github.com/athujoshi24/legendary-panel/pkg/errors"
)

type UserRepository interface {
	BaseRepository[models.User]
	GetByEmail(ctx context.Context, email string, dest *models.User) error
	// DeleteCascade removes the user with every tag, ingredient, recipe and
	// link row it owns.
	DeleteCascade(ctx context.Context, userID uint) error
}

type userRepository struct {
	BaseRepository[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository[models.User](db, "user"), db: db}
}

// Create reports a taken email as CodeAlreadyExists.
func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return appErr.New(appErr.CodeAlreadyExists, "user with this email already exists").
				WithField("email", "user with this email already exists")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "create user failed")
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string, dest *models.User) error {
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErr.New(appErr.CodeNotFound, "user not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get user by email failed")
	}
	return nil
}

func (r *userRepository) DeleteCascade(ctx context.Context, userID uint) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	owned := func(model any) *gorm.DB {
		return tx.Model(model).Select("id").Where("user_id = ?", userID)
	}

	steps := []struct {
		what string
		run  func() error
	}{
		{"recipe tag links", func() error {
			return tx.Exec("DELETE FROM recipe_tags WHERE recipe_id IN (?) OR tag_id IN (?)", owned(&models.Recipe{}), owned(&models.Tag{})).Error
		}},
		{"recipe ingredient links", func() error {
			return tx.Exec("DELETE FROM recipe_ingredients WHERE recipe_id IN (?) OR ingredient_id IN (?)", owned(&models.Recipe{}), owned(&models.Ingredient{})).Error
		}},
		{"recipes", func() error { return tx.Where("user_id = ?", userID).Delete(&models.Recipe{}).Error }},
		{"tags", func() error { return tx.Where("user_id = ?", userID).Delete(&models.Tag{}).Error }},
		{"ingredients", func() error { return tx.Where("user_id = ?", userID).Delete(&models.Ingredient{}).Error }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			tx.Rollback()
			return appErr.Wrap(err, appErr.CodeInternal, "delete "+step.what+" failed")
		}
	}

	res := tx.Delete(&models.User{}, "id = ?", userID)
	if res.Error != nil {
		tx.Rollback()
		return appErr.Wrap(res.Error, appErr.CodeInternal, "delete user failed")
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return appErr.New(appErr.CodeNotFound, "user not found")
	}

	if err := tx.Commit().Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
