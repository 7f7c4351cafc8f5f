package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/athujoshi24/legendary-panel/internal/models"
	"github.com/athujoshi24/legendary-panel/internal/repository"
	"github.com/athujoshi24/legendary-panel/pkg/logger"
	"github.com/athujoshi24/legendary-panel/pkg/validation"
)

// AttributeService lists and creates an owner's tags or ingredients.
type AttributeService[T models.Attribute] interface {
	List(ctx context.Context, ownerID uint) ([]T, error)
	Create(ctx context.Context, ownerID uint, name string) (*T, error)
}

type attributeInput struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

type attributeService[T models.Attribute] struct {
	repo     repository.AttributeRepository[T]
	validate *validation.Validator
	kind     string
}

func NewAttributeService[T models.Attribute](repo repository.AttributeRepository[T]) AttributeService[T] {
	return &attributeService[T]{repo: repo, validate: validation.New(), kind: models.AttributeKind[T]()}
}

func (s *attributeService[T]) List(ctx context.Context, ownerID uint) ([]T, error) {
	logger.L().Debug("list "+s.kind, zap.Uint("user_id", ownerID))
	return s.repo.ListByOwner(ctx, ownerID)
}

// Create stores a new named row for ownerID. Names are kept as given apart
// from surrounding whitespace.
func (s *attributeService[T]) Create(ctx context.Context, ownerID uint, name string) (*T, error) {
	in := attributeInput{Name: strings.TrimSpace(name)}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	obj := models.NewAttribute[T](ownerID, in.Name)
	if err := s.repo.Create(ctx, &obj); err != nil {
		return nil, err
	}

	logger.L().Info(s.kind+" created", zap.Uint("user_id", ownerID), zap.Uint("id", obj.AttrID()))
	return &obj, nil
}
