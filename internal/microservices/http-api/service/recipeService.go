package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"recipebook/internal/microservices/http-api/models"
	"recipebook/internal/microservices/http-api/repository"
)

const (
	MaxTitleLength          = 100
	MaxIngredientNameLength = 50
	MinCookingTime          = 1
)

var ErrInvalidInput = errors.New("invalid input")

type RecipeService interface {
	List(ctx context.Context, skip, limit int) ([]models.Recipe, error)
	// Get counts a view; it returns (nil, nil) for an unknown id.
	Get(ctx context.Context, id int64) (*models.Recipe, error)
	Create(ctx context.Context, in repository.CreateRecipeInput) (*models.Recipe, error)
	// Ingredients does not count a view; nil means the recipe does not exist.
	Ingredients(ctx context.Context, id int64) ([]models.Ingredient, error)
}

type recipeService struct {
	repo *repository.RecipeRepo
}

func NewRecipeService(r *repository.RecipeRepo) RecipeService {
	return &recipeService{repo: r}
}

func (s *recipeService) List(ctx context.Context, skip, limit int) ([]models.Recipe, error) {
	if skip < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: skip and limit must not be negative", ErrInvalidInput)
	}
	return s.repo.List(ctx, skip, limit)
}

func (s *recipeService) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	m, err := s.repo.GetAndCountView(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		slog.DebugContext(ctx, "recipe not found", "recipe_id", id)
		return nil, nil
	}
	slog.DebugContext(ctx, "recipe viewed", "recipe_id", id, "views", m.Views)
	return m, nil
}

func (s *recipeService) Create(ctx context.Context, in repository.CreateRecipeInput) (*models.Recipe, error) {
	if err := validateRecipeInput(in); err != nil {
		return nil, err
	}
	if in.IngredientNames == nil {
		in.IngredientNames = []string{}
	}

	m, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "recipe created", "recipe_id", m.ID, "ingredients", len(m.Ingredients))
	return m, nil
}

func (s *recipeService) Ingredients(ctx context.Context, id int64) ([]models.Ingredient, error) {
	return s.repo.IngredientsForRecipe(ctx, id)
}

// validateRecipeInput mirrors the request binding rules for callers that bypass the HTTP layer.
func validateRecipeInput(in repository.CreateRecipeInput) error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, MaxTitleLength)
	}
	if in.CookingTime < MinCookingTime {
		return fmt.Errorf("%w: cooking_time must be at least %d", ErrInvalidInput, MinCookingTime)
	}
	if in.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	for _, name := range in.IngredientNames {
		if utf8.RuneCountInString(name) > MaxIngredientNameLength {
			return fmt.Errorf("%w: ingredient name %q must be at most %d characters", ErrInvalidInput, name, MaxIngredientNameLength)
		}
	}
	return nil
}
