package service

import (
	"context"

	"recipebook/internal/microservices/http-api/models"
	"recipebook/internal/microservices/http-api/repository"
)

type IngredientService interface {
	GetAll(ctx context.Context) ([]models.Ingredient, error)
	GetRecipesByIngredient(ctx context.Context, ingredientID int64) ([]models.Recipe, error)
}

type ingredientService struct {
	repo *repository.IngredientRepo
}

func NewIngredientService(r *repository.IngredientRepo) IngredientService {
	return &ingredientService{repo: r}
}

func (s *ingredientService) GetAll(ctx context.Context) ([]models.Ingredient, error) {
	return s.repo.GetAll(ctx)
}

func (s *ingredientService) GetRecipesByIngredient(ctx context.Context, ingredientID int64) ([]models.Recipe, error) {
	return s.repo.RecipesForIngredient(ctx, ingredientID)
}
