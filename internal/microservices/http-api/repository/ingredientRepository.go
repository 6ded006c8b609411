package repository

import (
	"context"
	"fmt"

	"recipebook/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type IngredientRepo struct {
	db *gorm.DB
}

func NewIngredientRepo(db *gorm.DB) *IngredientRepo {
	return &IngredientRepo{db: db}
}

func (r *IngredientRepo) GetAll(ctx context.Context) ([]models.Ingredient, error) {
	list := make([]models.Ingredient, 0)
	if err := r.db.WithContext(ctx).Order("id asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get ingredients: %w", err)
	}
	return list, nil
}

// RecipesForIngredient returns the recipes using the given ingredient, in popularity order.
// Preloads Ingredients on each recipe.
func (r *IngredientRepo) RecipesForIngredient(ctx context.Context, ingredientID int64) ([]models.Recipe, error) {
	list := make([]models.Recipe, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Joins("JOIN recipe_ingredient ri ON ri.recipe_id = recipes.id").
		Where("ri.ingredient_id = ?", ingredientID).
		Scopes(byPopularity, preloadIngredients).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get recipes by ingredient: %w", err)
	}
	return list, nil
}
