package dto

import (
	"recipebook/internal/microservices/http-api/models"
	"recipebook/internal/microservices/http-api/repository"
)

// CreateRecipeDTO used for POST /recipes
type CreateRecipeDTO struct {
	Title           string   `json:"title" binding:"required,max=100"`
	CookingTime     int      `json:"cooking_time" binding:"required,min=1"`
	Description     string   `json:"description" binding:"required"`
	IngredientNames []string `json:"ingredient_names" binding:"required,dive,max=50"`
}

// RecipeListItem is one row of GET /recipes
type RecipeListItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Views       int64  `json:"views"`
	CookingTime int    `json:"cooking_time"`
}

// RecipeDetailResponse is returned by GET /recipes/:id and POST /recipes
type RecipeDetailResponse struct {
	ID          int64                `json:"id"`
	Title       string               `json:"title"`
	CookingTime int                  `json:"cooking_time"`
	Description string               `json:"description"`
	Views       int64                `json:"views"`
	Ingredients []IngredientResponse `json:"ingredients"`
}

// ListQuery carries GET /recipes paging
type ListQuery struct {
	Skip  *int `form:"skip" binding:"omitempty,min=0"`
	Limit *int `form:"limit" binding:"omitempty,min=0"`
}

const (
	DefaultSkip  = 0
	DefaultLimit = 100
)

// Page resolves the query against the defaults.
func (q ListQuery) Page() (skip, limit int) {
	skip, limit = DefaultSkip, DefaultLimit
	if q.Skip != nil {
		skip = *q.Skip
	}
	if q.Limit != nil {
		limit = *q.Limit
	}
	return skip, limit
}

// Converters
func (d CreateRecipeDTO) ToInput() repository.CreateRecipeInput {
	return repository.CreateRecipeInput{
		Title:           d.Title,
		CookingTime:     d.CookingTime,
		Description:     d.Description,
		IngredientNames: d.IngredientNames,
	}
}

func RecipeListItemFromModel(m models.Recipe) RecipeListItem {
	return RecipeListItem{
		ID:          m.ID,
		Title:       m.Title,
		Views:       m.Views,
		CookingTime: m.CookingTime,
	}
}

func RecipeListFromModels(list []models.Recipe) []RecipeListItem {
	resp := make([]RecipeListItem, 0, len(list))
	for _, m := range list {
		resp = append(resp, RecipeListItemFromModel(m))
	}
	return resp
}

func RecipeDetailFromModel(m models.Recipe) RecipeDetailResponse {
	return RecipeDetailResponse{
		ID:          m.ID,
		Title:       m.Title,
		CookingTime: m.CookingTime,
		Description: m.Description,
		Views:       m.Views,
		Ingredients: IngredientListFromModels(m.Ingredients),
	}
}
