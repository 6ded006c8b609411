package dto

import "recipebook/internal/microservices/http-api/models"

type IngredientResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func IngredientFromModel(g models.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:   g.ID,
		Name: g.Name,
	}
}

func IngredientListFromModels(list []models.Ingredient) []IngredientResponse {
	resp := make([]IngredientResponse, 0, len(list))
	for _, g := range list {
		resp = append(resp, IngredientFromModel(g))
	}
	return resp
}
