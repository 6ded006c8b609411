package models

// explicit join model, the composite key rules out duplicate links
type RecipeIngredient struct {
	RecipeID     int64 `json:"recipe_id" gorm:"primaryKey;autoIncrement:false"`
	IngredientID int64 `json:"ingredient_id" gorm:"primaryKey;autoIncrement:false;index"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredient"
}
