package models

type Recipe struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string `json:"title" gorm:"size:100;not null;index"`
	CookingTime int    `json:"cooking_time" gorm:"not null"`
	Description string `json:"description" gorm:"type:text;not null"`
	Views       int64  `json:"views" gorm:"not null;default:0"`

	// association, link rows live in recipe_ingredient
	Ingredients []Ingredient `json:"ingredients,omitempty" gorm:"many2many:recipe_ingredient;"`
}

func (Recipe) TableName() string {
	return "recipes"
}
