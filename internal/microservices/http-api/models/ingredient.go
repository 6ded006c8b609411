package models

// Ingredient carries no back-reference to recipes; use the repository join queries instead.
type Ingredient struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:50;uniqueIndex;not null"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}
