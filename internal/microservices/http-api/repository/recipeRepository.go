package repository

import (
	"context"
	"fmt"

	"recipebook/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateRecipeInput is what a new recipe is built from; ingredients are referenced by name.
type CreateRecipeInput struct {
	Title           string
	CookingTime     int
	Description     string
	IngredientNames []string
}

type RecipeRepo struct {
	db *gorm.DB
}

func NewRecipeRepo(db *gorm.DB) *RecipeRepo {
	return &RecipeRepo{db: db}
}

// popularity order: most viewed first, quickest first among equals
func byPopularity(db *gorm.DB) *gorm.DB {
	return db.Order("recipes.views desc").Order("recipes.cooking_time asc").Order("recipes.id asc")
}

func preloadIngredients(db *gorm.DB) *gorm.DB {
	return db.Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
		return db.Order("ingredients.id asc")
	})
}

// List returns one page of recipes in popularity order with ingredients loaded.
func (r *RecipeRepo) List(ctx context.Context, skip, limit int) ([]models.Recipe, error) {
	if skip < 0 || limit < 0 {
		return nil, fmt.Errorf("list recipes: invalid page skip=%d limit=%d", skip, limit)
	}
	list := make([]models.Recipe, 0)
	if limit == 0 {
		return list, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Scopes(byPopularity, preloadIngredients).
			Offset(skip).
			Limit(limit).
			Find(&list).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return list, nil
}

// GetAndCountView bumps the view counter of the recipe and returns it with ingredients.
// An unknown id yields (nil, nil).
func (r *RecipeRepo) GetAndCountView(ctx context.Context, id int64) (*models.Recipe, error) {
	var m models.Recipe
	found := true

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).
			Where("id = ?", id).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			found = false
			return nil
		}
		return tx.Scopes(preloadIngredients).First(&m, id).Error
	})
	if err != nil {
		return nil, fmt.Errorf("get recipe %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &m, nil
}

// Create resolves every ingredient name (reusing existing rows, inserting missing ones in
// input order), then stores the recipe and its links, all in one transaction.
func (r *RecipeRepo) Create(ctx context.Context, in CreateRecipeInput) (*models.Recipe, error) {
	m := models.Recipe{
		Title:       in.Title,
		CookingTime: in.CookingTime,
		Description: in.Description,
		Views:       0,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ingredients := make([]models.Ingredient, 0, len(in.IngredientNames))
		seen := make(map[int64]struct{}, len(in.IngredientNames))
		for _, name := range in.IngredientNames {
			ing, err := findOrCreateIngredient(tx, name)
			if err != nil {
				return err
			}
			if _, dup := seen[ing.ID]; dup {
				continue
			}
			seen[ing.ID] = struct{}{}
			ingredients = append(ingredients, *ing)
		}

		if err := tx.Omit(clause.Associations).Create(&m).Error; err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}

		if len(ingredients) > 0 {
			links := make([]models.RecipeIngredient, 0, len(ingredients))
			for _, ing := range ingredients {
				links = append(links, models.RecipeIngredient{RecipeID: m.ID, IngredientID: ing.ID})
			}
			if err := tx.Create(&links).Error; err != nil {
				return fmt.Errorf("link ingredients: %w", err)
			}
		}
		m.Ingredients = ingredients
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	return &m, nil
}

// findOrCreateIngredient looks the name up and inserts it when missing. When a concurrent
// transaction inserts the same name first, the insert is a no-op and the winner's row is read back.
func findOrCreateIngredient(tx *gorm.DB, name string) (*models.Ingredient, error) {
	var ing models.Ingredient
	res := tx.Where("name = ?", name).Limit(1).Find(&ing)
	if res.Error != nil {
		return nil, fmt.Errorf("find ingredient %q: %w", name, res.Error)
	}
	if res.RowsAffected > 0 {
		return &ing, nil
	}

	ing = models.Ingredient{Name: name}
	res = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&ing)
	if res.Error != nil {
		return nil, fmt.Errorf("insert ingredient %q: %w", name, res.Error)
	}
	if res.RowsAffected > 0 && ing.ID != 0 {
		return &ing, nil
	}

	ing = models.Ingredient{}
	if err := tx.Where("name = ?", name).First(&ing).Error; err != nil {
		return nil, fmt.Errorf("reload ingredient %q: %w", name, err)
	}
	return &ing, nil
}

// IngredientsForRecipe reads the recipe's ingredients straight from the join table.
// An unknown recipe yields (nil, nil); a recipe without ingredients yields an empty slice.
func (r *RecipeRepo) IngredientsForRecipe(ctx context.Context, recipeID int64) ([]models.Ingredient, error) {
	var list []models.Ingredient
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		list = make([]models.Ingredient, 0)
		return tx.Model(&models.Ingredient{}).
			Joins("JOIN recipe_ingredient ri ON ri.ingredient_id = ingredients.id").
			Where("ri.recipe_id = ?", recipeID).
			Order("ingredients.id asc").
			Find(&list).Error
	})
	if err != nil {
		return nil, fmt.Errorf("get ingredients by recipe: %w", err)
	}
	return list, nil
}
