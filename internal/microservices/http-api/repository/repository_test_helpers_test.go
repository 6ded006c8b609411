package repository

import (
	"fmt"
	"strings"
	"testing"

	"recipebook/database"
	"recipebook/internal/microservices/http-api/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedRecipe(t *testing.T, db *gorm.DB, title string, views int64, cookingTime int) *models.Recipe {
	t.Helper()
	m := &models.Recipe{Title: title, CookingTime: cookingTime, Description: title + " description", Views: views}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("seed recipe %s: %v", title, err)
	}
	return m
}

func ingredientNames(list []models.Ingredient) []string {
	names := make([]string, 0, len(list))
	for _, ing := range list {
		names = append(names, ing.Name)
	}
	return names
}
