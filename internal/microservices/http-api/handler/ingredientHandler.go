package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"recipebook/internal/microservices/http-api/dto"
	"recipebook/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type IngredientHandler struct {
	svc     service.IngredientService
	timeout time.Duration
}

func NewIngredientHandler(svc service.IngredientService, timeout time.Duration) *IngredientHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &IngredientHandler{svc: svc, timeout: timeout}
}

func (h *IngredientHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ingredients", h.List)
	rg.GET("/ingredients/:id/recipes", h.GetRecipesByIngredient)
}

func (h *IngredientHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	list, err := h.svc.GetAll(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "list ingredients failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": msgInternal})
		return
	}
	c.JSON(http.StatusOK, dto.IngredientListFromModels(list))
}

// GetRecipesByIngredient handles GET /ingredients/:id/recipes
func (h *IngredientHandler) GetRecipesByIngredient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	list, err := h.svc.GetRecipesByIngredient(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "list recipes by ingredient failed", "ingredient_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": msgInternal})
		return
	}
	c.JSON(http.StatusOK, dto.RecipeListFromModels(list))
}
