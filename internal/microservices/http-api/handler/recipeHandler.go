package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"recipebook/database"
	"recipebook/internal/microservices/http-api/dto"
	"recipebook/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const (
	msgRecipeNotFound = "recipe not found"
	msgCreateFailed   = "failed to create recipe"
	msgInternal       = "internal server error"
)

type RecipeHandler struct {
	svc     service.RecipeService
	timeout time.Duration
}

func NewRecipeHandler(svc service.RecipeService, timeout time.Duration) *RecipeHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RecipeHandler{svc: svc, timeout: timeout}
}

// RegisterRoutes mounts the recipe routes; writeGuards run in front of POST only.
func (h *RecipeHandler) RegisterRoutes(rg *gin.RouterGroup, writeGuards ...gin.HandlerFunc) {
	rg.GET("/recipes", h.List)
	rg.GET("/recipes/:id", h.Get)
	rg.GET("/recipes/:id/ingredients", h.ListIngredients)
	post := append(append([]gin.HandlerFunc{}, writeGuards...), h.Create)
	rg.POST("/recipes", post...)
}

// List handles GET /recipes?skip=&limit=
func (h *RecipeHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	skip, limit := q.Page()

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	list, err := h.svc.List(ctx, skip, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "list recipes failed", "skip", skip, "limit", limit, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": msgInternal})
		return
	}
	c.JSON(http.StatusOK, dto.RecipeListFromModels(list))
}

// Get handles GET /recipes/:id, each successful call counts one view
func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	m, err := h.svc.Get(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "get recipe failed", "recipe_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": msgInternal})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgRecipeNotFound})
		return
	}
	c.JSON(http.StatusOK, dto.RecipeDetailFromModel(*m))
}

// ListIngredients handles GET /recipes/:id/ingredients
func (h *RecipeHandler) ListIngredients(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	list, err := h.svc.Ingredients(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "list recipe ingredients failed", "recipe_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": msgInternal})
		return
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgRecipeNotFound})
		return
	}
	c.JSON(http.StatusOK, dto.IngredientListFromModels(list))
}

// Create handles POST /recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	var in dto.CreateRecipeDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	created, err := h.svc.Create(ctx, in.ToInput())
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		if database.IsUniqueViolation(err) {
			slog.WarnContext(ctx, "create recipe lost an ingredient insert race", "title", in.Title, "error", err)
		} else {
			slog.ErrorContext(ctx, "create recipe failed", "title", in.Title, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": msgCreateFailed})
		return
	}
	c.JSON(http.StatusCreated, dto.RecipeDetailFromModel(*created))
}

// parseID reads the :id path parameter and writes the 422 itself when it is not an integer.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "id must be an integer"})
		return 0, false
	}
	return id, true
}
