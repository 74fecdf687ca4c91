package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealsearch/backend/internal/service"
	"github.com/pageza/mealsearch/backend/internal/view"
)

// RecipeHandler passes single-recipe lookups through to the recipe API
type RecipeHandler struct {
	client service.IRecipeClient
}

func NewRecipeHandler(client service.IRecipeClient) *RecipeHandler {
	return &RecipeHandler{client: client}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("/random", h.RandomRecipe)
		recipes.GET("/:id", h.GetRecipe)
	}
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.client.LookupRecipe(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrRecipeNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	if err != nil {
		log.Printf("[RecipeHandler] lookup %s failed: %v", c.Param("id"), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipe": recipe,
		"card":   view.NewCard(*recipe),
	})
}

func (h *RecipeHandler) RandomRecipe(c *gin.Context) {
	recipe, err := h.client.RandomRecipe(c.Request.Context())
	if err != nil {
		log.Printf("[RecipeHandler] random recipe failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipe": recipe,
		"card":   view.NewCard(*recipe),
	})
}
