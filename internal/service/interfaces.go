package service

import (
	"context"

	"github.com/pageza/mealsearch/backend/internal/types"
)

// RecipeSearcher finds recipes by keyword
type RecipeSearcher interface {
	SearchRecipes(ctx context.Context, query string) ([]types.Recipe, error)
}

// IRecipeClient defines the full set of recipe API operations
type IRecipeClient interface {
	RecipeSearcher
	LookupRecipe(ctx context.Context, id string) (*types.Recipe, error)
	RandomRecipe(ctx context.Context) (*types.Recipe, error)
}

var _ IRecipeClient = (*MealDBClient)(nil)
