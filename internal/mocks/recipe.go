package mocks

import (
	"context"

	"github.com/pageza/mealsearch/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockRecipeClient is a mock implementation of the recipe API client
type MockRecipeClient struct {
	mock.Mock
}

// SearchRecipes mocks the SearchRecipes method
func (m *MockRecipeClient) SearchRecipes(ctx context.Context, query string) ([]types.Recipe, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Recipe), args.Error(1)
}

// LookupRecipe mocks the LookupRecipe method
func (m *MockRecipeClient) LookupRecipe(ctx context.Context, id string) (*types.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Recipe), args.Error(1)
}

// RandomRecipe mocks the RandomRecipe method
func (m *MockRecipeClient) RandomRecipe(ctx context.Context) (*types.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Recipe), args.Error(1)
}
