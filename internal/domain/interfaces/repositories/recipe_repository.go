// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/ochairo/depbundle/internal/domain/entities"
)

// RecipeRepository defines the interface for accessing bundle recipes
type RecipeRepository interface {
	// GetRecipe retrieves a bundle recipe by name
	GetRecipe(ctx context.Context, name string) (*entities.Recipe, error)

	// ListRecipes returns all available bundle recipes
	ListRecipes(ctx context.Context) ([]*entities.Recipe, error)

	// GetRecipesByPlatform returns recipes that declare imports for a platform's OS
	GetRecipesByPlatform(ctx context.Context, platform entities.Platform) ([]*entities.Recipe, error)
}
