package yaml

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ochairo/depbundle/internal/domain/entities"
	"github.com/ochairo/depbundle/internal/domain/interfaces"
)

// RecipeRepository implements repositories.RecipeRepository using YAML files
type RecipeRepository struct {
	recipesDir string
	parser     *RecipeParser
	logger     interfaces.Logger
}

// NewRecipeRepository creates a new YAML-based recipe repository
func NewRecipeRepository(recipesDir string, logger interfaces.Logger) *RecipeRepository {
	return &RecipeRepository{
		recipesDir: recipesDir,
		parser:     NewRecipeParser(),
		logger:     interfaces.OrNoOp(logger),
	}
}

// GetRecipe retrieves a bundle recipe by name
func (r *RecipeRepository) GetRecipe(_ context.Context, name string) (*entities.Recipe, error) {
	for _, ext := range []string{".yml", ".yaml"} {
		filePath := filepath.Join(r.recipesDir, name+ext)
		if _, err := os.Stat(filePath); err == nil {
			return r.parser.ParseFile(filePath)
		}
	}
	return nil, fmt.Errorf("recipe not found: %s", name)
}

// ListRecipes returns all available bundle recipes sorted by name
func (r *RecipeRepository) ListRecipes(_ context.Context) ([]*entities.Recipe, error) {
	entries, err := os.ReadDir(r.recipesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes directory: %w", err)
	}

	recipes := make([]*entities.Recipe, 0)
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}

		filePath := filepath.Join(r.recipesDir, entry.Name())
		def, err := r.parser.ParseFile(filePath)
		if err != nil {
			// Keep going so one broken recipe does not hide the others
			r.logger.Warn("Skipping unparsable recipe", interfaces.F("file", entry.Name()), interfaces.Err(err))
			continue
		}

		recipes = append(recipes, def)
	}

	sort.Slice(recipes, func(i, j int) bool { return recipes[i].Name < recipes[j].Name })
	return recipes, nil
}

// GetRecipesByPlatform returns recipes that declare imports for the platform's OS
func (r *RecipeRepository) GetRecipesByPlatform(ctx context.Context, platform entities.Platform) ([]*entities.Recipe, error) {
	allDefs, err := r.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*entities.Recipe, 0)
	for _, def := range allDefs {
		if len(def.ImportsFor(platform.OS)) > 0 {
			filtered = append(filtered, def)
		}
	}

	return filtered, nil
}

func isYAMLFile(name string) bool {
	return strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml")
}
