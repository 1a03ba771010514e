package yaml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ochairo/depbundle/internal/domain/entities"
	"github.com/ochairo/depbundle/internal/external-adapters/zaplog"
)

func writeRecipes(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatalf("Failed to write test file: %v", err)
		}
	}
}

func TestRecipeRepository_GetRecipe_Success(t *testing.T) {
	tmpDir := t.TempDir()
	writeRecipes(t, tmpDir, map[string]string{
		"ffmpeg.yml":  "name: ffmpeg\nrequires: [videoai/0.8.20]\n",
		"libvpx.yaml": "name: libvpx\n",
	})

	repo := NewRecipeRepository(tmpDir, nil)
	for _, name := range []string{"ffmpeg", "libvpx"} {
		recipe, err := repo.GetRecipe(context.Background(), name)
		if err != nil {
			t.Fatalf("GetRecipe(%s) error = %v", name, err)
		}
		if recipe.Name != name {
			t.Errorf("GetRecipe() name = %v, want %s", recipe.Name, name)
		}
	}
}

func TestRecipeRepository_GetRecipe_NotFound(t *testing.T) {
	repo := NewRecipeRepository(t.TempDir(), nil)
	if _, err := repo.GetRecipe(context.Background(), "nonexistent"); err == nil {
		t.Error("GetRecipe() should return error for nonexistent recipe")
	}
}

func TestRecipeRepository_ListRecipes_SkipsBrokenFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeRecipes(t, tmpDir, map[string]string{
		"zz.yml":     "name: zz\n",
		"aa.yml":     "name: aa\n",
		"broken.yml": "version: 1\n",
		"notes.txt":  "name: ignored\n",
	})
	if err := os.Mkdir(filepath.Join(tmpDir, "sub.yml"), 0750); err != nil {
		t.Fatal(err)
	}

	core, logs := observer.New(zapcore.WarnLevel)
	repo := NewRecipeRepository(tmpDir, zaplog.New(zap.New(core)))

	recipes, err := repo.ListRecipes(context.Background())
	if err != nil {
		t.Fatalf("ListRecipes() error = %v", err)
	}
	if len(recipes) != 2 || recipes[0].Name != "aa" || recipes[1].Name != "zz" {
		t.Errorf("ListRecipes() = %v, want [aa zz]", recipeNames(recipes))
	}
	if logs.FilterField(zap.String("file", "broken.yml")).Len() != 1 {
		t.Errorf("expected a warning for broken.yml, got %v", logs.All())
	}
}

func TestRecipeRepository_ListRecipes_MissingDir(t *testing.T) {
	repo := NewRecipeRepository(filepath.Join(t.TempDir(), "nope"), nil)
	if _, err := repo.ListRecipes(context.Background()); err == nil {
		t.Error("ListRecipes() should fail for a missing directory")
	}
}

func TestRecipeRepository_GetRecipesByPlatform(t *testing.T) {
	tmpDir := t.TempDir()
	writeRecipes(t, tmpDir, map[string]string{
		"mac.yml":  "name: mac\nimports:\n  Macos:\n    - {pattern: '*'}\n",
		"win.yml":  "name: win\nimports:\n  Windows:\n    - {pattern: '*'}\n",
		"both.yml": "name: both\nimports:\n  darwin:\n    - {pattern: '*'}\n  windows:\n    - {pattern: '*'}\n",
	})

	repo := NewRecipeRepository(tmpDir, nil)
	recipes, err := repo.GetRecipesByPlatform(context.Background(), entities.Platform{OS: "darwin", Arch: "arm64"})
	if err != nil {
		t.Fatalf("GetRecipesByPlatform() error = %v", err)
	}

	got := recipeNames(recipes)
	if len(got) != 2 || got[0] != "both" || got[1] != "mac" {
		t.Errorf("GetRecipesByPlatform() = %v, want [both mac]", got)
	}
}

func recipeNames(recipes []*entities.Recipe) []string {
	names := make([]string, 0, len(recipes))
	for _, r := range recipes {
		names = append(names, r.Name)
	}
	return names
}
