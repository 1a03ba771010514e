package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ochairo/depbundle/internal/domain-adapters/gateways"
	"github.com/ochairo/depbundle/internal/domain/entities"
	"github.com/ochairo/depbundle/internal/domain/interfaces"
	"github.com/ochairo/depbundle/internal/domain/services"
	"github.com/ochairo/depbundle/internal/external-adapters/yaml"
)

// loadRecipe accepts either a path to a recipe file or a recipe name looked up in recipesDir
func loadRecipe(ctx context.Context, ref, recipesDir string, logger interfaces.Logger) (*entities.Recipe, error) {
	if ref == "" {
		return nil, fmt.Errorf("--recipe is required")
	}
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return yaml.NewRecipeParser().ParseFile(ref)
	}
	return yaml.NewRecipeRepository(recipesDir, logger).GetRecipe(ctx, ref)
}

func newRequiresCmd(a *app) *cobra.Command {
	var recipeRef, recipesDir, platformFlag string

	cmd := &cobra.Command{
		Use:   "requires",
		Short: "Show the requirements and options a recipe resolves to on a platform",
		Long: `Show the requirements and package options active on a platform.

Examples:
  depbundle requires --recipe topaz-ffmpeg --platform darwin-x86_64
  depbundle requires --recipe ./recipes/ffmpeg.yml --platform windows-x86_64`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			platform, err := resolvePlatform(platformFlag)
			if err != nil {
				return err
			}
			def, err := loadRecipe(cmd.Context(), recipeRef, recipesDir, a.logger)
			if err != nil {
				return err
			}

			resolved := services.ResolveRequirements(def, platform)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%s %s on %s\n\n", def.Name, def.Version, platform)
			fmt.Fprintln(out, "Requirements:")
			for _, ref := range resolved.Refs() {
				fmt.Fprintf(out, "  %s\n", ref)
			}

			if len(resolved.Options) > 0 {
				fmt.Fprintln(out, "\nOptions:")
				for _, o := range resolved.Options {
					fmt.Fprintf(out, "  %s:%s=%s\n", o.Package, o.Name, o.Value)
				}
			}

			if len(resolved.Imports) > 0 {
				fmt.Fprintln(out, "\nImports:")
				for _, r := range resolved.Imports {
					fmt.Fprintf(out, "  %-10s %s -> %s\n", r.Pattern, orDot(r.Src), orDot(r.Dst))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&recipeRef, "recipe", "", "Recipe file or name")
	cmd.Flags().StringVar(&recipesDir, "recipes-dir", "recipes", "Path to recipes directory")
	cmd.Flags().StringVar(&platformFlag, "platform", "", "Target platform (e.g., darwin-arm64); defaults to the host")
	return cmd
}

func newImportsCmd(a *app) *cobra.Command {
	var recipeRef, recipesDir, platformFlag, depsRoot, outputDir string

	cmd := &cobra.Command{
		Use:   "imports",
		Short: "Copy files from installed dependency packages into an output directory",
		Long: `Apply a recipe's per-OS import rules. Each requirement is expected to be
installed at <deps-root>/<package name>.

Examples:
  depbundle imports --recipe ffmpeg --deps-root deps --output build --platform darwin-arm64`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			platform, err := resolvePlatform(platformFlag)
			if err != nil {
				return err
			}
			def, err := loadRecipe(cmd.Context(), recipeRef, recipesDir, a.logger)
			if err != nil {
				return err
			}

			resolved := services.ResolveRequirements(def, platform)
			importer := gateways.NewImporter(depsRoot, gateways.NewFileCopier(), a.logger)

			written, err := importer.Import(cmd.Context(), resolved.Names(), resolved.Imports, outputDir)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d files into %s\n", len(written), outputDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&recipeRef, "recipe", "", "Recipe file or name")
	cmd.Flags().StringVar(&recipesDir, "recipes-dir", "recipes", "Path to recipes directory")
	cmd.Flags().StringVar(&platformFlag, "platform", "", "Target platform (e.g., darwin-arm64); defaults to the host")
	cmd.Flags().StringVar(&depsRoot, "deps-root", "deps", "Directory containing installed dependency packages")
	cmd.Flags().StringVar(&outputDir, "output", "build", "Output directory")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var recipesDir, platformFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available bundle recipes",
		Long: `List all bundle recipes.

Examples:
  depbundle list
  depbundle list --platform windows`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo := yaml.NewRecipeRepository(recipesDir, a.logger)

			var defs []*entities.Recipe
			var err error
			if platformFlag != "" {
				platform, perr := resolvePlatform(platformFlag)
				if perr != nil {
					return perr
				}
				defs, err = repo.GetRecipesByPlatform(cmd.Context(), platform)
			} else {
				defs, err = repo.ListRecipes(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("error listing recipes: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Available recipes (%d total):\n\n", len(defs))
			for _, def := range defs {
				osNames := make([]string, 0, len(def.Imports))
				for osName := range def.Imports {
					osNames = append(osNames, osName)
				}
				sort.Strings(osNames)

				refs := make([]string, 0, len(def.Requirements))
				for _, r := range def.Requirements {
					refs = append(refs, r.Ref)
				}

				fmt.Fprintf(out, "  %-20s %s\n", def.Name, def.Description)
				fmt.Fprintf(out, "  %-20s Requires: %s\n", "", strings.Join(refs, ", "))
				fmt.Fprintf(out, "  %-20s Platforms: %s\n", "", strings.Join(osNames, ", "))
				if len(def.Bundle.Seeds) > 0 {
					fmt.Fprintf(out, "  %-20s 📦 Bundles: %s\n", "", strings.Join(def.Bundle.Seeds, ", "))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&recipesDir, "recipes-dir", "recipes", "Path to recipes directory")
	cmd.Flags().StringVar(&platformFlag, "platform", "", "Only show recipes with imports for this platform")
	return cmd
}

func orDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}
