package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ochairo/depbundle/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/depbundle/internal/domain-orchestrators"
	"github.com/ochairo/depbundle/internal/external-adapters/yaml"
)

func newBundleCmd(a *app) *cobra.Command {
	var (
		recipeRef     string
		recipesDir    string
		platformFlag  string
		depsRoot      string
		outputDir     string
		distDir       string
		format        string
		signKey       string
		passphraseEnv string
		noPackage     bool
	)

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Build a complete bundle from a recipe",
		Long: `Build a bundle: resolve requirements, import dependency files, relocate
macOS shared libraries, write the manifest, then package, checksum and sign.

Examples:
  depbundle bundle --recipe topaz-ffmpeg --deps-root deps --output build --platform darwin-arm64
  depbundle bundle --recipe topaz-ffmpeg --format tar.zst --sign-key release.asc --passphrase-env SIGN_PASS`,
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

			var passphrase []byte
			if passphraseEnv != "" {
				passphrase = []byte(os.Getenv(passphraseEnv))
			}

			copier := gateways.NewFileCopier()
			orch := orchestrators.NewBundleOrchestrator(
				orchestrators.BundleOrchestratorDeps{
					Recipes:        yaml.NewRecipeRepository(recipesDir, a.logger),
					Importer:       gateways.NewImporter(depsRoot, copier, a.logger),
					SeedFinder:     gateways.NewArtifactFinder(),
					Inspector:      gateways.NewDefaultInspector(),
					Copier:         copier,
					Editor:         gateways.NewInstallNameTool(),
					ManifestWriter: gateways.NewManifestWriter(),
					Packager:       gateways.NewPackager(),
					Checksums:      gateways.NewChecksumWriter(),
					Signer:         gateways.NewSignatureGateway(),
					Hooks:          gateways.NewScriptExecutor(a.logger),
					Logger:         a.logger,
				},
				orchestrators.BundleOrchestratorConfig{
					OutputDir:   outputDir,
					DistDir:     distDir,
					Format:      format,
					SigningKey:  signKey,
					Passphrase:  passphrase,
					SkipPackage: noPackage,
				},
			)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "=== Bundling %s for %s ===\n", def.Name, platform)

			result, err := orch.BuildBundle(cmd.Context(), def, platform)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, result.GetBundleSummary())

			if !noPackage {
				produced, err := gateways.NewArtifactFinder().FindByGlob(distDir, def.Name, def.Version)
				if err == nil && len(produced) > 0 {
					fmt.Fprintln(out, "\nProduced:")
					for _, p := range produced {
						fmt.Fprintf(out, "  - %s\n", filepath.Base(p))
					}
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&recipeRef, "recipe", "", "Recipe file or name")
	flags.StringVar(&recipesDir, "recipes-dir", "recipes", "Path to recipes directory")
	flags.StringVar(&platformFlag, "platform", "", "Target platform (e.g., darwin-arm64); defaults to the host")
	flags.StringVar(&depsRoot, "deps-root", "deps", "Directory containing installed dependency packages")
	flags.StringVar(&outputDir, "output", "build", "Bundle staging directory")
	flags.StringVar(&distDir, "dist", "dist", "Directory for archives, checksums and signatures")
	flags.StringVar(&format, "format", gateways.FormatTarGz, "Archive format: tar.gz or tar.zst")
	flags.StringVar(&signKey, "sign-key", "", "Armored private key used to sign the archive")
	flags.StringVar(&passphraseEnv, "passphrase-env", "", "Environment variable holding the signing key passphrase")
	flags.BoolVar(&noPackage, "no-package", false, "Stop after writing the manifest")
	return cmd
}
