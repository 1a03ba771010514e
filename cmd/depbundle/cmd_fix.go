package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ochairo/depbundle/internal/domain-adapters/gateways"
	"github.com/ochairo/depbundle/internal/domain/services"
)

func newFixCmd(a *app) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "fix <artifact-path>...",
		Short: "Rewrite install names so binaries load libraries from the bundle",
		Long: `Rewrite the install id and external library references of each Mach-O
binary to point at the bundle's Frameworks directory.

Examples:
  depbundle fix MyApp.app/Contents/Frameworks/*.dylib MyApp.app/Contents/MacOS/ffmpeg
  depbundle fix --prefix @loader_path/ lib/libfoo.dylib`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixer := services.NewInstallNameFixer(
				gateways.NewDefaultInspector(),
				gateways.NewInstallNameTool(),
				nil,
				prefix,
				a.logger,
			)

			if err := fixer.FixAll(cmd.Context(), args); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Fixed install names of %d files\n", len(args))
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", services.DefaultInstallNamePrefix, "Install name prefix for relocated libraries")
	return cmd
}
