// Package main provides the depbundle CLI for assembling self-contained binary bundles.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ochairo/depbundle/internal/domain/entities"
	"github.com/ochairo/depbundle/internal/external-adapters/zaplog"
)

// app holds state shared by all subcommands
type app struct {
	verbose   bool
	logFormat string
	logger    *zaplog.Logger
}

func main() {
	if err := newRootCmd(&app{}).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "depbundle",
		Short: "Assemble self-contained binary bundles",
		Long: `depbundle - build and packaging glue for binary toolchains

Resolves bundle recipes, imports files from installed dependency packages,
copies the shared-library closure of macOS binaries into the bundle and
rewrites their install names, then packages, checksums and signs the result.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if a.logger != nil {
				return nil
			}
			logger, err := zaplog.Build(a.logFormat, a.verbose)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", zaplog.FormatConsole, "Log format: console or json")

	root.AddCommand(
		newCopyCmd(a),
		newFixCmd(a),
		newRequiresCmd(a),
		newImportsCmd(a),
		newListCmd(a),
		newBundleCmd(a),
		newPackageCmd(a),
		newSignCmd(a),
		newVerifyCmd(a),
	)

	return root
}

// detectPlatform returns the platform depbundle is running on
func detectPlatform() entities.Platform {
	return entities.Platform{
		OS:   runtime.GOOS,
		Arch: entities.NormalizeArch(runtime.GOARCH),
	}
}

// resolvePlatform parses the --platform flag, defaulting to the host platform
func resolvePlatform(flagValue string) (entities.Platform, error) {
	if flagValue == "" {
		return detectPlatform(), nil
	}
	p, err := entities.ParsePlatform(flagValue)
	if err != nil {
		return entities.Platform{}, fmt.Errorf("invalid --platform: %w", err)
	}
	return p, nil
}
