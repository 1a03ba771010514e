package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ochairo/depbundle/internal/domain-adapters/gateways"
	"github.com/ochairo/depbundle/internal/domain/services"
)

// ErrNotADirectory is returned when the copy destination is not a directory
var ErrNotADirectory = errors.New("destination is not a directory")

const copyUsage = "depbundle copy <destination-dir> <artifact-path> [<artifact-path> ...]"

func newCopyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <destination-dir> <artifact-path>...",
		Short: "Copy binaries and their non-system shared libraries into a directory",
		Long: `Copy each artifact and every library it transitively links against from a
non-system location (/opt, Homebrew Cellar, package caches, home directories)
into the destination directory. Each file name is copied once.

Examples:
  depbundle copy MyApp.app/Contents/Frameworks bin/ffmpeg bin/ffprobe`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("expected a destination directory and at least one artifact\nUsage: %s", copyUsage)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			destination, seeds := args[0], args[1:]

			info, err := os.Stat(destination)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrNotADirectory, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%w: %s", ErrNotADirectory, destination)
			}

			copier := services.NewClosureCopier(
				gateways.NewDefaultInspector(),
				gateways.NewFileCopier(),
				nil,
				a.logger,
			)

			report, err := copier.ResolveAndCopy(cmd.Context(), destination, seeds)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Copied %d files into %s\n", len(report.Copied), destination)
			for _, c := range report.Collisions {
				fmt.Fprintf(cmd.OutOrStdout(), "  ⚠️  %s: kept %s, skipped %s\n", c.Name, c.Kept, c.Skipped)
			}
			return nil
		},
	}
}
