package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ochairo/depbundle/internal/domain-adapters/gateways"
	"github.com/ochairo/depbundle/internal/domain/interfaces"
)

func newPackageCmd(a *app) *cobra.Command {
	var name, version, platformFlag, distDir, format string

	cmd := &cobra.Command{
		Use:   "package <bundle-dir>",
		Short: "Archive a bundle directory and write its checksum",
		Long: `Archive a directory as <name>-<version>-<platform>.tar.gz (or .tar.zst)
and write a .sha256 sidecar next to it.

Examples:
  depbundle package build --name topaz-ffmpeg --version 0.8.20 --platform darwin-arm64`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || version == "" {
				return fmt.Errorf("--name and --version are required")
			}
			platform, err := resolvePlatform(platformFlag)
			if err != nil {
				return err
			}

			archive, err := gateways.NewPackager().PackageDirectory(cmd.Context(), args[0], name, version,
				platform.String(), distDir, format)
			if err != nil {
				return err
			}

			sidecar, err := gateways.NewChecksumWriter().WriteChecksumFile(archive.Path)
			if err != nil {
				return err
			}

			a.logger.Info("Packaged bundle", interfaces.F("archive", archive.Path), interfaces.F("checksum", sidecar))
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s\n   %s\n", archive.Path, sidecar)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Bundle name")
	cmd.Flags().StringVar(&version, "version", "", "Bundle version")
	cmd.Flags().StringVar(&platformFlag, "platform", "", "Target platform; defaults to the host")
	cmd.Flags().StringVar(&distDir, "dist", "dist", "Output directory for the archive")
	cmd.Flags().StringVar(&format, "format", gateways.FormatTarGz, "Archive format: tar.gz or tar.zst")
	return cmd
}

func newSignCmd(a *app) *cobra.Command {
	var keyPath, passphraseEnv string

	cmd := &cobra.Command{
		Use:   "sign <file>",
		Short: "Create an armored detached signature (<file>.asc)",
		Long: `Sign a file with an OpenPGP private key.

Examples:
  depbundle sign dist/topaz-ffmpeg-0.8.20-darwin-arm64.tar.gz --key release.asc --passphrase-env SIGN_PASS`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyPath == "" {
				return fmt.Errorf("--key is required")
			}
			var passphrase []byte
			if passphraseEnv != "" {
				passphrase = []byte(os.Getenv(passphraseEnv))
			}

			sigPath, err := gateways.NewSignatureGateway().SignFile(args[0], keyPath, passphrase)
			if err != nil {
				return err
			}

			a.logger.Info("Signed file", interfaces.F("file", args[0]), interfaces.F("signature", sigPath))
			fmt.Fprintf(cmd.OutOrStdout(), "🔐 %s\n", sigPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&keyPath, "key", "", "Armored or binary private key file")
	cmd.Flags().StringVar(&passphraseEnv, "passphrase-env", "", "Environment variable holding the key passphrase")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	var sigPath, keyringPath, checksumPath string

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify a bundle archive's checksum and/or signature",
		Long: `Verify a file against its .sha256 sidecar and/or a detached OpenPGP signature.

Examples:
  depbundle verify dist/topaz-ffmpeg-0.8.20-darwin-arm64.tar.gz --sha256 dist/topaz-ffmpeg-0.8.20-darwin-arm64.tar.gz.sha256
  depbundle verify dist/topaz-ffmpeg-0.8.20-darwin-arm64.tar.gz --keyring release-pub.asc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := args[0]
			if checksumPath == "" && keyringPath == "" {
				return fmt.Errorf("nothing to verify: pass --sha256 and/or --keyring")
			}
			out := cmd.OutOrStdout()

			if checksumPath != "" {
				checksums := gateways.NewChecksumWriter()
				expected, err := checksums.ReadChecksumFile(checksumPath)
				if err != nil {
					return err
				}
				if err := checksums.VerifyChecksum(cmd.Context(), filePath, expected); err != nil {
					return err
				}
				fmt.Fprintln(out, "✅ Checksum OK")
			}

			if keyringPath != "" {
				fingerprint, err := gateways.NewSignatureGateway().VerifyFile(filePath, sigPath, keyringPath)
				if err != nil {
					return err
				}
				a.logger.Info("Signature verified", interfaces.F("file", filePath), interfaces.F("signer", fingerprint))
				fmt.Fprintf(out, "✅ Signature OK (key %s)\n", fingerprint)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sigPath, "sig", "", "Detached signature file (default <file>.asc)")
	cmd.Flags().StringVar(&keyringPath, "keyring", "", "Public keyring file")
	cmd.Flags().StringVar(&checksumPath, "sha256", "", "Checksum sidecar file")
	return cmd
}
