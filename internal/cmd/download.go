package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	downloadAlbum string
	downloadPath  string
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the photos of an album into a directory",
	Long: `Download every photo of the album into a directory, creating it if needed.
Existing files with the same name are overwritten.

Examples:
  cloudphoto download --album vacation
  cloudphoto download --album vacation --path ./restore`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVar(&downloadAlbum, "album", "", "Album name (required)")
	downloadCmd.Flags().StringVar(&downloadPath, "path", "", "Target directory (default current directory)")
	_ = downloadCmd.MarkFlagRequired("album")
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dir, err := dirOrCwd(downloadPath)
	if err != nil {
		return err
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.archive.Download(ctx, downloadAlbum, dir)
	if err != nil {
		return fail(err)
	}
	s.log.Debug("Album downloaded", zap.String("album", downloadAlbum), zap.Int("photos", n), zap.String("dir", dir))
	fmt.Fprintln(cmd.OutOrStdout(), "Album downloaded successfully")
	return nil
}
