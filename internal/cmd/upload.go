package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	uploadAlbum string
	uploadPath  string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload the photos of a directory into an album",
	Long: `Upload every .jpg and .jpeg file directly inside a directory to the album.
Subdirectories are not descended into. Files that fail to upload are
reported and the rest are still uploaded.

Examples:
  cloudphoto upload --album vacation
  cloudphoto upload --album vacation --path ~/Pictures/2024-07`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVar(&uploadAlbum, "album", "", "Album name (required)")
	uploadCmd.Flags().StringVar(&uploadPath, "path", "", "Directory with photos (default current directory)")
	_ = uploadCmd.MarkFlagRequired("album")
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dir, err := dirOrCwd(uploadPath)
	if err != nil {
		return err
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.archive.Upload(ctx, uploadAlbum, dir)
	if err != nil {
		return fail(err)
	}
	for _, f := range report.Failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error uploading file %s\n", f.Name)
		s.log.Debug("Upload failed", zap.String("file", f.Name), zap.Error(f.Err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d photos to album %s\n", len(report.Uploaded), uploadAlbum)
	return nil
}

// dirOrCwd returns dir, or the working directory when dir is empty.
func dirOrCwd(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", exitError(exitFailure, "the specified directory is not available", err)
	}
	return cwd, nil
}
