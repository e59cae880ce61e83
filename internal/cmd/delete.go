package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	deleteAlbum string
	deletePhoto string
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete an album or a single photo",
	Long: `Delete every object of an album, or only one photo when --photo is given.

Examples:
  cloudphoto delete --album vacation
  cloudphoto delete --album vacation --photo IMG_0001.jpg`,
	Args: cobra.NoArgs,
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringVar(&deleteAlbum, "album", "", "Album name (required)")
	deleteCmd.Flags().StringVar(&deletePhoto, "photo", "", "Photo to delete instead of the whole album")
	_ = deleteCmd.MarkFlagRequired("album")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if deletePhoto != "" {
		if err := s.archive.DeletePhoto(ctx, deleteAlbum, deletePhoto); err != nil {
			return fail(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Photo deleted successfully")
		return nil
	}

	n, err := s.archive.DeleteAlbum(ctx, deleteAlbum)
	if err != nil {
		return fail(err)
	}
	s.log.Debug("Album deleted", zap.String("album", deleteAlbum), zap.Int("objects", n))
	fmt.Fprintln(cmd.OutOrStdout(), "Album deleted successfully")
	return nil
}
