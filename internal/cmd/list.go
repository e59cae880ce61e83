package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listAlbum string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List albums, or the objects of one album",
	Long: `Without --album, print every album name. With --album, print the name of
every object stored directly in that album.

Examples:
  cloudphoto list
  cloudphoto list --album vacation`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listAlbum, "album", "", "Album to list")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	var names []string
	if listAlbum == "" {
		names, err = s.archive.Albums(ctx)
	} else {
		names, err = s.archive.Contents(ctx, listAlbum)
	}
	if err != nil {
		return fail(err)
	}

	out := cmd.OutOrStdout()
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}
