package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/cloudphoto/internal/config"
	"github.com/3leaps/cloudphoto/pkg/site"
)

var mksiteCmd = &cobra.Command{
	Use:   "mksite",
	Short: "Publish the gallery website of the archive",
	Long: `Make the bucket publicly readable, generate one gallery page per album plus
index.html and error.html, enable static website hosting and print the
site URL. Every run regenerates all pages from the current bucket listing.`,
	Args: cobra.NoArgs,
	RunE: runMksite,
}

func init() {
	rootCmd.AddCommand(mksiteCmd)
	mksiteCmd.Flags().String("website-domain", "", "Website hosting domain (default website.yandexcloud.net)")
	_ = settingsViper.BindPFlag(config.SettingWebsiteDomain, mksiteCmd.Flags().Lookup("website-domain"))
}

func runMksite(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	gen := site.NewGenerator(s.archive, site.Options{
		WebsiteDomain: currentSettings().WebsiteDomain,
		Logger:        s.log,
	})
	res, err := gen.Publish(ctx)
	if err != nil {
		return fail(err)
	}
	s.log.Debug("Site published", zap.Strings("albums", res.Albums), zap.Strings("pages", res.Pages))
	fmt.Fprintln(cmd.OutOrStdout(), res.WebsiteURL)
	return nil
}
