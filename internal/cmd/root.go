// Package cmd implements the cloudphoto command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/cloudphoto/internal/config"
	"github.com/3leaps/cloudphoto/internal/observability"
)

const appName = "cloudphoto"

var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "unknown",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata reported by the version command.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var (
	settingsViper = config.NewViper()
	settings      *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Manage a photo archive in S3-compatible object storage",
	Long: `cloudphoto keeps photo albums in an S3-compatible bucket.

An album is the set of objects under the key prefix "<album>/". Photos are
.jpg and .jpeg files. mksite publishes a static gallery of every album
using the store's website hosting.

Credentials are read from ~/.config/cloudphoto/cloudphotorc, written by
"cloudphoto init".`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initRuntime,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Credentials file (default ~/.config/cloudphoto/cloudphotorc)")
	rootCmd.PersistentFlags().String("log-level", "", "Diagnostic log level: debug, info, warn, error (default warn)")
	_ = settingsViper.BindPFlag(config.SettingConfig, rootCmd.PersistentFlags().Lookup("config"))
	_ = settingsViper.BindPFlag(config.SettingLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
}

// initRuntime resolves settings and the CLI logger before any subcommand runs.
func initRuntime(cmd *cobra.Command, args []string) error {
	settings = config.ResolveSettings(settingsViper)
	if err := observability.InitCLILogger(appName, settings.LogLevel); err != nil {
		return exitError(exitFailure, "invalid log level", err)
	}
	return nil
}

// currentSettings returns the resolved settings, resolving them on first use.
func currentSettings() *config.Settings {
	if settings == nil {
		settings = config.ResolveSettings(settingsViper)
	}
	return settings
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	return execute(ctx, os.Args[1:])
}

func execute(ctx context.Context, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(rootCmd.ErrOrStderr(), "Error: "+userMessage(err))
	observability.CLILogger.Debug("Command failed", zap.Error(err))
	return exitCode(err)
}
