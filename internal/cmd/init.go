package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/3leaps/cloudphoto/internal/config"
)

var (
	initRegion   string
	initEndpoint string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Save storage credentials and create the bucket",
	Long: `Prompt for an access key, a secret key and a bucket name, save them to the
credentials file and create the bucket if it does not exist yet.

Examples:
  cloudphoto init
  cloudphoto init --endpoint file:///srv/photo-archive   # local directory archive`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initRegion, "region", config.DefaultRegion, "Storage region")
	initCmd.Flags().StringVar(&initEndpoint, "endpoint", config.DefaultEndpoint, "Storage endpoint URL")
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	accessKeyID, err := prompt(in, out, "Enter aws_access_key_id")
	if err != nil {
		return exitError(exitFailure, "failed to read aws_access_key_id", err)
	}
	secretAccessKey, err := prompt(in, out, "Enter aws_secret_access_key")
	if err != nil {
		return exitError(exitFailure, "failed to read aws_secret_access_key", err)
	}
	bucket, err := prompt(in, out, "Enter bucket name")
	if err != nil {
		return exitError(exitFailure, "failed to read bucket name", err)
	}

	cfg := config.NewConfig(accessKeyID, secretAccessKey, bucket)
	cfg.Region = initRegion
	cfg.EndpointURL = initEndpoint
	if err := cfg.Validate(); err != nil {
		return fail(err)
	}

	path := currentSettings().ConfigPath
	if path == "" {
		return exitError(exitFailure, "cannot determine configuration file location", errors.New("use --config"))
	}
	if err := config.Save(path, cfg); err != nil {
		return exitError(exitFailure, "failed to save configuration", err)
	}
	fmt.Fprintln(out, "Configuration saved")

	s, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	created, err := s.archive.EnsureBucket(ctx)
	if err != nil {
		return fail(err)
	}
	if created {
		fmt.Fprintf(out, "Created new bucket %s\n", cfg.Bucket)
	}
	return nil
}

// prompt asks for a value until a non-blank line is entered.
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	for {
		fmt.Fprintf(out, "%s: ", label)
		line, err := in.ReadString('\n')
		if value := strings.TrimSpace(line); value != "" {
			return value, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
	}
}
