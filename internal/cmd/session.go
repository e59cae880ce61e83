package cmd

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/3leaps/cloudphoto/internal/config"
	"github.com/3leaps/cloudphoto/internal/observability"
	"github.com/3leaps/cloudphoto/pkg/archive"
	"github.com/3leaps/cloudphoto/pkg/provider"
	"github.com/3leaps/cloudphoto/pkg/provider/file"
	"github.com/3leaps/cloudphoto/pkg/provider/s3"
)

// session is the store connection of one command run.
type session struct {
	cfg     *config.Config
	store   provider.Provider
	archive *archive.Archive
	log     *zap.Logger
}

// openSession loads the credentials file and connects to the bucket it names.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(currentSettings().ConfigPath)
	if err != nil {
		return nil, fail(err)
	}
	return newSession(ctx, cfg)
}

func newSession(ctx context.Context, cfg *config.Config) (*session, error) {
	log := observability.CLILogger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("bucket", cfg.Bucket),
	)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, exitError(exitFailure, "failed to connect to object storage", err)
	}
	log.Debug("Connected to object storage", zap.String("endpoint", cfg.EndpointURL), zap.String("region", cfg.Region))

	return &session{
		cfg:     cfg,
		store:   store,
		archive: archive.New(store, archive.Options{Logger: log}),
		log:     log,
	}, nil
}

// openStore is replaced in tests to inject store failures.
var openStore = newStore

// newStore picks the file provider for file:// endpoints and S3 otherwise.
func newStore(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	if root, ok := file.RootFromEndpoint(cfg.EndpointURL); ok {
		return file.New(file.Config{Root: root, Bucket: cfg.Bucket})
	}
	return s3.New(ctx, s3.Config{
		Bucket:          cfg.Bucket,
		Region:          cfg.Region,
		Endpoint:        cfg.EndpointURL,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		ForcePathStyle:  true,
	})
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Debug("Close store", zap.Error(err))
	}
}
