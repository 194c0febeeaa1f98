package deploy

import (
	"context"
	"fmt"

	"github.com/andresuchdata/sitedeploy/internal/config"
	"github.com/andresuchdata/sitedeploy/internal/notify"
	"github.com/andresuchdata/sitedeploy/internal/pipeline"
	"github.com/andresuchdata/sitedeploy/internal/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog"
)

// Services are the external clients an invocation talks to.
type Services struct {
	Stores   storage.Opener
	Topics   notify.Opener
	Reporter pipeline.JobReporter
}

// Connector builds Services for a configuration. On error it may still
// return the Services it managed to build.
type Connector func(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Services, error)

// Connect builds the backends named by cfg. The reporter and topics are built
// before the stores, and a failing backend leaves the ones before it in the
// returned Services. The AWS configuration is only loaded when a backend
// needs it. log backs the log notifier and the log reporter.
func Connect(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Services, error) {
	var (
		awsCfg    aws.Config
		awsLoaded bool
	)
	loadAWS := func() (aws.Config, error) {
		if awsLoaded {
			return awsCfg, nil
		}
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.AWS.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.AWS.Region))
		}
		c, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return aws.Config{}, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg, awsLoaded = c, true
		return awsCfg, nil
	}

	services := &Services{}

	reporter, err := connectReporter(cfg.Orchestrator, loadAWS, log)
	if err != nil {
		return services, err
	}
	services.Reporter = reporter

	topics, err := connectTopics(cfg.Notify, loadAWS, log)
	if err != nil {
		return services, err
	}
	services.Topics = topics

	stores, err := connectStores(ctx, cfg.Storage, loadAWS)
	if err != nil {
		return services, err
	}
	services.Stores = stores

	return services, nil
}

func connectStores(ctx context.Context, cfg config.StorageConfig, loadAWS func() (aws.Config, error)) (storage.Opener, error) {
	switch cfg.Backend {
	case "", "s3":
		awsCfg, err := loadAWS()
		if err != nil {
			return nil, err
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
			if cfg.Region != "" {
				o.Region = cfg.Region
			}
		})
		return storage.NewS3Opener(client), nil
	case "minio":
		return storage.NewMinioOpener(storage.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	case "gcs":
		return storage.NewGCSOpener(ctx, cfg.CredentialsJSON)
	case "sevalla":
		return storage.NewSevallaOpener(storage.SevallaConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func connectTopics(cfg config.NotifyConfig, loadAWS func() (aws.Config, error), log zerolog.Logger) (notify.Opener, error) {
	switch cfg.Backend {
	case "", "sns":
		awsCfg, err := loadAWS()
		if err != nil {
			return nil, err
		}
		return notify.NewSNSOpener(sns.NewFromConfig(awsCfg)), nil
	case "redis":
		return notify.NewRedisOpener(cfg)
	case "log":
		return notify.NewLogOpener(log), nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Backend)
	}
}

func connectReporter(cfg config.OrchestratorConfig, loadAWS func() (aws.Config, error), log zerolog.Logger) (pipeline.JobReporter, error) {
	switch cfg.Backend {
	case "", "codepipeline":
		awsCfg, err := loadAWS()
		if err != nil {
			return nil, err
		}
		return pipeline.NewCodePipelineReporter(codepipeline.NewFromConfig(awsCfg)), nil
	case "log":
		return pipeline.NewLogReporter(log), nil
	default:
		return nil, fmt.Errorf("unknown orchestrator backend %q", cfg.Backend)
	}
}
