package deploy

import (
	"bytes"
	"context"
	"testing"

	"github.com/andresuchdata/sitedeploy/internal/config"
	"github.com/andresuchdata/sitedeploy/internal/notify"
	"github.com/andresuchdata/sitedeploy/internal/pipeline"
	"github.com/andresuchdata/sitedeploy/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_NonAWSBackends(t *testing.T) {
	cfg := testConfig()
	cfg.Storage = config.StorageConfig{Backend: "minio", Endpoint: "http://localhost:9000", AccessKey: "ak", SecretKey: "sk"}
	cfg.Notify = config.NotifyConfig{Backend: "log"}
	cfg.Orchestrator = config.OrchestratorConfig{Backend: "log"}

	services, err := Connect(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &storage.MinioOpener{}, services.Stores)
	assert.IsType(t, &notify.LogOpener{}, services.Topics)
	assert.IsType(t, &pipeline.LogReporter{}, services.Reporter)
}

func TestConnect_UnknownBackends(t *testing.T) {
	base := func() *config.Config {
		cfg := testConfig()
		cfg.Storage.Backend = "minio"
		cfg.Storage.Endpoint = "localhost:9000"
		cfg.Storage.AccessKey = "ak"
		cfg.Storage.SecretKey = "sk"
		cfg.Notify.Backend = "log"
		cfg.Orchestrator.Backend = "log"
		return cfg
	}

	cfg := base()
	cfg.Storage.Backend = "ftp"
	_, err := Connect(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, `unknown storage backend "ftp"`)

	cfg = base()
	cfg.Notify.Backend = "pager"
	_, err = Connect(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, `unknown notify backend "pager"`)

	cfg = base()
	cfg.Orchestrator.Backend = "jenkins"
	_, err = Connect(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, `unknown orchestrator backend "jenkins"`)
}

func TestConnect_KeepsBackendsBuiltBeforeStorageFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Storage = config.StorageConfig{Backend: "minio"}
	cfg.Notify = config.NotifyConfig{Backend: "log"}
	cfg.Orchestrator = config.OrchestratorConfig{Backend: "log"}

	services, err := Connect(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	require.NotNil(t, services)
	assert.IsType(t, &pipeline.LogReporter{}, services.Reporter)
	assert.IsType(t, &notify.LogOpener{}, services.Topics)
	assert.Nil(t, services.Stores)
}

func TestConnect_LogBackendsUseGivenLogger(t *testing.T) {
	cfg := testConfig()
	cfg.Storage = config.StorageConfig{Backend: "minio", Endpoint: "localhost:9000", AccessKey: "ak", SecretKey: "sk"}
	cfg.Notify = config.NotifyConfig{Backend: "log"}
	cfg.Orchestrator = config.OrchestratorConfig{Backend: "log"}

	var buf bytes.Buffer
	services, err := Connect(context.Background(), cfg, zerolog.New(&buf))
	require.NoError(t, err)

	topic, err := services.Topics.Topic("deploys")
	require.NoError(t, err)
	require.NoError(t, topic.Publish(context.Background(), notify.SuccessSubject, "ok"))
	require.NoError(t, services.Reporter.ReportSuccess(context.Background(), "job-1"))

	assert.Contains(t, buf.String(), `"topic":"deploys"`)
	assert.Contains(t, buf.String(), `"job_id":"job-1"`)
}
