package deploy

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/sitedeploy/internal/domain"
	"github.com/andresuchdata/sitedeploy/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inputArtifact(name, bucket, key string) domain.InputArtifact {
	return domain.InputArtifact{
		Name: name,
		Location: domain.ArtifactLocation{
			Type:       "S3",
			S3Location: domain.S3Location{BucketName: bucket, ObjectKey: key},
		},
	}
}

func TestLocate_PipelineJob(t *testing.T) {
	job := &domain.PipelineJob{
		ID: "job-1",
		Data: domain.JobData{InputArtifacts: []domain.InputArtifact{
			inputArtifact("SourceArtifact", "pipeline-store", "src.zip"),
			inputArtifact("BuildArtifact", "pipeline-store", "site/build.zip"),
			inputArtifact("TestReports", "reports", "junit.zip"),
		}},
	}
	source := storage.NewMemoryStore("artifacts")
	source.Seed("newer.zip", nil, time.Now())

	location, err := locate(context.Background(), testConfig(), resources{job: job, source: source})
	require.NoError(t, err)
	assert.Equal(t, domain.S3Location{BucketName: "pipeline-store", ObjectKey: "site/build.zip"}, location)
}

func TestLocate_PipelineJobWithoutBuildArtifact(t *testing.T) {
	job := &domain.PipelineJob{
		ID:   "job-1",
		Data: domain.JobData{InputArtifacts: []domain.InputArtifact{inputArtifact("SourceArtifact", "pipeline-store", "src.zip")}},
	}
	source := storage.NewMemoryStore("artifacts")

	location, err := locate(context.Background(), testConfig(), resources{job: job, source: source})
	require.NoError(t, err)
	assert.Equal(t, "artifacts", location.BucketName)
	assert.Empty(t, location.ObjectKey)

	_, err = fetch(context.Background(), location, source, storage.NewMemoryOpener(source))
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestLocate_LatestObject(t *testing.T) {
	source := storage.NewMemoryStore("artifacts")
	source.Seed("t1.zip", nil, time.Unix(10, 0))
	source.Seed("t2.zip", nil, time.Unix(30, 0))
	source.Seed("t3.zip", nil, time.Unix(30, 0))

	location, err := locate(context.Background(), testConfig(), resources{source: source})
	require.NoError(t, err)
	assert.Equal(t, "artifacts", location.BucketName)
	assert.NotEqual(t, "t1.zip", location.ObjectKey)
	// Listing order is insertion order here, so the last tied entry wins.
	assert.Equal(t, "t3.zip", location.ObjectKey)
}

func TestLocate_LatestObjectBeforeEpoch(t *testing.T) {
	source := storage.NewMemoryStore("artifacts")
	source.Seed("old.zip", nil, time.Unix(-20, 0))
	source.Seed("older.zip", nil, time.Unix(-30, 0))

	location, err := locate(context.Background(), testConfig(), resources{source: source})
	require.NoError(t, err)
	assert.Equal(t, "old.zip", location.ObjectKey)
}

func TestLocate_EmptyStore(t *testing.T) {
	source := storage.NewMemoryStore("artifacts")

	_, err := locate(context.Background(), testConfig(), resources{source: source})
	assert.ErrorIs(t, err, ErrNoArtifact)
}

func TestFetch_OtherBucketIsOpened(t *testing.T) {
	source := storage.NewMemoryStore("artifacts")
	pipelineStore := storage.NewMemoryStore("pipeline-store")
	pipelineStore.Seed("build.zip", []byte("zip"), time.Now())
	opener := storage.NewMemoryOpener(source, pipelineStore)

	data, err := fetch(context.Background(),
		domain.S3Location{BucketName: "pipeline-store", ObjectKey: "build.zip"}, source, opener)
	require.NoError(t, err)
	assert.Equal(t, []byte("zip"), data)
	assert.Equal(t, []string{"pipeline-store"}, opener.Opened())
}

func TestFetch_MissingKey(t *testing.T) {
	source := storage.NewMemoryStore("artifacts")
	opener := storage.NewMemoryOpener(source)

	_, err := fetch(context.Background(), domain.S3Location{BucketName: "artifacts", ObjectKey: "gone.zip"}, source, opener)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	assert.Empty(t, opener.Opened())
}
