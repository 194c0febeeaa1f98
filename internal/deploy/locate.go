package deploy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/sitedeploy/internal/config"
	"github.com/andresuchdata/sitedeploy/internal/domain"
	"github.com/andresuchdata/sitedeploy/internal/storage"
)

// ErrNoArtifact is returned when latest-object mode finds an empty store.
var ErrNoArtifact = errors.New("no artifact found")

// locate picks the single object to deploy. With a pipeline job the job's
// BuildArtifact location is used as given; otherwise the most recently
// modified object in the source store wins.
func locate(ctx context.Context, cfg *config.Config, res resources) (domain.S3Location, error) {
	if res.job != nil {
		return locateFromJob(res.job, cfg.Deploy.ArtifactsBucket), nil
	}
	return locateLatest(ctx, res.source)
}

// locateFromJob returns the BuildArtifact location. The last matching entry
// wins. Without a match the key stays empty and the fetch fails.
func locateFromJob(job *domain.PipelineJob, defaultBucket string) domain.S3Location {
	location := domain.S3Location{BucketName: defaultBucket}
	for _, artifact := range job.Data.InputArtifacts {
		if artifact.Name == domain.BuildArtifactName {
			location = artifact.Location.S3Location
		}
	}
	return location
}

// locateLatest finds the maximum last-modified time, then takes the last
// object in listing order carrying it. Listing order is backend defined, so
// the choice among equal timestamps is not stable across backends.
func locateLatest(ctx context.Context, source storage.Source) (domain.S3Location, error) {
	objects, err := source.ListObjects(ctx)
	if err != nil {
		return domain.S3Location{}, err
	}
	if len(objects) == 0 {
		return domain.S3Location{}, fmt.Errorf("store %s is empty: %w", source.Name(), ErrNoArtifact)
	}

	var latest time.Time
	for i, object := range objects {
		if i == 0 || object.LastModified.After(latest) {
			latest = object.LastModified
		}
	}

	location := domain.S3Location{BucketName: source.Name()}
	for _, object := range objects {
		if object.LastModified.Equal(latest) {
			location.ObjectKey = object.Key
		}
	}
	return location, nil
}
