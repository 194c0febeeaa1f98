package deploy

import (
	"context"
	"fmt"

	"github.com/andresuchdata/sitedeploy/internal/domain"
	"github.com/andresuchdata/sitedeploy/internal/storage"
)

// fetch downloads the located object into memory. The configured source
// handle is reused when the location points at it; any other bucket (a
// pipeline artifact store) is opened on demand.
func fetch(ctx context.Context, location domain.S3Location, source storage.Source, stores storage.Opener) ([]byte, error) {
	if location.ObjectKey == "" {
		return nil, fmt.Errorf("%s: no object key: %w", location.BucketName, storage.ErrObjectNotFound)
	}

	from := source
	if location.BucketName != "" && location.BucketName != source.Name() {
		s, err := stores.Source(location.BucketName)
		if err != nil {
			return nil, fmt.Errorf("artifact store %s: %w", location.BucketName, err)
		}
		from = s
	}

	data, err := from.GetObject(ctx, location.ObjectKey)
	if err != nil {
		return nil, err
	}
	return data, nil
}
