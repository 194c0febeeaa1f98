package deploy

import (
	"fmt"

	"github.com/andresuchdata/sitedeploy/internal/config"
	"github.com/andresuchdata/sitedeploy/internal/domain"
	"github.com/andresuchdata/sitedeploy/internal/notify"
	"github.com/andresuchdata/sitedeploy/internal/storage"
)

// resources are the handles an invocation works with. Fields stay nil until
// resolved.
type resources struct {
	job    *domain.PipelineJob
	topic  notify.Topic
	source storage.Source
	site   storage.Destination
}

// resolve fills res in place so a failure part way keeps what was already
// resolved. The job and topic come first since the failure path needs them.
func resolve(event domain.Event, cfg *config.Config, services *Services, res *resources) error {
	res.job = event.Job

	topic, err := services.Topics.Topic(cfg.Deploy.TopicID)
	if err != nil {
		return fmt.Errorf("topic %s: %w", cfg.Deploy.TopicID, err)
	}
	res.topic = topic

	source, err := services.Stores.Source(cfg.Deploy.ArtifactsBucket)
	if err != nil {
		return fmt.Errorf("source store %s: %w", cfg.Deploy.ArtifactsBucket, err)
	}
	res.source = source

	site, err := services.Stores.Destination(cfg.Deploy.WebsiteBucket)
	if err != nil {
		return fmt.Errorf("website store %s: %w", cfg.Deploy.WebsiteBucket, err)
	}
	res.site = site

	return nil
}
