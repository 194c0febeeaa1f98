package deploy

import (
	"context"
	"fmt"

	"github.com/andresuchdata/sitedeploy/internal/notify"
	"github.com/andresuchdata/sitedeploy/internal/pipeline"
)

// fail is the single failure path. It notifies and reports with whatever
// the invocation resolved before cause happened, then returns cause. Neither
// a notification error nor a skipped step replaces cause; a reporting error
// is joined onto it.
func (h *Handler) fail(ctx context.Context, inv *invocation, cause error) error {
	failedAt := inv.stage
	h.advance(inv, StageFailed)
	h.log.Error().Stack().Err(cause).Str("stage", string(failedAt)).Msg("deploy failed")

	bucket := ""
	if inv.cfg != nil {
		bucket = inv.cfg.Deploy.WebsiteBucket
	}
	message := notify.FailureMessage(bucket, cause.Error())

	if topic := h.failureTopic(inv); topic != nil {
		if err := topic.Publish(ctx, notify.FailureSubject, message); err != nil {
			h.log.Error().Err(err).Str("topic", topic.ID()).Msg("failure notification not delivered")
		}
	} else {
		h.log.Warn().Str("details", message).Msg("notification topic not initialized")
	}

	job := inv.res.job
	if job == nil {
		h.log.Warn().Str("details", message).Msg("CodePipeline job not initialized")
		return cause
	}
	if inv.services == nil || inv.services.Reporter == nil {
		h.log.Warn().Str("job_id", job.ID).Str("details", message).Msg("pipeline reporter not available, failure not reported")
		return cause
	}

	if err := inv.services.Reporter.ReportFailure(ctx, job.ID, pipeline.FailureTypeJobFailed, cause.Error()); err != nil {
		h.log.Error().Err(err).Str("job_id", job.ID).Msg("failure report not delivered")
		return fmt.Errorf("%w (failure report: %w)", cause, err)
	}
	return cause
}

// failureTopic returns the resolved topic, or opens it from the services
// built so far when resolution never got that far.
func (h *Handler) failureTopic(inv *invocation) notify.Topic {
	if inv.res.topic != nil {
		return inv.res.topic
	}
	if inv.cfg == nil || inv.services == nil || inv.services.Topics == nil {
		return nil
	}
	topic, err := inv.services.Topics.Topic(inv.cfg.Deploy.TopicID)
	if err != nil {
		h.log.Warn().Err(err).Str("topic", inv.cfg.Deploy.TopicID).Msg("failure topic could not be opened")
		return nil
	}
	return topic
}
