package pipeline

import (
	"context"

	"github.com/rs/zerolog"
)

// LogReporter logs job results instead of calling an orchestrator.
type LogReporter struct {
	log zerolog.Logger
}

func NewLogReporter(log zerolog.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) ReportSuccess(ctx context.Context, jobID string) error {
	r.log.Info().Str("job_id", jobID).Msg("pipeline job succeeded")
	return nil
}

func (r *LogReporter) ReportFailure(ctx context.Context, jobID, failureType, message string) error {
	r.log.Warn().
		Str("job_id", jobID).
		Str("failure_type", failureType).
		Str("details", message).
		Msg("pipeline job failed")
	return nil
}

var _ JobReporter = (*LogReporter)(nil)
