// Package pipeline reports deploy outcomes back to the upstream pipeline
// orchestrator that triggered the invocation.
package pipeline

import "context"

// FailureTypeJobFailed is the failure type reported for any deploy error.
const FailureTypeJobFailed = "JobFailed"

// maxFailureMessage is the CodePipeline limit on failure detail messages.
const maxFailureMessage = 5000

// JobReporter records the outcome of a pipeline job.
type JobReporter interface {
	ReportSuccess(ctx context.Context, jobID string) error
	ReportFailure(ctx context.Context, jobID, failureType, message string) error
}

func truncateMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= maxFailureMessage {
		return message
	}
	return string(runes[:maxFailureMessage])
}
