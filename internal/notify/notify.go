// Package notify publishes deploy outcomes to a notification topic.
package notify

import (
	"context"
	"fmt"

	"github.com/andresuchdata/sitedeploy/internal/domain"
)

const (
	SuccessSubject = "Code Deploy Success"
	FailureSubject = "Code Deploy Failure"

	// UnknownBucket stands in for the site bucket when configuration never loaded.
	UnknownBucket = "Unknown"
)

// Topic is a resolved notification topic.
type Topic interface {
	ID() string
	Publish(ctx context.Context, subject, message string) error
}

// Opener resolves topics by identifier without checking they exist.
type Opener interface {
	Topic(id string) (Topic, error)
}

// SuccessMessage is the body published after a complete deploy.
func SuccessMessage(bucket string) string {
	return fmt.Sprintf("Bucket: %s\nStatus: %s", bucket, domain.StatusSuccess.Label())
}

// FailureMessage is the body published when any step fails.
func FailureMessage(bucket, details string) string {
	if bucket == "" {
		bucket = UnknownBucket
	}
	return fmt.Sprintf("Bucket: %s\nStatus: %s\nDetails:\n\n%s", bucket, domain.StatusFailure.Label(), details)
}
