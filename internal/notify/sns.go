package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSAPI is the subset of the SNS client used for publishing.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSOpener struct {
	client SNSAPI
}

func NewSNSOpener(client SNSAPI) *SNSOpener {
	return &SNSOpener{client: client}
}

func (o *SNSOpener) Topic(arn string) (Topic, error) {
	return &snsTopic{client: o.client, arn: arn}, nil
}

type snsTopic struct {
	client SNSAPI
	arn    string
}

func (t *snsTopic) ID() string { return t.arn }

func (t *snsTopic) Publish(ctx context.Context, subject, message string) error {
	_, err := t.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(t.arn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("sns publish to %s failed: %w", t.arn, err)
	}
	return nil
}

var _ Opener = (*SNSOpener)(nil)
