package pipeline

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline/types"
)

// CodePipelineAPI is the subset of the CodePipeline client used for job results.
type CodePipelineAPI interface {
	PutJobSuccessResult(ctx context.Context, params *codepipeline.PutJobSuccessResultInput, optFns ...func(*codepipeline.Options)) (*codepipeline.PutJobSuccessResultOutput, error)
	PutJobFailureResult(ctx context.Context, params *codepipeline.PutJobFailureResultInput, optFns ...func(*codepipeline.Options)) (*codepipeline.PutJobFailureResultOutput, error)
}

// CodePipelineReporter reports job results to AWS CodePipeline.
type CodePipelineReporter struct {
	client CodePipelineAPI
}

func NewCodePipelineReporter(client CodePipelineAPI) *CodePipelineReporter {
	return &CodePipelineReporter{client: client}
}

func (r *CodePipelineReporter) ReportSuccess(ctx context.Context, jobID string) error {
	_, err := r.client.PutJobSuccessResult(ctx, &codepipeline.PutJobSuccessResultInput{
		JobId: aws.String(jobID),
	})
	if err != nil {
		return fmt.Errorf("codepipeline success result for job %s failed: %w", jobID, err)
	}
	return nil
}

func (r *CodePipelineReporter) ReportFailure(ctx context.Context, jobID, failureType, message string) error {
	_, err := r.client.PutJobFailureResult(ctx, &codepipeline.PutJobFailureResultInput{
		JobId: aws.String(jobID),
		FailureDetails: &types.FailureDetails{
			Type:    types.FailureType(failureType),
			Message: aws.String(truncateMessage(message)),
		},
	})
	if err != nil {
		return fmt.Errorf("codepipeline failure result for job %s failed: %w", jobID, err)
	}
	return nil
}

var _ JobReporter = (*CodePipelineReporter)(nil)
