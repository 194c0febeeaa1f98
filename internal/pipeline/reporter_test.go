package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCodePipeline struct {
	successes []*codepipeline.PutJobSuccessResultInput
	failures  []*codepipeline.PutJobFailureResultInput
	err       error
}

func (f *fakeCodePipeline) PutJobSuccessResult(ctx context.Context, in *codepipeline.PutJobSuccessResultInput, _ ...func(*codepipeline.Options)) (*codepipeline.PutJobSuccessResultOutput, error) {
	f.successes = append(f.successes, in)
	return &codepipeline.PutJobSuccessResultOutput{}, f.err
}

func (f *fakeCodePipeline) PutJobFailureResult(ctx context.Context, in *codepipeline.PutJobFailureResultInput, _ ...func(*codepipeline.Options)) (*codepipeline.PutJobFailureResultOutput, error) {
	f.failures = append(f.failures, in)
	return &codepipeline.PutJobFailureResultOutput{}, f.err
}

func TestCodePipelineReporter_Success(t *testing.T) {
	fake := &fakeCodePipeline{}
	r := NewCodePipelineReporter(fake)

	require.NoError(t, r.ReportSuccess(context.Background(), "job-1"))
	require.Len(t, fake.successes, 1)
	assert.Equal(t, "job-1", aws.ToString(fake.successes[0].JobId))
}

func TestCodePipelineReporter_Failure(t *testing.T) {
	fake := &fakeCodePipeline{}
	r := NewCodePipelineReporter(fake)

	require.NoError(t, r.ReportFailure(context.Background(), "job-1", FailureTypeJobFailed, "bad archive"))
	require.Len(t, fake.failures, 1)
	details := fake.failures[0].FailureDetails
	assert.Equal(t, types.FailureTypeJobFailed, details.Type)
	assert.Equal(t, "bad archive", aws.ToString(details.Message))
}

func TestCodePipelineReporter_TruncatesLongMessages(t *testing.T) {
	fake := &fakeCodePipeline{}
	r := NewCodePipelineReporter(fake)

	long := strings.Repeat("é", maxFailureMessage+10)
	require.NoError(t, r.ReportFailure(context.Background(), "job-1", FailureTypeJobFailed, long))
	msg := aws.ToString(fake.failures[0].FailureDetails.Message)
	assert.Equal(t, maxFailureMessage, len([]rune(msg)))
}

func TestCodePipelineReporter_Error(t *testing.T) {
	fake := &fakeCodePipeline{err: errors.New("InvalidJobStateException")}
	r := NewCodePipelineReporter(fake)

	err := r.ReportSuccess(context.Background(), "job-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job-9")
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(zerolog.New(&buf))

	require.NoError(t, r.ReportFailure(context.Background(), "job-2", FailureTypeJobFailed, "boom"))
	assert.Contains(t, buf.String(), `"job_id":"job-2"`)
	assert.Contains(t, buf.String(), `"failure_type":"JobFailed"`)
	assert.Contains(t, buf.String(), `"details":"boom"`)
	assert.Equal(t, 1, strings.Count(buf.String(), `"message":`))
}
