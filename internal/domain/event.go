package domain

// BuildArtifactName is the input artifact name the pipeline declares for the
// site bundle.
const BuildArtifactName = "BuildArtifact"

// Event is the invocation payload. Job is only set when the invocation comes
// from a CodePipeline action.
type Event struct {
	Job *PipelineJob `json:"CodePipeline.job,omitempty"`
}

// PipelineJob describes the upstream pipeline job that triggered the deploy.
type PipelineJob struct {
	ID        string  `json:"id"`
	AccountID string  `json:"accountId,omitempty"`
	Data      JobData `json:"data"`
}

type JobData struct {
	InputArtifacts []InputArtifact `json:"inputArtifacts"`
}

type InputArtifact struct {
	Name     string           `json:"name"`
	Revision *string          `json:"revision,omitempty"`
	Location ArtifactLocation `json:"location"`
}

type ArtifactLocation struct {
	Type       string     `json:"type,omitempty"`
	S3Location S3Location `json:"s3Location"`
}

type S3Location struct {
	BucketName string `json:"bucketName"`
	ObjectKey  string `json:"objectKey"`
}

// Result is returned to the invoking platform on success.
type Result struct {
	StatusCode int `json:"statusCode"`
	Published  int `json:"published,omitempty"`
}
