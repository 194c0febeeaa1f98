package deploy

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/andresuchdata/sitedeploy/internal/config"
	"github.com/andresuchdata/sitedeploy/internal/notify"
	"github.com/andresuchdata/sitedeploy/internal/storage"
	"github.com/stretchr/testify/require"
)

type zipEntry struct {
	name string
	body string
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.Create(e.name)
		require.NoError(t, err)
		_, err = f.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func siteEntries() []zipEntry {
	return []zipEntry{
		{name: "index.html", body: "<html><body>hi</body></html>"},
		{name: "style.css", body: "body { color: red; }"},
		{name: "img/logo.png", body: "\x89PNG\r\n\x1a\nfake"},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Deploy: config.DeployConfig{
			ArtifactsBucket: "artifacts",
			WebsiteBucket:   "www.example.com",
			TopicID:         "arn:aws:sns:us-east-1:123456789012:deploys",
		},
	}
}

type sentMessage struct {
	subject string
	message string
}

type recordingTopic struct {
	id   string
	sent []sentMessage
	err  error
}

func (r *recordingTopic) ID() string { return r.id }

func (r *recordingTopic) Publish(ctx context.Context, subject, message string) error {
	r.sent = append(r.sent, sentMessage{subject: subject, message: message})
	return r.err
}

type recordingTopics struct {
	topic  *recordingTopic
	err    error
	opened int
}

func (r *recordingTopics) Topic(id string) (notify.Topic, error) {
	r.opened++
	if r.err != nil {
		return nil, r.err
	}
	r.topic.id = id
	return r.topic, nil
}

type report struct {
	jobID       string
	success     bool
	failureType string
	message     string
}

type recordingReporter struct {
	reports    []report
	successErr error
	failureErr error
}

func (r *recordingReporter) ReportSuccess(ctx context.Context, jobID string) error {
	r.reports = append(r.reports, report{jobID: jobID, success: true})
	return r.successErr
}

func (r *recordingReporter) ReportFailure(ctx context.Context, jobID, failureType, message string) error {
	r.reports = append(r.reports, report{jobID: jobID, failureType: failureType, message: message})
	return r.failureErr
}

// failingStore wraps a destination and fails PutObject for one key.
type failingStore struct {
	*storage.MemoryStore
	failKey string
}

func (f *failingStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if key == f.failKey {
		return errors.New("access denied")
	}
	return f.MemoryStore.PutObject(ctx, key, data, contentType)
}
