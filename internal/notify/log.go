package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogOpener writes notifications to a logger. Used when running outside AWS.
type LogOpener struct {
	log zerolog.Logger
}

func NewLogOpener(log zerolog.Logger) *LogOpener {
	return &LogOpener{log: log}
}

func (o *LogOpener) Topic(id string) (Topic, error) {
	return &logTopic{log: o.log, id: id}, nil
}

type logTopic struct {
	log zerolog.Logger
	id  string
}

func (t *logTopic) ID() string { return t.id }

func (t *logTopic) Publish(ctx context.Context, subject, message string) error {
	t.log.Info().
		Str("topic", t.id).
		Str("subject", subject).
		Str("body", message).
		Msg("notification")
	return nil
}

var _ Opener = (*LogOpener)(nil)
