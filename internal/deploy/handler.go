// Package deploy republishes a build artifact archive to a static website
// bucket and reports the outcome.
//
// A Handler runs one invocation as a fixed sequence of steps:
//
//	load configuration -> connect clients -> resolve resources ->
//	locate artifact -> fetch -> publish entries -> notify -> report
//
// Every step returns an error. The first error stops the sequence and goes
// through fail, which notifies and reports using whatever handles exist at
// that point and then returns that first error to the caller.
//
// Archive directory entries (names ending in "/") are not uploaded, so the
// website bucket never holds zero-byte "img/" style keys.
package deploy

import (
	"context"
	"net/http"

	"github.com/andresuchdata/sitedeploy/internal/config"
	"github.com/andresuchdata/sitedeploy/internal/domain"
	"github.com/andresuchdata/sitedeploy/internal/notify"
	"github.com/andresuchdata/sitedeploy/pkg/logger"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Stage is the point an invocation has reached.
type Stage string

const (
	StageStart             Stage = "start"
	StageConfigLoaded      Stage = "config_loaded"
	StageResourcesResolved Stage = "resources_resolved"
	StageArtifactLocated   Stage = "artifact_located"
	StageArtifactFetched   Stage = "artifact_fetched"
	StagePublished         Stage = "published"
	StageNotified          Stage = "notified"
	StageReported          Stage = "reported"
	StageDone              Stage = "done"
	StageFailed            Stage = "failed"
)

// ConfigLoader reads the invocation configuration.
type ConfigLoader func() (*config.Config, error)

// Handler runs deploy invocations. It holds no per-invocation state and is
// safe to reuse across invocations.
type Handler struct {
	loadConfig ConfigLoader
	connect    Connector
	log        zerolog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithConfigLoader replaces config.Load.
func WithConfigLoader(load ConfigLoader) Option {
	return func(h *Handler) { h.loadConfig = load }
}

// WithConnector replaces the client factory built from configuration.
func WithConnector(connect Connector) Option {
	return func(h *Handler) { h.connect = connect }
}

// WithLogger sets the logger used for the invocation trail.
func WithLogger(log zerolog.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// NewHandler creates a Handler wired to the process environment and the
// backends named in it.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		loadConfig: config.Load,
		connect:    Connect,
		log:        logger.Log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// invocation is the partial state of one run. fail reads it to decide what
// can still be notified and reported.
type invocation struct {
	stage    Stage
	cfg      *config.Config
	services *Services
	res      resources
}

func (h *Handler) advance(inv *invocation, stage Stage) {
	inv.stage = stage
	h.log.Debug().Str("stage", string(stage)).Msg("deploy stage")
}

// Run executes one invocation for event.
func (h *Handler) Run(ctx context.Context, event domain.Event) (domain.Result, error) {
	h.log.Info().Interface("event", event).Msg("invocation received")

	inv := &invocation{stage: StageStart}
	result, err := h.run(ctx, inv, event)
	if err != nil {
		return domain.Result{}, h.fail(ctx, inv, err)
	}
	return result, nil
}

func (h *Handler) run(ctx context.Context, inv *invocation, event domain.Event) (domain.Result, error) {
	h.log.Info().Msg("Reading Environment...")
	cfg, err := h.loadConfig()
	if err != nil {
		return domain.Result{}, errors.Wrap(err, "load configuration")
	}
	inv.cfg = cfg
	for _, kv := range cfg.Echo() {
		h.log.Info().Str("key", kv[0]).Str("value", kv[1]).Msg("environment")
	}
	h.advance(inv, StageConfigLoaded)

	// The job is known from the event alone, so a connect failure can still
	// be reported to it.
	inv.res.job = event.Job
	services, err := h.connect(ctx, cfg, h.log)
	inv.services = services
	if err != nil {
		return domain.Result{}, errors.Wrap(err, "connect services")
	}

	h.log.Info().Msg("Reading Resources...")
	if err := resolve(event, cfg, services, &inv.res); err != nil {
		return domain.Result{}, errors.Wrap(err, "resolve resources")
	}
	h.logResources(inv.res)
	h.advance(inv, StageResourcesResolved)

	h.log.Info().Msg("Reading Artifacts...")
	location, err := locate(ctx, cfg, inv.res)
	if err != nil {
		return domain.Result{}, errors.Wrap(err, "locate artifact")
	}
	h.log.Info().
		Str("bucket", location.BucketName).
		Str("object", location.ObjectKey).
		Msg("artifact located")
	h.advance(inv, StageArtifactLocated)

	archive, err := fetch(ctx, location, inv.res.source, services.Stores)
	if err != nil {
		return domain.Result{}, errors.Wrap(err, "fetch artifact")
	}
	h.advance(inv, StageArtifactFetched)

	h.log.Info().Msg("Extracting Artifacts...")
	pub := &publisher{site: inv.res.site, sniff: cfg.Deploy.DetectUnknownContentType, log: h.log}
	published, err := pub.publish(ctx, archive)
	if err != nil {
		return domain.Result{}, errors.Wrap(err, "publish artifact")
	}
	h.advance(inv, StagePublished)

	h.log.Info().Msg("Publishing to notification topic...")
	if err := inv.res.topic.Publish(ctx, notify.SuccessSubject, notify.SuccessMessage(cfg.Deploy.WebsiteBucket)); err != nil {
		return domain.Result{}, errors.Wrap(err, "notify success")
	}
	h.advance(inv, StageNotified)

	if job := inv.res.job; job != nil {
		h.log.Info().Str("job_id", job.ID).Msg("Publishing to CodePipeline...")
		if err := services.Reporter.ReportSuccess(ctx, job.ID); err != nil {
			return domain.Result{}, errors.Wrap(err, "report success")
		}
	} else {
		h.log.Info().Msg("CodePipeline job not initialized, skipping report")
	}
	h.advance(inv, StageReported)

	h.advance(inv, StageDone)
	return domain.Result{StatusCode: http.StatusOK, Published: len(published)}, nil
}

// Locate resolves which artifact an invocation for event would deploy,
// without fetching it or reporting anything.
func (h *Handler) Locate(ctx context.Context, event domain.Event) (domain.S3Location, error) {
	cfg, err := h.loadConfig()
	if err != nil {
		return domain.S3Location{}, errors.Wrap(err, "load configuration")
	}
	services, err := h.connect(ctx, cfg, h.log)
	if err != nil {
		return domain.S3Location{}, errors.Wrap(err, "connect services")
	}
	var res resources
	if err := resolve(event, cfg, services, &res); err != nil {
		return domain.S3Location{}, errors.Wrap(err, "resolve resources")
	}
	location, err := locate(ctx, cfg, res)
	if err != nil {
		return domain.S3Location{}, errors.Wrap(err, "locate artifact")
	}
	return location, nil
}

func (h *Handler) logResources(res resources) {
	ev := h.log.Info().
		Str("s3_artifacts", res.source.Name()).
		Str("s3_website", res.site.Name()).
		Str("sns_topic", res.topic.ID())
	if res.job != nil {
		ev = ev.Str("codepipeline_job", res.job.ID)
	}
	ev.Msg("resources")
}
