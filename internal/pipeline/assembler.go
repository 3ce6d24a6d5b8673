// Package pipeline assembles a playback pipeline from the extension registry:
// it resolves the builder for a content locator, builds the media source and
// instantiates the registered renderers for every category.
package pipeline

import (
	"context"
	"log/slog"

	"media-extensions/internal/media"
	"media-extensions/internal/platform/metrics"
	"media-extensions/internal/registry"
	"media-extensions/internal/renderer"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedMediaType is returned when no builder matches the locator.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrInvalidRenderer is returned when a registered renderer identifier
	// cannot be instantiated for its category.
	ErrInvalidRenderer = errors.New("invalid renderer")

	// ErrBuildFailed is returned when the resolved builder fails.
	ErrBuildFailed = errors.New("media source build failed")
)

// SetupError describes why a pipeline could not be prepared. Kind is one of
// the sentinel errors above; errors.Is matches both Kind and Err.
type SetupError struct {
	Kind    error
	Locator string
	Detail  string
	Err     error
}

func (e *SetupError) Error() string {
	msg := e.Kind.Error() + ": " + e.Locator
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SetupError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Pipeline is a prepared playback pipeline.
type Pipeline struct {
	ID        uuid.UUID
	Locator   string
	Builder   string
	Source    *media.MediaSource
	Renderers map[media.RendererCategory][]renderer.Renderer
}

// RendererCount returns the total number of renderers across categories.
func (p *Pipeline) RendererCount() int {
	n := 0
	for _, rs := range p.Renderers {
		n += len(rs)
	}
	return n
}

// Assembler prepares pipelines from a Registry.
type Assembler struct {
	reg       *registry.Registry
	factory   *renderer.Factory
	userAgent string
	log       *slog.Logger
	metrics   *metrics.Metrics
}

// NewAssembler returns an Assembler. Metrics may be nil to disable metric
// recording (e.g. in tests).
func NewAssembler(reg *registry.Registry, factory *renderer.Factory, userAgent string, log *slog.Logger, m *metrics.Metrics) *Assembler {
	return &Assembler{reg: reg, factory: factory, userAgent: userAgent, log: log, metrics: m}
}

// Prepare resolves locator and assembles its pipeline. listener, if not nil,
// receives transfer events from the media data sources.
func (a *Assembler) Prepare(ctx context.Context, locator string, listener media.TransferListener) (*Pipeline, error) {
	b, err := a.reg.Resolve(locator)
	if err != nil {
		if a.metrics != nil {
			a.metrics.IncUnresolved()
		}
		a.log.Info("no builder for locator", slog.String("locator", locator))
		return nil, &SetupError{Kind: ErrUnsupportedMediaType, Locator: locator, Err: err}
	}
	if a.metrics != nil {
		a.metrics.IncResolved(b.Name())
	}

	src, err := b.Build(ctx, media.BuildRequest{
		Locator:   locator,
		UserAgent: a.userAgent,
		Listener:  listener,
		Provider:  a.reg.HTTPDataSourceFactoryProvider(),
	})
	if err != nil {
		a.log.Warn("build media source failed",
			slog.String("locator", locator),
			slog.String("builder", b.Name()),
			slog.String("error", err.Error()))
		return nil, &SetupError{Kind: ErrBuildFailed, Locator: locator, Detail: b.Name(), Err: err}
	}

	renderers, err := a.instantiateRenderers(locator)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		ID:        uuid.New(),
		Locator:   locator,
		Builder:   b.Name(),
		Source:    src,
		Renderers: renderers,
	}
	if a.metrics != nil {
		a.metrics.IncPipelinesPrepared()
	}
	a.log.Debug("pipeline prepared",
		slog.String("pipeline_id", p.ID.String()),
		slog.String("locator", locator),
		slog.String("builder", p.Builder),
		slog.Int("renderers", p.RendererCount()))
	return p, nil
}

// instantiateRenderers creates one renderer per registered identifier, in
// registry order. Duplicated identifiers yield duplicated renderers.
func (a *Assembler) instantiateRenderers(locator string) (map[media.RendererCategory][]renderer.Renderer, error) {
	out := make(map[media.RendererCategory][]renderer.Renderer, len(media.RendererCategories()))
	for _, c := range media.RendererCategories() {
		ids := a.reg.RendererClasses(c)
		rs := make([]renderer.Renderer, 0, len(ids))
		for _, id := range ids {
			r, err := a.factory.Instantiate(id)
			if err == nil && r.Category() != c {
				err = errors.Errorf("renderer is registered as %s but reports %s", c, r.Category())
			}
			if err != nil {
				if a.metrics != nil {
					a.metrics.IncRendererFailures(c.String())
				}
				a.log.Warn("renderer instantiation failed",
					slog.String("category", c.String()),
					slog.String("identifier", id),
					slog.String("error", err.Error()))
				return nil, &SetupError{Kind: ErrInvalidRenderer, Locator: locator, Detail: c.String() + " " + id, Err: err}
			}
			rs = append(rs, r)
		}
		out[c] = rs
	}
	return out, nil
}
