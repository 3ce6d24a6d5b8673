// Package builder holds the built-in adaptive-streaming MediaSourceBuilders.
package builder

import (
	"context"
	"net/url"
	"strings"

	"media-extensions/internal/datasource"
	"media-extensions/internal/media"

	"github.com/pkg/errors"
)

// ErrEmptyLocator is returned by Build for a blank locator.
var ErrEmptyLocator = errors.New("empty content locator")

// Builder constructs a media.MediaSource of one kind. The manifest and the
// media chunks may be fetched through different factories: only chunk
// transfers are reported to the request's listener.
type Builder struct {
	name     string
	kind     media.SourceKind
	manifest bool
}

// NewHLS returns the HLS builder. Playlists and segments share one factory.
func NewHLS() *Builder {
	return &Builder{name: "hls", kind: media.KindHLS}
}

// NewDASH returns the MPEG-DASH builder.
func NewDASH() *Builder {
	return &Builder{name: "dash", kind: media.KindDASH, manifest: true}
}

// NewSmoothStreaming returns the SmoothStreaming builder.
func NewSmoothStreaming() *Builder {
	return &Builder{name: "smoothstreaming", kind: media.KindSmoothStreaming, manifest: true}
}

// ByName returns a new built-in builder for name ("hls", "dash",
// "smoothstreaming"; "ss" is accepted too).
func ByName(name string) (*Builder, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hls":
		return NewHLS(), true
	case "dash":
		return NewDASH(), true
	case "smoothstreaming", "ss":
		return NewSmoothStreaming(), true
	}
	return nil, false
}

// Names lists the names ByName understands.
func Names() []string {
	return []string{"hls", "dash", "smoothstreaming"}
}

// Name implements media.MediaSourceBuilder.
func (b *Builder) Name() string { return b.name }

// Kind returns the kind of MediaSource this builder produces.
func (b *Builder) Kind() media.SourceKind { return b.kind }

// Build implements media.MediaSourceBuilder.
func (b *Builder) Build(ctx context.Context, req media.BuildRequest) (*media.MediaSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	locator := strings.TrimSpace(req.Locator)
	if locator == "" {
		return nil, ErrEmptyLocator
	}
	u, err := url.Parse(locator)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: parse locator", b.name)
	}

	src := &media.MediaSource{
		Kind:              b.kind,
		URI:               u.String(),
		DataSourceFactory: DataSourceFactory(req, req.Listener),
	}
	if b.manifest {
		src.ManifestDataSourceFactory = DataSourceFactory(req, nil)
	} else {
		src.ManifestDataSourceFactory = src.DataSourceFactory
	}
	return src, nil
}

// DataSourceFactory returns the factory the request's provider supplies, or
// the default HTTP factory when there is no provider or it returns nil.
// Custom builders call this to get the same fallback behaviour.
func DataSourceFactory(req media.BuildRequest, listener media.TransferListener) media.DataSourceFactory {
	if req.Provider != nil {
		if f := req.Provider.Provide(req.UserAgent, listener); f != nil {
			return f
		}
	}
	return datasource.NewHTTPFactory(req.UserAgent, listener)
}
