package media

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// RendererCategory identifies the kind of media a renderer consumes.
type RendererCategory int

const (
	Audio RendererCategory = iota
	Video
	ClosedCaption
	Metadata
)

// RendererCategories returns every category in declaration order.
func RendererCategories() []RendererCategory {
	return []RendererCategory{Audio, Video, ClosedCaption, Metadata}
}

func (c RendererCategory) String() string {
	switch c {
	case Audio:
		return "audio"
	case Video:
		return "video"
	case ClosedCaption:
		return "closed_caption"
	case Metadata:
		return "metadata"
	default:
		return fmt.Sprintf("RendererCategory(%d)", int(c))
	}
}

// ParseRendererCategory accepts the String form of a category, case-insensitive.
// "closed-caption" is accepted as an alias of "closed_caption".
func ParseRendererCategory(s string) (RendererCategory, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "audio":
		return Audio, nil
	case "video":
		return Video, nil
	case "closed_caption":
		return ClosedCaption, nil
	case "metadata":
		return Metadata, nil
	}
	return 0, fmt.Errorf("unknown renderer category %q", s)
}

// SourceKind names the pipeline a builder produces.
type SourceKind string

const (
	KindHLS             SourceKind = "hls"
	KindDASH            SourceKind = "dash"
	KindSmoothStreaming SourceKind = "smoothstreaming"
)

// TransferListener observes network transfers performed by a DataSource.
// All methods may be called from the goroutine doing the read.
type TransferListener interface {
	OnTransferStart(uri string)
	OnBytesTransferred(uri string, n int64)
	OnTransferEnd(uri string)
}

// DataSource opens a byte stream for a URI.
type DataSource interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// DataSourceFactory creates DataSources for a media source.
type DataSourceFactory interface {
	CreateDataSource() DataSource
}

// HTTPDataSourceFactoryProvider supplies the network DataSourceFactory used by
// builders. listener may be nil.
type HTTPDataSourceFactoryProvider interface {
	Provide(userAgent string, listener TransferListener) DataSourceFactory
}

// HTTPDataSourceFactoryProviderFunc adapts a function to HTTPDataSourceFactoryProvider.
type HTTPDataSourceFactoryProviderFunc func(userAgent string, listener TransferListener) DataSourceFactory

// Provide calls f(userAgent, listener).
func (f HTTPDataSourceFactoryProviderFunc) Provide(userAgent string, listener TransferListener) DataSourceFactory {
	return f(userAgent, listener)
}

// MediaSource is the assembled data side of a playback pipeline.
type MediaSource struct {
	Kind SourceKind
	URI  string

	// ManifestDataSourceFactory loads playlists and manifests.
	ManifestDataSourceFactory DataSourceFactory
	// DataSourceFactory loads media chunks.
	DataSourceFactory DataSourceFactory
}

// BuildRequest carries everything a builder needs to construct a MediaSource.
type BuildRequest struct {
	Locator   string
	UserAgent string

	// Listener is optional.
	Listener TransferListener

	// Provider is the currently registered provider, or nil when the builder
	// should fall back to its own default factory.
	Provider HTTPDataSourceFactoryProvider
}

// MediaSourceBuilder constructs the MediaSource for one content type.
type MediaSourceBuilder interface {
	// Name is a short identifier used in logs, metrics and the API (e.g. "hls").
	Name() string
	Build(ctx context.Context, req BuildRequest) (*MediaSource, error)
}
