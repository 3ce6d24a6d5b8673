package pipeline

import (
	"context"
	"testing"

	"media-extensions/internal/datasource"
	"media-extensions/internal/media"
	"media-extensions/internal/platform/logger"
	"media-extensions/internal/platform/metrics"
	"media-extensions/internal/registry"
	"media-extensions/internal/renderer"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFactory struct{}

func (stubFactory) CreateDataSource() media.DataSource { return nil }

type failingBuilder struct{}

func (failingBuilder) Name() string { return "failing" }

func (failingBuilder) Build(context.Context, media.BuildRequest) (*media.MediaSource, error) {
	return nil, errors.New("manifest unreachable")
}

func newTestAssembler(t *testing.T) (*Assembler, *registry.Registry, *renderer.Factory) {
	t.Helper()
	reg := registry.New(0)
	factory := renderer.NewFactory()
	return NewAssembler(reg, factory, "test-agent", logger.Discard(), metrics.New()), reg, factory
}

func TestPrepare_builtin_hls(t *testing.T) {
	a, _, _ := newTestAssembler(t)

	p, err := a.Prepare(context.Background(), "https://cdn.example.com/live/playlist.m3u8", nil)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "hls", p.Builder)
	assert.Equal(t, media.KindHLS, p.Source.Kind)

	f, ok := p.Source.DataSourceFactory.(*datasource.HTTPFactory)
	require.True(t, ok)
	assert.Equal(t, "test-agent", f.UserAgent())

	require.Len(t, p.Renderers[media.Audio], 3)
	assert.Equal(t, registry.OpusAudioRenderer, p.Renderers[media.Audio][0].Identifier())
	require.Len(t, p.Renderers[media.Video], 1)
	assert.Empty(t, p.Renderers[media.ClosedCaption])
	assert.Empty(t, p.Renderers[media.Metadata])
	assert.Equal(t, 4, p.RendererCount())
}

func TestPrepare_unsupported_media_type(t *testing.T) {
	a, _, _ := newTestAssembler(t)

	_, err := a.Prepare(context.Background(), "video.mp4", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedMediaType))
	assert.True(t, errors.Is(err, registry.ErrUnresolvedContentType))
	assert.Contains(t, err.Error(), "video.mp4")
}

func TestPrepare_invalid_renderer(t *testing.T) {
	a, reg, _ := newTestAssembler(t)
	reg.RegisterRenderer(media.ClosedCaption, "com.example.DoesNotExist")

	_, err := a.Prepare(context.Background(), "manifest.mpd", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRenderer))
	assert.True(t, errors.Is(err, renderer.ErrUnknownRenderer))

	var setupErr *SetupError
	require.True(t, errors.As(err, &setupErr))
	assert.Equal(t, "closed_caption com.example.DoesNotExist", setupErr.Detail)
}

func TestPrepare_renderer_category_mismatch(t *testing.T) {
	a, reg, _ := newTestAssembler(t)
	reg.RegisterRenderer(media.Audio, registry.Vp9VideoRenderer)

	_, err := a.Prepare(context.Background(), "stream.ism", nil)
	assert.True(t, errors.Is(err, ErrInvalidRenderer))
}

func TestPrepare_nil_renderer(t *testing.T) {
	a, reg, factory := newTestAssembler(t)
	const id = "com.example.NilRenderer"
	factory.Register(id, func() (renderer.Renderer, error) { return nil, nil })
	reg.RegisterRenderer(media.Metadata, id)

	var p *Pipeline
	var err error
	require.NotPanics(t, func() {
		p, err = a.Prepare(context.Background(), "playlist.m3u8", nil)
	})
	assert.Nil(t, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRenderer))
	assert.Contains(t, err.Error(), id)
}

func TestPrepare_duplicate_renderers_instantiated_twice(t *testing.T) {
	a, reg, factory := newTestAssembler(t)
	const id = "com.example.Id3Renderer"
	factory.Register(id, func() (renderer.Renderer, error) {
		return &renderer.ExtensionRenderer{ID: id, Cat: media.Metadata, Codec: "id3"}, nil
	})
	reg.RegisterRenderer(media.Metadata, id)
	reg.RegisterRenderer(media.Metadata, id)

	p, err := a.Prepare(context.Background(), "playlist.m3u8", nil)
	require.NoError(t, err)
	require.Len(t, p.Renderers[media.Metadata], 2)
	assert.NotSame(t, p.Renderers[media.Metadata][0], p.Renderers[media.Metadata][1])
}

func TestPrepare_uses_registered_provider(t *testing.T) {
	a, reg, _ := newTestAssembler(t)
	var gotUA string
	reg.SetHTTPDataSourceFactoryProvider(media.HTTPDataSourceFactoryProviderFunc(
		func(ua string, _ media.TransferListener) media.DataSourceFactory {
			gotUA = ua
			return stubFactory{}
		}))

	p, err := a.Prepare(context.Background(), "playlist.m3u8", nil)
	require.NoError(t, err)
	assert.Equal(t, stubFactory{}, p.Source.DataSourceFactory)
	assert.Equal(t, "test-agent", gotUA)

	reg.SetHTTPDataSourceFactoryProvider(nil)
	p, err = a.Prepare(context.Background(), "playlist.m3u8", nil)
	require.NoError(t, err)
	assert.IsType(t, &datasource.HTTPFactory{}, p.Source.DataSourceFactory)
}

func TestPrepare_custom_builder_wins(t *testing.T) {
	a, reg, _ := newTestAssembler(t)
	reg.RegisterMediaSourceBuilder(registry.MustSourceTypeEntry(failingBuilder{}, ".m3u8", ""))

	_, err := a.Prepare(context.Background(), "playlist.m3u8", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBuildFailed))
	assert.Contains(t, err.Error(), "manifest unreachable")
}

func TestPrepare_without_metrics(t *testing.T) {
	a := NewAssembler(registry.New(0), renderer.NewFactory(), "ua", logger.Discard(), nil)
	_, err := a.Prepare(context.Background(), "video.mp4", nil)
	assert.True(t, errors.Is(err, ErrUnsupportedMediaType))

	_, err = a.Prepare(context.Background(), "manifest.mpd", nil)
	assert.NoError(t, err)
}
