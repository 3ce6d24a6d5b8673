package builder

import (
	"context"
	"testing"

	"media-extensions/internal/datasource"
	"media-extensions/internal/media"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFactory struct{ ua string }

func (stubFactory) CreateDataSource() media.DataSource { return nil }

type nopListener struct{}

func (nopListener) OnTransferStart(string)           {}
func (nopListener) OnBytesTransferred(string, int64) {}
func (nopListener) OnTransferEnd(string)             {}

func TestBuild_default_factory(t *testing.T) {
	l := nopListener{}
	src, err := NewHLS().Build(context.Background(), media.BuildRequest{
		Locator:   "https://cdn.example.com/live/index.m3u8",
		UserAgent: "player/1",
		Listener:  l,
	})
	require.NoError(t, err)
	assert.Equal(t, media.KindHLS, src.Kind)
	assert.Equal(t, "https://cdn.example.com/live/index.m3u8", src.URI)

	f, ok := src.DataSourceFactory.(*datasource.HTTPFactory)
	require.True(t, ok, "expected default http factory, got %T", src.DataSourceFactory)
	assert.Equal(t, "player/1", f.UserAgent())
	assert.Equal(t, l, f.Listener())
	// HLS shares one factory for playlists and segments.
	assert.Same(t, src.DataSourceFactory, src.ManifestDataSourceFactory)
}

func TestBuild_manifest_factory_has_no_listener(t *testing.T) {
	src, err := NewDASH().Build(context.Background(), media.BuildRequest{
		Locator:  "https://cdn.example.com/manifest.mpd",
		Listener: nopListener{},
	})
	require.NoError(t, err)
	assert.Equal(t, media.KindDASH, src.Kind)

	mf, ok := src.ManifestDataSourceFactory.(*datasource.HTTPFactory)
	require.True(t, ok)
	assert.Nil(t, mf.Listener())

	cf, ok := src.DataSourceFactory.(*datasource.HTTPFactory)
	require.True(t, ok)
	assert.NotNil(t, cf.Listener())
}

func TestBuild_uses_provider(t *testing.T) {
	var calls []media.TransferListener
	p := media.HTTPDataSourceFactoryProviderFunc(func(ua string, l media.TransferListener) media.DataSourceFactory {
		calls = append(calls, l)
		return stubFactory{ua: ua}
	})

	src, err := NewSmoothStreaming().Build(context.Background(), media.BuildRequest{
		Locator:   "https://cdn.example.com/stream.ism/Manifest",
		UserAgent: "custom",
		Listener:  nopListener{},
		Provider:  p,
	})
	require.NoError(t, err)
	assert.Equal(t, stubFactory{ua: "custom"}, src.DataSourceFactory)
	assert.Equal(t, stubFactory{ua: "custom"}, src.ManifestDataSourceFactory)
	require.Len(t, calls, 2)
	assert.NotNil(t, calls[0])
	assert.Nil(t, calls[1])
}

func TestBuild_provider_returning_nil_falls_back(t *testing.T) {
	p := media.HTTPDataSourceFactoryProviderFunc(func(string, media.TransferListener) media.DataSourceFactory {
		return nil
	})
	src, err := NewHLS().Build(context.Background(), media.BuildRequest{Locator: "a.m3u8", Provider: p})
	require.NoError(t, err)
	assert.IsType(t, &datasource.HTTPFactory{}, src.DataSourceFactory)
}

func TestBuild_empty_locator(t *testing.T) {
	_, err := NewHLS().Build(context.Background(), media.BuildRequest{Locator: "  "})
	assert.True(t, errors.Is(err, ErrEmptyLocator))
}

func TestBuild_cancelled_context(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHLS().Build(ctx, media.BuildRequest{Locator: "a.m3u8"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		b, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, b.Name())
	}
	b, ok := ByName("SS")
	require.True(t, ok)
	assert.Equal(t, media.KindSmoothStreaming, b.Kind())

	_, ok = ByName("progressive")
	assert.False(t, ok)
}
