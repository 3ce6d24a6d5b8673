package registry

import (
	"testing"

	"media-extensions/internal/media"
	"media-extensions/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyManifest(t *testing.T) {
	reg := New(0)
	m := &config.Manifest{
		Renderers: map[string][]string{
			"audio":          {"com.example.AacRenderer"},
			"closed-caption": {"com.example.Cea608Renderer", "com.example.Cea608Renderer"},
		},
		Sources: []config.SourceRule{
			{Builder: "dash", Extension: ".mpd2"},
			{Builder: "hls", Extension: ".m3u", Regex: ".*\\.m3u$"},
		},
	}
	require.NoError(t, ApplyManifest(reg, m))

	audio := reg.RendererClasses(media.Audio)
	assert.Equal(t, "com.example.AacRenderer", audio[len(audio)-1])
	assert.Equal(t, []string{"com.example.Cea608Renderer", "com.example.Cea608Renderer"}, reg.RendererClasses(media.ClosedCaption))

	entries := reg.SourceEntries()
	require.Len(t, entries, 5)
	assert.Equal(t, ".m3u", entries[0].Extension, "last rule in the file has top priority")
	assert.Equal(t, ".mpd2", entries[1].Extension)

	b, err := reg.Resolve("radio.m3u")
	require.NoError(t, err)
	assert.Equal(t, "hls", b.Name())
}

func TestApplyManifest_invalid_leaves_registry_untouched(t *testing.T) {
	cases := map[string]*config.Manifest{
		"unknown category": {Renderers: map[string][]string{"subtitles": {"x"}}},
		"unknown builder":  {Sources: []config.SourceRule{{Builder: "rtmp", Extension: ".flv"}}},
		"bad regex":        {Sources: []config.SourceRule{{Builder: "hls", Regex: "(["}}},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			reg := New(0)
			m.Renderers = mergeRenderers(m.Renderers, "audio", "com.example.ShouldNotAppear")
			assert.Error(t, ApplyManifest(reg, m))
			assert.Len(t, reg.RendererClasses(media.Audio), 3)
			assert.Len(t, reg.SourceEntries(), 3)
		})
	}
}

func TestApplyManifest_nil(t *testing.T) {
	assert.NoError(t, ApplyManifest(New(0), nil))
}

func mergeRenderers(in map[string][]string, category, id string) map[string][]string {
	out := map[string][]string{category: {id}}
	for k, v := range in {
		out[k] = v
	}
	return out
}
