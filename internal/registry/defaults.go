package registry

import (
	"media-extensions/internal/builder"
	"media-extensions/internal/media"
)

// Built-in renderer identifiers, registered ahead of any user renderer.
const (
	OpusAudioRenderer   = "com.google.android.exoplayer2.ext.opus.LibopusAudioRenderer"
	FlacAudioRenderer   = "com.google.android.exoplayer2.ext.flac.LibflacAudioRenderer"
	FfmpegAudioRenderer = "com.google.android.exoplayer2.ext.ffmpeg.FfmpegAudioRenderer"
	Vp9VideoRenderer    = "com.google.android.exoplayer2.ext.vp9.LibvpxVideoRenderer"
)

// DefaultRendererClasses returns the built-in identifiers for category.
func DefaultRendererClasses(category media.RendererCategory) []string {
	switch category {
	case media.Audio:
		return []string{OpusAudioRenderer, FlacAudioRenderer, FfmpegAudioRenderer}
	case media.Video:
		return []string{Vp9VideoRenderer}
	default:
		return []string{}
	}
}

func seedRenderers(r *RendererRegistry) {
	for _, c := range media.RendererCategories() {
		for _, id := range DefaultRendererClasses(c) {
			r.Register(c, id)
		}
	}
}

// seedSources adds the adaptive-streaming builders. They are appended in
// order, so HLS is tried before DASH and DASH before SmoothStreaming, and all
// of them sit behind any later Register call.
func seedSources(r *SourceTypeRegistry) {
	r.seed(MustSourceTypeEntry(builder.NewHLS(), ".m3u8", ".*m3u8.*"))
	r.seed(MustSourceTypeEntry(builder.NewDASH(), ".mpd", ".*mpd.*"))
	r.seed(MustSourceTypeEntry(builder.NewSmoothStreaming(), ".ism", ".*ism.*"))
}
