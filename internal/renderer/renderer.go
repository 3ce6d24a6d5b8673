// Package renderer turns the opaque identifiers held by the registry into
// Renderer values. An identifier without a constructor is an error here, at
// instantiation time, never at registration.
package renderer

import (
	"sync"

	"media-extensions/internal/media"
	"media-extensions/internal/registry"

	"github.com/pkg/errors"
)

// ErrUnknownRenderer is returned by Instantiate for an identifier with no constructor.
var ErrUnknownRenderer = errors.New("unknown renderer")

// Renderer is one decoding/output stage of a pipeline.
type Renderer interface {
	Identifier() string
	Category() media.RendererCategory
}

// Constructor creates a new Renderer instance.
type Constructor func() (Renderer, error)

// Factory maps identifiers to constructors.
type Factory struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewFactory returns a Factory that knows the built-in extension renderers.
func NewFactory() *Factory {
	f := &Factory{ctors: make(map[string]Constructor)}
	f.Register(registry.OpusAudioRenderer, extension(registry.OpusAudioRenderer, media.Audio, "opus"))
	f.Register(registry.FlacAudioRenderer, extension(registry.FlacAudioRenderer, media.Audio, "flac"))
	f.Register(registry.FfmpegAudioRenderer, extension(registry.FfmpegAudioRenderer, media.Audio, "ffmpeg"))
	f.Register(registry.Vp9VideoRenderer, extension(registry.Vp9VideoRenderer, media.Video, "vp9"))
	return f
}

// Register sets the constructor for identifier, replacing any previous one.
func (f *Factory) Register(identifier string, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctors[identifier] = ctor
}

// Has reports whether identifier has a constructor.
func (f *Factory) Has(identifier string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ctors[identifier]
	return ok
}

// Instantiate creates a new Renderer for identifier.
func (f *Factory) Instantiate(identifier string) (Renderer, error) {
	f.mu.RLock()
	ctor, ok := f.ctors[identifier]
	f.mu.RUnlock()

	if !ok {
		return nil, errors.Wrap(ErrUnknownRenderer, identifier)
	}
	r, err := ctor()
	if err != nil {
		return nil, errors.Wrapf(err, "instantiate %s", identifier)
	}
	if r == nil {
		return nil, errors.Errorf("instantiate %s: constructor returned no renderer", identifier)
	}
	return r, nil
}

// ExtensionRenderer describes a renderer backed by an optional codec library.
type ExtensionRenderer struct {
	ID    string
	Cat   media.RendererCategory
	Codec string
}

func (r *ExtensionRenderer) Identifier() string               { return r.ID }
func (r *ExtensionRenderer) Category() media.RendererCategory { return r.Cat }

func extension(id string, cat media.RendererCategory, codec string) Constructor {
	return func() (Renderer, error) {
		return &ExtensionRenderer{ID: id, Cat: cat, Codec: codec}, nil
	}
}
