// Package registry records the renderer identifiers, media-source builders and
// HTTP data source factory provider a playback engine is extended with, and
// resolves content locators to builders.
//
// A Registry is created once per process and handed to the components that
// build pipelines. Default offers a shared instance; the server and tests
// create their own with New.
package registry

import (
	"sync"

	"media-extensions/internal/media"
)

// Registry bundles the three independent extension points. None of its
// operations block or fail; validation happens where the registered values
// are used.
type Registry struct {
	renderers *RendererRegistry
	sources   *SourceTypeRegistry
	provider  ProviderSlot
}

// New returns a Registry seeded with the built-in renderers and builders.
// resolveCacheSize bounds the resolver cache; <= 0 uses DefaultResolveCacheSize.
func New(resolveCacheSize int) *Registry {
	r := &Registry{
		renderers: NewRendererRegistry(),
		sources:   NewSourceTypeRegistry(resolveCacheSize),
	}
	seedRenderers(r.renderers)
	seedSources(r.sources)
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide Registry, creating it on first use with
// DefaultResolveCacheSize. cmd/server does not use it: it builds its own
// Registry with New so the cache size follows configuration.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = New(DefaultResolveCacheSize)
	})
	return defaultReg
}

// RegisterRenderer appends identifier to category. Registering the same
// identifier twice is accepted and results in two instances at play time.
func (r *Registry) RegisterRenderer(category media.RendererCategory, identifier string) {
	r.renderers.Register(category, identifier)
}

// RendererClasses returns the identifiers for category, built-ins first.
func (r *Registry) RendererClasses(category media.RendererCategory) []string {
	return r.renderers.ClassesFor(category)
}

// RegisterMediaSourceBuilder gives entry priority over every builder already
// registered, including the built-ins.
func (r *Registry) RegisterMediaSourceBuilder(entry SourceTypeEntry) {
	r.sources.Register(entry)
}

// Resolve returns the highest-priority builder matching locator.
func (r *Registry) Resolve(locator string) (media.MediaSourceBuilder, error) {
	return r.sources.Resolve(locator)
}

// SourceEntries returns the builder entries in priority order.
func (r *Registry) SourceEntries() []SourceTypeEntry {
	return r.sources.Entries()
}

// RendererCount returns the number of identifiers registered for category.
func (r *Registry) RendererCount(category media.RendererCategory) int {
	return r.renderers.Count(category)
}

// SourceCount returns the number of registered source type entries.
func (r *Registry) SourceCount() int {
	return r.sources.Len()
}

// SetHTTPDataSourceFactoryProvider replaces the provider; nil clears it.
func (r *Registry) SetHTTPDataSourceFactoryProvider(p media.HTTPDataSourceFactoryProvider) {
	r.provider.Set(p)
}

// HTTPDataSourceFactoryProvider returns the current provider or nil.
func (r *Registry) HTTPDataSourceFactoryProvider() media.HTTPDataSourceFactoryProvider {
	return r.provider.Get()
}
