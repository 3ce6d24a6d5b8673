package registry

import (
	"sync"

	"media-extensions/internal/media"
)

// RendererRegistry holds, per category, the ordered renderer identifiers the
// pipeline assembler instantiates. Identifiers are opaque here; an unknown
// identifier only fails when the assembler tries to construct it.
type RendererRegistry struct {
	mu      sync.RWMutex
	classes map[media.RendererCategory][]string
}

// NewRendererRegistry returns a registry with an empty list for every category.
func NewRendererRegistry() *RendererRegistry {
	classes := make(map[media.RendererCategory][]string, len(media.RendererCategories()))
	for _, c := range media.RendererCategories() {
		classes[c] = []string{}
	}
	return &RendererRegistry{classes: classes}
}

// Register appends identifier to the list for category. Duplicates are kept:
// registering the same identifier twice means it is instantiated twice.
func (r *RendererRegistry) Register(category media.RendererCategory, identifier string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.classes[category] = append(r.classes[category], identifier)
}

// ClassesFor returns a copy of the identifiers registered for category, in
// registration order. It never returns nil.
func (r *RendererRegistry) ClassesFor(category media.RendererCategory) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.classes[category]))
	copy(out, r.classes[category])
	return out
}

// Count returns the number of identifiers registered for category.
func (r *RendererRegistry) Count(category media.RendererCategory) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.classes[category])
}
