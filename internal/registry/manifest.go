package registry

import (
	"sort"

	"media-extensions/internal/builder"
	"media-extensions/internal/media"
	"media-extensions/internal/platform/config"

	"github.com/pkg/errors"
)

// ApplyManifest registers every renderer and source rule in m. The manifest
// is checked completely before anything is registered, so an invalid
// manifest leaves reg untouched.
func ApplyManifest(reg *Registry, m *config.Manifest) error {
	if m == nil {
		return nil
	}

	type rendererReg struct {
		category media.RendererCategory
		ids      []string
	}
	names := make([]string, 0, len(m.Renderers))
	for name := range m.Renderers {
		names = append(names, name)
	}
	sort.Strings(names)

	renderers := make([]rendererReg, 0, len(names))
	for _, name := range names {
		c, err := media.ParseRendererCategory(name)
		if err != nil {
			return errors.Wrap(err, "manifest renderers")
		}
		renderers = append(renderers, rendererReg{category: c, ids: m.Renderers[name]})
	}

	entries := make([]SourceTypeEntry, 0, len(m.Sources))
	for i, s := range m.Sources {
		b, ok := builder.ByName(s.Builder)
		if !ok {
			return errors.Errorf("manifest source %d: unknown builder %q", i, s.Builder)
		}
		e, err := NewSourceTypeEntry(b, s.Extension, s.Regex)
		if err != nil {
			return errors.Wrapf(err, "manifest source %d", i)
		}
		entries = append(entries, e)
	}

	for _, r := range renderers {
		for _, id := range r.ids {
			reg.RegisterRenderer(r.category, id)
		}
	}
	for _, e := range entries {
		reg.RegisterMediaSourceBuilder(e)
	}
	return nil
}
