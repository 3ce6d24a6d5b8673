package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Manifest lists the extensions applied to the registry at startup.
//
//	renderers:
//	  audio: [com.example.AacRenderer]
//	sources:
//	  - builder: hls
//	    extension: .m3u
//	    regex: ".*\\.m3u(\\?.*)?$"
type Manifest struct {
	// Renderers maps a category name to identifiers, appended in list order.
	Renderers map[string][]string `yaml:"renderers"`
	// Sources are registered in file order, so the last rule listed ends up
	// with the highest priority.
	Sources []SourceRule `yaml:"sources"`
}

// SourceRule binds a built-in builder to an extra match rule.
type SourceRule struct {
	Builder   string `yaml:"builder"`
	Extension string `yaml:"extension"`
	Regex     string `yaml:"regex"`
}

// LoadManifest reads a YAML manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a YAML manifest. Rules without a builder, or with
// neither an extension nor a regex, are rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	for i, s := range m.Sources {
		if s.Builder == "" {
			return nil, errors.Errorf("manifest source %d: missing builder", i)
		}
		if s.Extension == "" && s.Regex == "" {
			return nil, errors.Errorf("manifest source %d: needs an extension or a regex", i)
		}
	}
	return m, nil
}
