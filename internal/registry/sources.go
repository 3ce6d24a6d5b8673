package registry

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"media-extensions/internal/media"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrUnresolvedContentType is returned by Resolve when no entry matches the locator.
var ErrUnresolvedContentType = errors.New("unresolved content type")

// DefaultResolveCacheSize is the number of resolved locators remembered by a
// SourceTypeRegistry when no size is given.
const DefaultResolveCacheSize = 256

// SourceTypeEntry is one rule for recognising a content type: a locator
// matches when its path ends with Extension or when it matches Regex.
type SourceTypeEntry struct {
	Builder   media.MediaSourceBuilder
	Extension string
	Regex     string

	pattern *regexp.Regexp
}

// NewSourceTypeEntry compiles regex and returns the entry. An empty extension
// or regex disables that half of the rule.
func NewSourceTypeEntry(builder media.MediaSourceBuilder, extension, regex string) (SourceTypeEntry, error) {
	if builder == nil {
		return SourceTypeEntry{}, errors.New("source type entry: nil builder")
	}
	e := SourceTypeEntry{Builder: builder, Extension: extension, Regex: regex}
	if regex != "" {
		p, err := regexp.Compile(regex)
		if err != nil {
			return SourceTypeEntry{}, fmt.Errorf("source type entry %q: %w", regex, err)
		}
		e.pattern = p
	}
	return e, nil
}

// MustSourceTypeEntry is like NewSourceTypeEntry but panics on error.
func MustSourceTypeEntry(builder media.MediaSourceBuilder, extension, regex string) SourceTypeEntry {
	e, err := NewSourceTypeEntry(builder, extension, regex)
	if err != nil {
		panic(err)
	}
	return e
}

// Matches reports whether locator is handled by this entry. Either rule alone
// is sufficient. The extension is compared, case-insensitively, against the
// path of an absolute URL, or against a schemeless locator with only its
// "?" query removed: '#' is a fragment only when the locator has a scheme,
// so "song#1.foo" ends in ".foo". The regex matches anywhere in the
// unmodified locator.
func (e SourceTypeEntry) Matches(locator string) bool {
	if e.Extension != "" && strings.HasSuffix(strings.ToLower(locatorPath(locator)), strings.ToLower(e.Extension)) {
		return true
	}
	return e.pattern != nil && e.pattern.MatchString(locator)
}

// locatorPath returns the part of locator the extension rule applies to.
func locatorPath(locator string) string {
	if u, err := url.Parse(locator); err == nil && u.Scheme != "" && u.Path != "" {
		return u.Path
	}
	if i := strings.IndexByte(locator, '?'); i >= 0 {
		return locator[:i]
	}
	return locator
}

// SourceTypeRegistry is the ordered list of SourceTypeEntry values consulted
// by Resolve. The order of entries is the priority order: index 0 is tried
// first, and Register always inserts at index 0, so the most recently
// registered entry wins any tie.
type SourceTypeRegistry struct {
	mu      sync.RWMutex
	entries []SourceTypeEntry
	cache   *lru.Cache[string, media.MediaSourceBuilder]
}

// NewSourceTypeRegistry returns an empty registry remembering up to cacheSize
// resolved locators. If cacheSize <= 0, DefaultResolveCacheSize is used.
func NewSourceTypeRegistry(cacheSize int) *SourceTypeRegistry {
	if cacheSize <= 0 {
		cacheSize = DefaultResolveCacheSize
	}
	cache, err := lru.New[string, media.MediaSourceBuilder](cacheSize)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &SourceTypeRegistry{cache: cache}
}

// Register inserts entry at the front, giving it priority over every entry
// registered before it, built-ins included.
func (r *SourceTypeRegistry) Register(entry SourceTypeEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append([]SourceTypeEntry{entry}, r.entries...)
	r.cache.Purge()
}

// seed adds entry at the back. Only used for built-ins.
func (r *SourceTypeRegistry) seed(entry SourceTypeEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	r.cache.Purge()
}

// Resolve returns the builder of the first entry matching locator, or
// ErrUnresolvedContentType if none does.
func (r *SourceTypeRegistry) Resolve(locator string) (media.MediaSourceBuilder, error) {
	// Cache writes happen under the read lock; Register purges under the
	// write lock.
	r.mu.RLock()
	defer r.mu.RUnlock()

	if b, ok := r.cache.Get(locator); ok {
		return b, nil
	}
	for _, e := range r.entries {
		if e.Matches(locator) {
			r.cache.Add(locator, e.Builder)
			return e.Builder, nil
		}
	}
	return nil, ErrUnresolvedContentType
}

// Entries returns a snapshot of the entries in priority order.
func (r *SourceTypeRegistry) Entries() []SourceTypeEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SourceTypeEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered entries.
func (r *SourceTypeRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
