package registry

import (
	"sync/atomic"

	"media-extensions/internal/media"
)

// ProviderSlot holds the optional HTTPDataSourceFactoryProvider. Each Set
// replaces the previous value wholesale; readers always see a complete value.
type ProviderSlot struct {
	v atomic.Pointer[providerBox]
}

type providerBox struct {
	provider media.HTTPDataSourceFactoryProvider
}

// Set stores p. Passing nil clears the slot.
func (s *ProviderSlot) Set(p media.HTTPDataSourceFactoryProvider) {
	if p == nil {
		s.v.Store(nil)
		return
	}
	s.v.Store(&providerBox{provider: p})
}

// Get returns the last provider stored, or nil.
func (s *ProviderSlot) Get() media.HTTPDataSourceFactoryProvider {
	b := s.v.Load()
	if b == nil {
		return nil
	}
	return b.provider
}
