package catalog

import "time"

// IsStale reports whether the catalog should be reloaded: it never was, or
// at least one refresh interval elapsed since the last refresh. The answer is
// also stored in CacheMetadata.IsStale.
func (s *Synchronizer) IsStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	md := s.state.CacheMetadata
	stale := md.LastBackgroundRefresh.IsZero() ||
		s.now().Sub(md.LastBackgroundRefresh) >= md.Interval()
	md.IsStale = stale
	return stale
}

// IsDataFresh is the negation of IsStale.
func (s *Synchronizer) IsDataFresh() bool {
	return !s.IsStale()
}

// TimeUntilNextRefresh returns how long until the catalog becomes stale,
// 0 when it already is.
func (s *Synchronizer) TimeUntilNextRefresh() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	md := s.state.CacheMetadata
	if md.LastBackgroundRefresh.IsZero() {
		return 0
	}
	left := md.LastBackgroundRefresh.Add(md.Interval()).Sub(s.now())
	if left < 0 {
		return 0
	}
	return left
}
