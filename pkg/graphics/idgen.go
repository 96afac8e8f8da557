package graphics

import "sync/atomic"

// LayerID is a stable identity for a layer, used by compositors to
// correlate layers across frames.
type LayerID uint64

// IDSource hands out monotonically increasing layer identifiers.
// It exists as an explicit service (rather than a bare package-level
// counter) so tests can reset it for deterministic output.
type IDSource struct {
	next atomic.Uint64
}

// Next returns the next identifier. The zero LayerID is never returned.
func (s *IDSource) Next() LayerID {
	return LayerID(s.next.Add(1))
}

// Reset rewinds the source. Only call this from test setup; resetting a
// live source makes identifiers collide with previous frames.
func (s *IDSource) Reset() {
	s.next.Store(0)
}

var layerIDs IDSource

// NextLayerID returns a fresh identifier from the process-wide source.
func NextLayerID() LayerID {
	return layerIDs.Next()
}

// ResetLayerIDs rewinds the process-wide source for test isolation.
func ResetLayerIDs() {
	layerIDs.Reset()
}
