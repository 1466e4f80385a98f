package profile

import (
	"math"
	"sort"
)

// slop added to a slot's half beamwidth when matching a query bearing
const slotEpsilon = 1e-6

// BearingProfileMap holds the profiles loaded at one timestamp, keyed by
// bearing. A query bearing matches the stored slot whose bearing is within
// that slot's half beamwidth plus a small epsilon, with wraparound at the
// 0/2pi boundary.
type BearingProfileMap struct {
	bearings []float64 // sorted keys
	profiles map[float64]*Profile
}

func NewBearingProfileMap() *BearingProfileMap {
	return &BearingProfileMap{profiles: make(map[float64]*Profile)}
}

func (m *BearingProfileMap) Len() int    { return len(m.bearings) }
func (m *BearingProfileMap) Empty() bool { return len(m.bearings) == 0 }

// AddProfile stores the profile at its bearing, replacing any existing
// profile at the exact same bearing.
func (m *BearingProfileMap) AddProfile(p *Profile) {
	key := p.Bearing()
	if _, exists := m.profiles[key]; !exists {
		i := sort.SearchFloat64s(m.bearings, key)
		m.bearings = append(m.bearings, 0)
		copy(m.bearings[i+1:], m.bearings[i:])
		m.bearings[i] = key
	}
	m.profiles[key] = p
}

// Profiles returns the stored profiles in bearing order.
func (m *BearingProfileMap) Profiles() []*Profile {
	out := make([]*Profile, 0, len(m.bearings))
	for _, b := range m.bearings {
		out = append(out, m.profiles[b])
	}
	return out
}

// GetProfileByBearing returns the profile whose slot covers the given
// bearing, or nil if no slot matches.
func (m *BearingProfileMap) GetProfileByBearing(bearingRad float64) *Profile {
	if key, ok := m.slot(bearingRad); ok {
		return m.profiles[key]
	}
	return nil
}

// SlotBearing returns the stored bearing of the slot covering the given
// bearing, or the normalized input when no slot matches.
func (m *BearingProfileMap) SlotBearing(bearingRad float64) float64 {
	if key, ok := m.slot(bearingRad); ok {
		return key
	}
	return WrapTwoPi(bearingRad)
}

func (m *BearingProfileMap) slot(bearingRad float64) (float64, bool) {
	if len(m.bearings) == 0 {
		return 0, false
	}
	in := WrapTwoPi(bearingRad)
	i := sort.SearchFloat64s(m.bearings, in)

	// the slot at or just past the query
	if i < len(m.bearings) && m.covers(in, m.bearings[i]) {
		return m.bearings[i], true
	}
	// past the highest slot: the lowest slot may cover across 2pi
	if i == len(m.bearings) && m.covers(in, m.bearings[0]+2*math.Pi) {
		return m.bearings[0], true
	}
	// the slot just before the query
	if i > 0 && m.covers(in, m.bearings[i-1]) {
		return m.bearings[i-1], true
	}
	// before the lowest slot: the highest slot may cover across 0
	if i == 0 && m.covers(in, m.bearings[len(m.bearings)-1]-2*math.Pi) {
		return m.bearings[len(m.bearings)-1], true
	}
	return 0, false
}

// covers reports whether the slot stored at WrapTwoPi(slotBearing) covers the
// query. slotBearing may be shifted by 2pi for wraparound comparisons.
func (m *BearingProfileMap) covers(query, slotBearing float64) bool {
	p := m.profiles[WrapTwoPi(slotBearing)]
	if p == nil {
		return false
	}
	return math.Abs(query-slotBearing) <= p.HalfBeamWidth()+slotEpsilon
}
