package profile

import (
	"errors"
	"math"
	"sort"
)

var errNoThicknessReference = errors.New("profile: no profile available to derive slot thickness")

// Manager owns one BearingProfileMap per simulation timestamp and the
// display state shared by every profile in them. It selects the current map
// by time, pushes the active threshold type, and recomputes per-profile
// visibility from the active bearing and the history arc.
type Manager struct {
	ctx *Context

	history   float64 // visibility arc width, radians
	bearing   float64
	displayOn bool
	threshold ThresholdType

	times   []float64 // sorted keys of maps
	maps    map[float64]*BearingProfileMap
	current *BearingProfileMap

	colorProvider ColorProvider
}

// NewManager returns a manager with an empty map at time 0 and the default
// display settings.
func NewManager() *Manager {
	m := &Manager{
		ctx:     NewContext(),
		history: 15.0 * math.Pi / 180.0,
		maps:    make(map[float64]*BearingProfileMap),
	}
	m.current = NewBearingProfileMap()
	m.maps[0] = m.current
	m.times = []float64{0}
	return m
}

// Context returns the display context shared with every profile. Callers
// must mutate it through the manager's setters so profiles get marked dirty.
func (m *Manager) Context() *Context { return m.ctx }

// AddProfileMap creates an empty bearing map at the given time if one does
// not already exist.
func (m *Manager) AddProfileMap(time float64) {
	if _, exists := m.maps[time]; exists {
		return
	}
	m.maps[time] = NewBearingProfileMap()
	i := sort.SearchFloat64s(m.times, time)
	m.times = append(m.times, 0)
	copy(m.times[i+1:], m.times[i:])
	m.times[i] = time
}

// RemoveProfileMap discards the bearing map at the given time.
func (m *Manager) RemoveProfileMap(time float64) {
	pm, exists := m.maps[time]
	if !exists {
		return
	}
	delete(m.maps, time)
	i := sort.SearchFloat64s(m.times, time)
	m.times = append(m.times[:i], m.times[i+1:]...)
	if m.current == pm {
		m.Update(time)
	}
}

// Update selects the bearing map keyed at the first time >= the given time,
// or the last map when the time is past every key.
func (m *Manager) Update(time float64) {
	if len(m.times) == 0 {
		m.current = NewBearingProfileMap()
		m.maps[0] = m.current
		m.times = []float64{0}
		return
	}
	i := sort.SearchFloat64s(m.times, time)
	if i == len(m.times) {
		i--
	}
	m.current = m.maps[m.times[i]]
}

// ProfileMapTimes returns the timestamps holding bearing maps, in order.
func (m *Manager) ProfileMapTimes() []float64 {
	out := make([]float64, len(m.times))
	copy(out, m.times)
	return out
}

func (m *Manager) Display() bool { return m.displayOn }

// SetDisplay turns rendering on or off. Turning display off pushes
// ThresholdNone to every profile, hiding them without discarding data.
func (m *Manager) SetDisplay(on bool) {
	if m.displayOn == on {
		return
	}
	m.displayOn = on
	m.SetThresholdType(m.threshold)
	m.updateVisibility()
}

func (m *Manager) ThresholdType() ThresholdType { return m.threshold }

// SetThresholdType records the display quantity and pushes it to every
// profile in the current map. While display is off the profiles receive
// ThresholdNone instead.
func (m *Manager) SetThresholdType(t ThresholdType) {
	m.threshold = t
	push := t
	if !m.displayOn {
		push = ThresholdNone
	}
	for _, p := range m.current.Profiles() {
		p.SetThresholdType(push)
	}
}

func (m *Manager) Alpha() float32 { return m.ctx.Alpha }

// SetAlpha adjusts display transparency. Alpha is applied at draw time, so
// no rebuild is needed.
func (m *Manager) SetAlpha(alpha float32) {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	m.ctx.Alpha = alpha
}

func (m *Manager) History() float64 { return m.history }

// SetHistory sets the visibility arc width in radians, clamped to [0, 2pi].
func (m *Manager) SetHistory(history float64) {
	if m.history == history {
		return
	}
	if history < 0 {
		history = 0
	} else if history > 2*math.Pi {
		history = 2 * math.Pi
	}
	m.history = history
	m.updateVisibility()
}

func (m *Manager) AGL() bool { return m.ctx.AGL }

func (m *Manager) SetAGL(agl bool) {
	if m.ctx.AGL == agl {
		return
	}
	m.ctx.AGL = agl
	m.MarkDirty()
}

func (m *Manager) Mode() DrawMode { return m.ctx.Mode }

// SetMode switches the draw mode for every profile. Cached texture images
// are dropped since only the textured mode maintains them.
func (m *Manager) SetMode(mode DrawMode) {
	if m.ctx.Mode == mode {
		return
	}
	m.ctx.Mode = mode
	for _, p := range m.current.Profiles() {
		p.clearImage()
	}
	m.MarkDirty()
}

func (m *Manager) DisplayThickness() float64 { return m.ctx.DisplayThickness }

func (m *Manager) SetDisplayThickness(thickness float64) {
	if m.ctx.DisplayThickness == thickness {
		return
	}
	m.ctx.DisplayThickness = thickness
	m.MarkDirty()
}

// SetThicknessBySlots sets the display thickness as a number of height
// slots, using the height step of the first profile in the current map.
func (m *Manager) SetThicknessBySlots(numSlots int) error {
	if m.current.Empty() || numSlots < 1 {
		return errNoThicknessReference
	}
	first := m.current.Profiles()[0]
	data := first.DataProvider()
	if data == nil {
		return errNoThicknessReference
	}
	// subtract one so the top slot boundary does not add an extra sample
	m.SetDisplayThickness(float64(numSlots-1) * data.HeightStep())
	return nil
}

func (m *Manager) Bearing() float64 { return m.bearing }

// SetBearing sets the active bearing the history arc is centered on.
func (m *Manager) SetBearing(bearingRad float64) {
	if m.bearing == bearingRad {
		return
	}
	m.bearing = bearingRad
	m.updateVisibility()
}

func (m *Manager) Height() float64 { return m.ctx.HeightMeters }

func (m *Manager) SetHeight(heightMeters float64) {
	if m.ctx.HeightMeters == heightMeters {
		return
	}
	m.ctx.HeightMeters = heightMeters
	m.MarkDirty()
}

func (m *Manager) RefLat() float64 { return m.ctx.RefLatRad }
func (m *Manager) RefLon() float64 { return m.ctx.RefLonRad }
func (m *Manager) RefAlt() float64 { return m.ctx.RefAltMeters }

// SetRefCoord moves the profile origin.
func (m *Manager) SetRefCoord(latRad, lonRad, altMeters float64) {
	if m.ctx.RefLatRad == latRad && m.ctx.RefLonRad == lonRad && m.ctx.RefAltMeters == altMeters {
		return
	}
	m.ctx.RefLatRad = latRad
	m.ctx.RefLonRad = lonRad
	m.ctx.RefAltMeters = altMeters
	m.MarkDirty()
}

func (m *Manager) SphericalEarth() bool { return m.ctx.SphericalEarth }

func (m *Manager) SetSphericalEarth(spherical bool) {
	if m.ctx.SphericalEarth == spherical {
		return
	}
	m.ctx.SphericalEarth = spherical
	m.MarkDirty()
}

func (m *Manager) ElevAngle() float64 { return m.ctx.ElevAngleRad }

func (m *Manager) SetElevAngle(elevAngleRad float64) {
	if m.ctx.ElevAngleRad == elevAngleRad {
		return
	}
	m.ctx.ElevAngleRad = elevAngleRad
	m.MarkDirty()
}

// GetProfileByBearing returns the current map's profile covering the given
// bearing, or nil.
func (m *Manager) GetProfileByBearing(bearingRad float64) *Profile {
	return m.current.GetProfileByBearing(bearingRad)
}

// AddProfile stores a profile in the current map, replacing any profile at
// the same bearing, and applies the manager's display state to it.
func (m *Manager) AddProfile(p *Profile) {
	if p == nil {
		return
	}
	if m.displayOn {
		p.SetThresholdType(m.threshold)
	} else {
		p.SetThresholdType(ThresholdNone)
	}
	m.current.AddProfile(p)
	m.updateVisibility()
}

// updateVisibility recomputes which profiles in the current map fall inside
// the history arc around the active bearing. Skipped entirely while display
// is off.
func (m *Manager) updateVisibility() {
	if !m.displayOn {
		return
	}
	minBearing := m.current.SlotBearing(m.bearing - m.history/2)
	maxBearing := m.current.SlotBearing(m.bearing + m.history/2)
	// the arc wraps 2pi back to 0 when the max lands below the min, or
	// when the arc spans the full circle
	addTwoPi := false
	if minBearing >= maxBearing || m.history >= 2*math.Pi-1e-9 {
		addTwoPi = true
		maxBearing += 2 * math.Pi
	}

	for _, p := range m.current.Profiles() {
		b := p.Bearing()
		visible := b >= minBearing && b <= maxBearing
		if addTwoPi && !visible {
			shifted := b + 2*math.Pi
			visible = shifted >= minBearing && shifted <= maxBearing
		}
		p.SetVisible(visible)
	}
}

// MarkDirty schedules a rebuild of every profile in the current map.
func (m *Manager) MarkDirty() {
	for _, p := range m.current.Profiles() {
		p.MarkDirty()
	}
}

func (m *Manager) ColorProvider() ColorProvider { return m.colorProvider }

// SetColorProvider binds the color mapping applied to profile values.
func (m *Manager) SetColorProvider(cp ColorProvider) {
	m.colorProvider = cp
}
