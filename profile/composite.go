package profile

import "fmt"

// InvalidHeightIndex is returned by HeightIndex when no provider with
// genuine height data is available.
const InvalidHeightIndex = -1

// CompositeProvider aggregates the providers loaded for one bearing, at
// most one per threshold type, behind a single active provider. It also
// designates a height-capable provider so height-indexed queries remain
// valid while a range-only provider (CNR) is active.
//
// A CompositeProvider itself satisfies DataProvider by delegating to the
// active provider.
type CompositeProvider struct {
	providers   []DataProvider
	activeIndex int
	heightIndex int
}

// NewCompositeProvider returns an empty composite with no active
// provider.
func NewCompositeProvider() *CompositeProvider {
	return &CompositeProvider{activeIndex: -1, heightIndex: -1}
}

// AddProvider appends a provider. The first provider added becomes the
// active provider and the height-data provider; later providers claim
// the height-data slot only if none has been chosen and their type is
// not CNR, which carries no height axis.
func (c *CompositeProvider) AddProvider(p DataProvider) error {
	if p == nil {
		return fmt.Errorf("profile: nil provider")
	}
	for _, existing := range c.providers {
		if existing.Type() == p.Type() {
			return fmt.Errorf("profile: provider for %s already registered", p.Type())
		}
	}
	c.providers = append(c.providers, p)
	if c.activeIndex < 0 {
		c.activeIndex = len(c.providers) - 1
	}
	if c.heightIndex < 0 && p.Type() != ThresholdCNR {
		c.heightIndex = len(c.providers) - 1
	}
	return nil
}

// ProviderCount returns the number of registered providers.
func (c *CompositeProvider) ProviderCount() int { return len(c.providers) }

// GetProvider returns the provider of the given type, or nil.
func (c *CompositeProvider) GetProvider(t ThresholdType) DataProvider {
	for _, p := range c.providers {
		if p.Type() == t {
			return p
		}
	}
	return nil
}

// ActiveProvider returns the currently active provider, or nil when none
// is selected.
func (c *CompositeProvider) ActiveProvider() DataProvider {
	if c.activeIndex < 0 || c.activeIndex >= len(c.providers) {
		return nil
	}
	return c.providers[c.activeIndex]
}

// SetActiveProvider selects the active provider by index.
func (c *CompositeProvider) SetActiveProvider(index int) error {
	if index < 0 || index >= len(c.providers) {
		return fmt.Errorf("profile: active provider index %d out of range [0, %d)", index, len(c.providers))
	}
	c.activeIndex = index
	return nil
}

// SetActiveByType selects the active provider by threshold type. When
// the type is absent the active index becomes -1 and ActiveProvider
// returns nil.
func (c *CompositeProvider) SetActiveByType(t ThresholdType) error {
	for i, p := range c.providers {
		if p.Type() == t {
			c.activeIndex = i
			return nil
		}
	}
	c.activeIndex = -1
	return fmt.Errorf("profile: no provider for %s", t)
}

// heightProvider returns the designated height-capable provider, or nil.
func (c *CompositeProvider) heightProvider() DataProvider {
	if c.heightIndex < 0 || c.heightIndex >= len(c.providers) {
		return nil
	}
	return c.providers[c.heightIndex]
}

// HeightIndex converts a height in meters to a grid index on the
// height-capable provider, clamped to [0, HeightCount-1]. It returns
// InvalidHeightIndex only when no provider has height data or the height
// step is not positive.
func (c *CompositeProvider) HeightIndex(hgtMeters float64) int {
	hp := c.heightProvider()
	if hp == nil {
		return InvalidHeightIndex
	}
	step := hp.HeightStep()
	if step <= 0 {
		return InvalidHeightIndex
	}
	idx := int((hgtMeters - hp.MinHeight()) / step)
	if idx < 0 {
		return 0
	}
	if idx >= hp.HeightCount() {
		return hp.HeightCount() - 1
	}
	return idx
}

// DataProvider delegation to the active provider. An empty composite
// reports a zero-sized grid.

func (c *CompositeProvider) Type() ThresholdType {
	if p := c.ActiveProvider(); p != nil {
		return p.Type()
	}
	return ThresholdNone
}

func (c *CompositeProvider) RangeCount() int {
	if p := c.ActiveProvider(); p != nil {
		return p.RangeCount()
	}
	return 0
}

func (c *CompositeProvider) RangeStep() float64 {
	if p := c.ActiveProvider(); p != nil {
		return p.RangeStep()
	}
	return 0
}

func (c *CompositeProvider) MinRange() float64 {
	if p := c.ActiveProvider(); p != nil {
		return p.MinRange()
	}
	return 0
}

func (c *CompositeProvider) MaxRange() float64 {
	if p := c.ActiveProvider(); p != nil {
		return p.MaxRange()
	}
	return 0
}

func (c *CompositeProvider) HeightCount() int {
	if p := c.heightProvider(); p != nil {
		return p.HeightCount()
	}
	return 0
}

func (c *CompositeProvider) HeightStep() float64 {
	if p := c.heightProvider(); p != nil {
		return p.HeightStep()
	}
	return 0
}

func (c *CompositeProvider) MinHeight() float64 {
	if p := c.heightProvider(); p != nil {
		return p.MinHeight()
	}
	return 0
}

func (c *CompositeProvider) MaxHeight() float64 {
	if p := c.heightProvider(); p != nil {
		return p.MaxHeight()
	}
	return 0
}

func (c *CompositeProvider) ValueByIndex(heightIndex, rangeIndex int) float64 {
	if p := c.ActiveProvider(); p != nil {
		return p.ValueByIndex(heightIndex, rangeIndex)
	}
	return SmallDBVal
}

func (c *CompositeProvider) InterpolateValue(hgtMeters, rngMeters float64) (float64, bool) {
	if p := c.ActiveProvider(); p != nil {
		return p.InterpolateValue(hgtMeters, rngMeters)
	}
	return SmallDBVal, false
}
