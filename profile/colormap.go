package profile

import "sort"

// Color is an RGBA tuple with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// ColorProvider maps a provider value to a display color.
type ColorProvider interface {
	ColorFor(value float64) Color
}

type colorStop struct {
	value float32
	color Color
}

// GradientColorProvider maps values to colors through a sorted set of
// gradient stops. Below the first stop it returns the first color, above the
// last stop the last color. In discrete mode each stop's color holds until
// the next stop; otherwise colors blend linearly between stops.
type GradientColorProvider struct {
	stops    []colorStop
	discrete bool
}

// NewGradientColorProvider builds a provider from a value-to-color map.
func NewGradientColorProvider(colors map[float32]Color, discrete bool) *GradientColorProvider {
	g := &GradientColorProvider{discrete: discrete}
	for v, c := range colors {
		g.stops = append(g.stops, colorStop{value: v, color: c})
	}
	sort.Slice(g.stops, func(i, j int) bool { return g.stops[i].value < g.stops[j].value })
	return g
}

func (g *GradientColorProvider) ColorFor(value float64) Color {
	if len(g.stops) == 0 {
		return Color{1, 1, 1, 1}
	}
	v := float32(value)
	if v <= g.stops[0].value {
		return g.stops[0].color
	}
	last := len(g.stops) - 1
	if v >= g.stops[last].value {
		return g.stops[last].color
	}
	hi := sort.Search(len(g.stops), func(i int) bool { return g.stops[i].value > v })
	lo := hi - 1
	if g.discrete {
		return g.stops[lo].color
	}
	span := g.stops[hi].value - g.stops[lo].value
	if span <= 0 {
		return g.stops[lo].color
	}
	f := (v - g.stops[lo].value) / span
	return lerpColor(g.stops[lo].color, g.stops[hi].color, f)
}

func lerpColor(a, b Color, f float32) Color {
	return Color{
		R: a.R + (b.R-a.R)*f,
		G: a.G + (b.G-a.G)*f,
		B: a.B + (b.B-a.B)*f,
		A: a.A + (b.A-a.A)*f,
	}
}

// DefaultLossColors is the stock gradient for loss data, keyed in dB.
func DefaultLossColors() map[float32]Color {
	return map[float32]Color{
		0.0:   {1, 0, 0, 1},
		110.0: {1, 1, 0, 1},
		115.0: {1, 0, 1, 1},
		120.0: {0, 0, 1, 1},
		125.0: {0, 1, 0, 1},
		130.0: {1, 0.5, 0, 1},
		135.0: {0, 0.5, 0.5, 1},
		140.0: {0, 0.5, 0, 1},
		145.0: {0, 0, 0.5, 1},
		150.0: {0, 0.75, 0.75, 1},
		155.0: {0, 1, 1, 1},
		160.0: {0.5, 0, 0.5, 1},
	}
}

// DefaultComplexColors is the stock gradient shared by the SNR, CNR, PPF and
// one-way power displays.
func DefaultComplexColors() map[float32]Color {
	return map[float32]Color{
		101.0:  {1, 0, 0, 1},
		100.0:  {1, 1, 0, 1},
		80.0:   {1, 0, 1, 1},
		60.0:   {0, 0, 1, 1},
		40.0:   {0, 1, 0, 1},
		20.0:   {1, 0.5, 0, 1},
		0.0:    {0, 0.5, 0.5, 1},
		-20.0:  {0, 0.5, 0, 1},
		-40.0:  {0, 0, 0.5, 1},
		-60.0:  {0.75, 0.75, 0.75, 1},
		-80.0:  {0, 1, 1, 1},
		-100.0: {0.5, 0, 0.5, 1},
	}
}

// DefaultColors is the stock gradient used when no type-specific map is
// registered, suited to percentage quantities like POD.
func DefaultColors() map[float32]Color {
	return map[float32]Color{
		100.0: {1, 1, 1, 1},
		90.0:  {1, 0, 0, 1},
		80.0:  {1, 1, 0, 1},
		70.0:  {1, 0, 1, 1},
		60.0:  {0, 0, 1, 1},
		50.0:  {0, 1, 0, 1},
		40.0:  {1, 0.5, 0, 1},
		30.0:  {0, 0.5, 0.5, 1},
		20.0:  {0, 0.5, 0, 1},
		10.0:  {0, 0, 0.5, 1},
		0.0:   {0.75, 0.75, 0.75, 1},
	}
}
