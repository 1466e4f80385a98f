package profile

import (
	"math"
	"sort"
)

// derived delegates all grid metadata to a template provider so that a
// derived quantity is always dimensionally consistent with its source.
type derived struct {
	template DataProvider
}

func (d derived) RangeCount() int     { return d.template.RangeCount() }
func (d derived) RangeStep() float64  { return d.template.RangeStep() }
func (d derived) MinRange() float64   { return d.template.MinRange() }
func (d derived) MaxRange() float64   { return d.template.MaxRange() }
func (d derived) HeightCount() int    { return d.template.HeightCount() }
func (d derived) HeightStep() float64 { return d.template.HeightStep() }
func (d derived) MinHeight() float64  { return d.template.MinHeight() }
func (d derived) MaxHeight() float64  { return d.template.MaxHeight() }

// slantRange is the straight-line distance to a grid sample given its
// ground range and height.
func (d derived) slantRange(heightIndex, rangeIndex int) float64 {
	h := d.MinHeight() + float64(heightIndex)*d.HeightStep()
	r := d.MinRange() + float64(rangeIndex)*d.RangeStep()
	return math.Hypot(h, r)
}

// OneWayPowerProvider derives one-way received power from a PPF
// provider and a bound set of radar parameters.
type OneWayPowerProvider struct {
	derived
	params *RadarParameters
}

// NewOneWayPowerProvider wraps a PPF template provider. params must
// already be finalized.
func NewOneWayPowerProvider(template DataProvider, params *RadarParameters) *OneWayPowerProvider {
	return &OneWayPowerProvider{derived: derived{template: template}, params: params}
}

func (p *OneWayPowerProvider) Type() ThresholdType { return ThresholdOneWayPower }

// OneWayPower computes one-way received power at an interpolated PPF
// sample, with explicit gains. Used by the facade's query path.
func (p *OneWayPowerProvider) OneWayPower(hgtMeters, gndRngMeters, slantRngMeters, xmtGaindB, rcvGaindB float64) float64 {
	ppf, ok := p.template.InterpolateValue(hgtMeters, gndRngMeters)
	if !ok || ppf <= SmallDBCompare {
		return SmallDBVal
	}
	return ReceivedPowerBlake(slantRngMeters, p.params.FreqMHz, p.params.XmitPowerW,
		xmtGaindB, rcvGaindB, 1.0, ppf, p.params.SystemLossdB, true)
}

func (p *OneWayPowerProvider) ValueByIndex(heightIndex, rangeIndex int) float64 {
	ppf := p.template.ValueByIndex(heightIndex, rangeIndex)
	if ppf <= SmallDBCompare {
		return SmallDBVal
	}
	return ReceivedPowerBlake(p.slantRange(heightIndex, rangeIndex), p.params.FreqMHz,
		p.params.XmitPowerW, p.params.AntennaGaindB, p.params.AntennaGaindB, 1.0,
		ppf, p.params.SystemLossdB, true)
}

func (p *OneWayPowerProvider) InterpolateValue(hgtMeters, rngMeters float64) (float64, bool) {
	ppf, ok := p.template.InterpolateValue(hgtMeters, rngMeters)
	if !ok || ppf <= SmallDBCompare {
		return SmallDBVal, false
	}
	slant := math.Hypot(hgtMeters, rngMeters)
	return ReceivedPowerBlake(slant, p.params.FreqMHz, p.params.XmitPowerW,
		p.params.AntennaGaindB, p.params.AntennaGaindB, 1.0, ppf, p.params.SystemLossdB, true), true
}

// TwoWayPowerProvider derives two-way received power from a PPF
// provider via the full radar range equation.
type TwoWayPowerProvider struct {
	derived
	params *RadarParameters
}

// NewTwoWayPowerProvider wraps a PPF template provider.
func NewTwoWayPowerProvider(template DataProvider, params *RadarParameters) *TwoWayPowerProvider {
	return &TwoWayPowerProvider{derived: derived{template: template}, params: params}
}

func (p *TwoWayPowerProvider) Type() ThresholdType { return ThresholdReceivedPower }

// TwoWayPower computes two-way received power at an interpolated PPF
// sample with explicit gains and target cross section.
func (p *TwoWayPowerProvider) TwoWayPower(hgtMeters, gndRngMeters, slantRngMeters, xmtGaindB, rcvGaindB, rcsSqm float64) float64 {
	ppf, ok := p.template.InterpolateValue(hgtMeters, gndRngMeters)
	if !ok || ppf <= SmallDBCompare {
		return SmallDBVal
	}
	return ReceivedPowerBlake(slantRngMeters, p.params.FreqMHz, p.params.XmitPowerW,
		xmtGaindB, rcvGaindB, rcsSqm, ppf, p.params.SystemLossdB, false)
}

// Index-path samples assume a 1 square-meter reference target.
func (p *TwoWayPowerProvider) ValueByIndex(heightIndex, rangeIndex int) float64 {
	ppf := p.template.ValueByIndex(heightIndex, rangeIndex)
	if ppf <= SmallDBCompare {
		return SmallDBVal
	}
	return ReceivedPowerBlake(p.slantRange(heightIndex, rangeIndex), p.params.FreqMHz,
		p.params.XmitPowerW, p.params.AntennaGaindB, p.params.AntennaGaindB, 1.0,
		ppf, p.params.SystemLossdB, false)
}

func (p *TwoWayPowerProvider) InterpolateValue(hgtMeters, rngMeters float64) (float64, bool) {
	ppf, ok := p.template.InterpolateValue(hgtMeters, rngMeters)
	if !ok || ppf <= SmallDBCompare {
		return SmallDBVal, false
	}
	slant := math.Hypot(hgtMeters, rngMeters)
	return ReceivedPowerBlake(slant, p.params.FreqMHz, p.params.XmitPowerW,
		p.params.AntennaGaindB, p.params.AntennaGaindB, 1.0, ppf, p.params.SystemLossdB, false), true
}

// SNRProvider derives signal-to-noise ratio as two-way received power
// minus the radar's computed noise power.
type SNRProvider struct {
	derived
	twoWay *TwoWayPowerProvider
	params *RadarParameters
}

// NewSNRProvider wraps a two-way power provider.
func NewSNRProvider(twoWay *TwoWayPowerProvider, params *RadarParameters) *SNRProvider {
	return &SNRProvider{derived: derived{template: twoWay}, twoWay: twoWay, params: params}
}

func (p *SNRProvider) Type() ThresholdType { return ThresholdSNR }

// SNR computes signal-to-noise at an interpolated sample with explicit
// gains and target cross section.
func (p *SNRProvider) SNR(hgtMeters, gndRngMeters, slantRngMeters, xmtGaindB, rcvGaindB, rcsSqm float64) float64 {
	power := p.twoWay.TwoWayPower(hgtMeters, gndRngMeters, slantRngMeters, xmtGaindB, rcvGaindB, rcsSqm)
	if power <= SmallDBCompare {
		return SmallDBVal
	}
	return power - p.params.NoisePowerdB
}

func (p *SNRProvider) ValueByIndex(heightIndex, rangeIndex int) float64 {
	power := p.twoWay.ValueByIndex(heightIndex, rangeIndex)
	if power <= SmallDBCompare {
		return SmallDBVal
	}
	return power - p.params.NoisePowerdB
}

func (p *SNRProvider) InterpolateValue(hgtMeters, rngMeters float64) (float64, bool) {
	power, ok := p.twoWay.InterpolateValue(hgtMeters, rngMeters)
	if !ok || power <= SmallDBCompare {
		return SmallDBVal, false
	}
	return power - p.params.NoisePowerdB, true
}

// PODVectorSize is the required length of a POD threshold vector: one
// loss threshold per integer percentile of probability of detection.
const PODVectorSize = 100

// PODVector holds 100 negative loss thresholds in non-decreasing order.
// It is shared between providers and immutable after setup.
type PODVector []float64

// PODProvider maps loss samples to a probability of detection percentile
// through a threshold vector.
type PODProvider struct {
	derived
	thresholds PODVector
}

// NewPODProvider wraps a loss template provider with a threshold vector.
func NewPODProvider(template DataProvider, thresholds PODVector) *PODProvider {
	return &PODProvider{derived: derived{template: template}, thresholds: thresholds}
}

func (p *PODProvider) Type() ThresholdType { return ThresholdPOD }

// Loss tables store positive loss in dB; POD thresholds are negative, so
// samples are sign-inverted before the threshold lookup.

func (p *PODProvider) ValueByIndex(heightIndex, rangeIndex int) float64 {
	return p.pod(-p.template.ValueByIndex(heightIndex, rangeIndex))
}

func (p *PODProvider) InterpolateValue(hgtMeters, rngMeters float64) (float64, bool) {
	loss, ok := p.template.InterpolateValue(hgtMeters, rngMeters)
	if !ok {
		return 0, false
	}
	return p.pod(-loss), true
}

// pod converts a negative loss value in dB to a detection percentile in
// [0, 99.9]. Loss below the lowest threshold yields 0; exactly the
// lowest threshold yields 1; at or beyond the highest threshold the
// result saturates at 99.9. Between thresholds the percentile is
// linearly interpolated.
func (p *PODProvider) pod(lossdB float64) float64 {
	v := p.thresholds
	if len(v) != PODVectorSize || lossdB >= 0 {
		return 0
	}
	if lossdB < v[0] {
		return 0
	}
	if lossdB == v[0] {
		return 1.0
	}
	if lossdB >= v[PODVectorSize-1] {
		return 99.9
	}
	// First index whose threshold exceeds the loss; the bracket is
	// [hi-1, hi].
	hi := sort.SearchFloat64s(v, lossdB)
	if v[hi] == lossdB {
		return float64(hi)
	}
	lo := hi - 1
	span := v[hi] - v[lo]
	if span == 0 {
		return float64(lo)
	}
	return float64(lo) + (lossdB-v[lo])/span
}
