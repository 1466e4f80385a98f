package profile

import (
	"github.com/signalsfoundry/rfprop-engine/lut"
)

// DataProvider exposes one sampled physical quantity over a range axis
// and an optional height axis. Range-only providers report a height
// count of 1. Values are in dB, except POD which is a percentage.
type DataProvider interface {
	Type() ThresholdType

	RangeCount() int
	RangeStep() float64
	MinRange() float64
	MaxRange() float64

	HeightCount() int
	HeightStep() float64
	MinHeight() float64
	MaxHeight() float64

	// ValueByIndex returns the sample at the given grid indices.
	ValueByIndex(heightIndex, rangeIndex int) float64

	// InterpolateValue interpolates the quantity at a height and ground
	// range in meters. The bool is false when no value is available at
	// that point (missing data or an unusable cell).
	InterpolateValue(hgtMeters, rngMeters float64) (float64, bool)
}

// Table2DProvider serves a quantity sampled over height and range from a
// two-dimensional lookup table. The provider owns its table; tables are
// never shared between providers.
type Table2DProvider struct {
	typ    ThresholdType
	table  *lut.Table2D
	scale  float64
	noData int16
}

// NewTable2DProvider wraps table as a provider of the given type. scale
// converts raw stored samples to dB (the ingested format stores
// centibels, so loaders pass 0.1). Samples at or below noData are
// treated as missing during interpolation.
func NewTable2DProvider(typ ThresholdType, table *lut.Table2D, scale float64, noData int16) *Table2DProvider {
	return &Table2DProvider{typ: typ, table: table, scale: scale, noData: noData}
}

func (p *Table2DProvider) Type() ThresholdType { return p.typ }

func (p *Table2DProvider) RangeCount() int    { return p.table.NumY() }
func (p *Table2DProvider) RangeStep() float64 { return p.table.StepY() }
func (p *Table2DProvider) MinRange() float64  { return p.table.MinY() }
func (p *Table2DProvider) MaxRange() float64  { return p.table.MaxY() }

func (p *Table2DProvider) HeightCount() int    { return p.table.NumX() }
func (p *Table2DProvider) HeightStep() float64 { return p.table.StepX() }
func (p *Table2DProvider) MinHeight() float64  { return p.table.MinX() }
func (p *Table2DProvider) MaxHeight() float64  { return p.table.MaxX() }

func (p *Table2DProvider) ValueByIndex(heightIndex, rangeIndex int) float64 {
	v, err := p.table.Value(heightIndex, rangeIndex)
	if err != nil {
		return SmallDBVal
	}
	return float64(v) * p.scale
}

func (p *Table2DProvider) InterpolateValue(hgtMeters, rngMeters float64) (float64, bool) {
	v, ok := p.table.InterpolateWithNoData(hgtMeters, rngMeters, p.noData)
	if !ok {
		return SmallDBVal, false
	}
	return v * p.scale, true
}

// Table1DProvider serves a range-only quantity from a one-dimensional
// lookup table, reporting a single height sample so it still satisfies
// the two-axis provider contract.
type Table1DProvider struct {
	typ   ThresholdType
	table *lut.Table1D
	scale float64
}

// NewTable1DProvider wraps table as a range-only provider.
func NewTable1DProvider(typ ThresholdType, table *lut.Table1D, scale float64) *Table1DProvider {
	return &Table1DProvider{typ: typ, table: table, scale: scale}
}

func (p *Table1DProvider) Type() ThresholdType { return p.typ }

func (p *Table1DProvider) RangeCount() int    { return p.table.Count() }
func (p *Table1DProvider) RangeStep() float64 { return p.table.Step() }
func (p *Table1DProvider) MinRange() float64  { return p.table.Min() }
func (p *Table1DProvider) MaxRange() float64  { return p.table.Max() }

func (p *Table1DProvider) HeightCount() int    { return 1 }
func (p *Table1DProvider) HeightStep() float64 { return 0 }
func (p *Table1DProvider) MinHeight() float64  { return 0 }
func (p *Table1DProvider) MaxHeight() float64  { return 0 }

func (p *Table1DProvider) ValueByIndex(_, rangeIndex int) float64 {
	v, err := p.table.Value(rangeIndex)
	if err != nil {
		return SmallDBVal
	}
	return float64(v) * p.scale
}

// InterpolateValue reports the nearest range sample; clutter data is
// kept per range step without smoothing.
func (p *Table1DProvider) InterpolateValue(_, rngMeters float64) (float64, bool) {
	i := lut.NearValue(p.table.Min(), p.table.Step(), rngMeters)
	if i < 0 {
		i = 0
	} else if i >= p.table.Count() {
		i = p.table.Count() - 1
	}
	v, _ := p.table.Value(i)
	return float64(v) * p.scale, true
}
