// Package lut provides uniform-step lookup table containers for sampled
// propagation data, with fractional-index helpers and bilinear
// interpolation that understands "no data" sentinel cells.
package lut

import "fmt"

// Table1D is a one-dimensional lookup table with a uniform step size.
// Values are stored as signed 16-bit scaled integers, exactly as ingested;
// callers apply their own scale factor when converting to physical units.
// Tables are created once at load time and read-only afterwards.
type Table1D struct {
	min, max float64
	step     float64
	values   []int16
}

// NewTable1D allocates a table spanning [min, max] with count samples.
// count must be at least 1 and max must exceed min.
func NewTable1D(min, max float64, count int) (*Table1D, error) {
	if count == 0 || max <= min {
		return nil, fmt.Errorf("lut: invalid 1D axis [%g, %g] count %d", min, max, count)
	}
	t := &Table1D{min: min, max: max, values: make([]int16, count)}
	if count > 1 {
		t.step = (max - min) / float64(count-1)
	}
	return t, nil
}

func (t *Table1D) Min() float64  { return t.min }
func (t *Table1D) Max() float64  { return t.max }
func (t *Table1D) Step() float64 { return t.step }
func (t *Table1D) Count() int    { return len(t.values) }

// Value returns the sample at index i.
func (t *Table1D) Value(i int) (int16, error) {
	if i < 0 || i >= len(t.values) {
		return 0, fmt.Errorf("lut: 1D index %d out of range [0, %d)", i, len(t.values))
	}
	return t.values[i], nil
}

// SetValue stores a sample at index i. Used only during loading.
func (t *Table1D) SetValue(i int, v int16) error {
	if i < 0 || i >= len(t.values) {
		return fmt.Errorf("lut: 1D index %d out of range [0, %d)", i, len(t.values))
	}
	t.values[i] = v
	return nil
}

// Table2D is a two-dimensional lookup table with a uniform step in each
// axis. By convention in this module x indexes height and y indexes range.
// The degenerate single-column case (maxX == minX or numX == 1) is allowed
// and behaves as a one-dimensional table along y, with stepX == 0.
type Table2D struct {
	minX, maxX, stepX float64
	minY, maxY, stepY float64
	numX, numY        int
	values            []int16 // row-major: x*numY + y
}

// NewTable2D allocates a table with numX columns over [minX, maxX] and
// numY rows over [minY, maxY].
func NewTable2D(minX, maxX float64, numX int, minY, maxY float64, numY int) (*Table2D, error) {
	if numX == 0 || numY == 0 || maxX < minX || maxY <= minY {
		return nil, fmt.Errorf("lut: invalid 2D axes x[%g, %g]x%d y[%g, %g]x%d",
			minX, maxX, numX, minY, maxY, numY)
	}
	t := &Table2D{
		minX: minX, maxX: maxX, numX: numX,
		minY: minY, maxY: maxY, numY: numY,
		values: make([]int16, numX*numY),
	}
	if maxX != minX && numX > 1 {
		t.stepX = (maxX - minX) / float64(numX-1)
	}
	if numY > 1 {
		t.stepY = (maxY - minY) / float64(numY-1)
	}
	return t, nil
}

func (t *Table2D) MinX() float64  { return t.minX }
func (t *Table2D) MaxX() float64  { return t.maxX }
func (t *Table2D) StepX() float64 { return t.stepX }
func (t *Table2D) NumX() int      { return t.numX }
func (t *Table2D) MinY() float64  { return t.minY }
func (t *Table2D) MaxY() float64  { return t.maxY }
func (t *Table2D) StepY() float64 { return t.stepY }
func (t *Table2D) NumY() int      { return t.numY }

// Value returns the sample at (xIndex, yIndex).
func (t *Table2D) Value(xIndex, yIndex int) (int16, error) {
	if xIndex < 0 || xIndex >= t.numX || yIndex < 0 || yIndex >= t.numY {
		return 0, fmt.Errorf("lut: 2D index (%d, %d) out of range (%d, %d)",
			xIndex, yIndex, t.numX, t.numY)
	}
	return t.values[xIndex*t.numY+yIndex], nil
}

// SetValue stores a sample at (xIndex, yIndex). Used only during loading.
func (t *Table2D) SetValue(xIndex, yIndex int, v int16) error {
	if xIndex < 0 || xIndex >= t.numX || yIndex < 0 || yIndex >= t.numY {
		return fmt.Errorf("lut: 2D index (%d, %d) out of range (%d, %d)",
			t.numX, t.numY, xIndex, yIndex)
	}
	t.values[xIndex*t.numY+yIndex] = v
	return nil
}

// at is the unchecked accessor for interpolation paths that have already
// validated their bracket.
func (t *Table2D) at(xIndex, yIndex int) int16 {
	return t.values[xIndex*t.numY+yIndex]
}

// Index computes the fractional index of exact on an axis starting at min
// with the given step. The result is not clamped; callers decide how to
// treat out-of-range values.
func Index(min, step, exact float64) float64 {
	if step == 0 {
		return 0
	}
	return (exact - min) / step
}

// LowValue truncates the fractional index toward the lower sample.
func LowValue(min, step, exact float64) int {
	return int(Index(min, step, exact))
}

// HighValue rounds the fractional index up to the higher sample.
func HighValue(min, step, exact float64) int {
	idx := Index(min, step, exact)
	hi := int(idx)
	if float64(hi) < idx {
		hi++
	}
	return hi
}

// NearValue rounds the fractional index to the nearest sample.
func NearValue(min, step, exact float64) int {
	return int(Index(min, step, exact) + 0.5)
}
