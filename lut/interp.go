package lut

// Interp1Func combines the two bracketing samples of a 1D lookup.
type Interp1Func func(lo, hi int16, xLow, x, xHigh float64) float64

// Linear is the standard linear Interp1Func.
func Linear(lo, hi int16, xLow, x, xHigh float64) float64 {
	if xHigh == xLow {
		return float64(lo)
	}
	frac := (x - xLow) / (xHigh - xLow)
	return float64(lo) + (float64(hi)-float64(lo))*frac
}

// Interpolate locates the bracket containing exact and applies fn. The
// query is clamped to the table's axis, and the low bracket index is
// clamped to Count-2 so the bracket never runs past the table.
func (t *Table1D) Interpolate(exact float64, fn Interp1Func) float64 {
	if len(t.values) == 1 {
		return float64(t.values[0])
	}
	if exact < t.min {
		exact = t.min
	} else if exact > t.max {
		exact = t.max
	}
	lo := int(Index(t.min, t.step, exact))
	if lo >= len(t.values)-1 {
		lo = len(t.values) - 2
	}
	xLow := t.min + t.step*float64(lo)
	return fn(t.values[lo], t.values[lo+1], xLow, exact, xLow+t.step)
}

// BilinearFunc combines the four corners of a 2D interpolation cell.
// Corner order follows the sampling convention: ll=(x0,y0), lr=(x1,y0),
// ur=(x1,y1), ul=(x0,y1).
type BilinearFunc func(ll, lr, ur, ul int16, xLow, x, xHigh, yLow, y, yHigh float64) float64

// Bilinear is the standard bilinear BilinearFunc.
func Bilinear(ll, lr, ur, ul int16, xLow, x, xHigh, yLow, y, yHigh float64) float64 {
	xFrac := 0.0
	if xHigh != xLow {
		xFrac = (x - xLow) / (xHigh - xLow)
	}
	yFrac := 0.0
	if yHigh != yLow {
		yFrac = (y - yLow) / (yHigh - yLow)
	}
	bottom := float64(ll) + (float64(lr)-float64(ll))*xFrac
	top := float64(ul) + (float64(ur)-float64(ul))*xFrac
	return bottom + (top-bottom)*yFrac
}

// Interpolate locates the 2x2 cell containing (x, y) and applies fn.
// Queries are clamped to the table's axes. A degenerate single-column
// table interpolates along y only, and a single-row table along x only.
func (t *Table2D) Interpolate(x, y float64, fn BilinearFunc) float64 {
	lowX, lowY, x0, y0 := t.bracket(x, y)
	if x < t.minX {
		x = t.minX
	} else if x > t.maxX {
		x = t.maxX
	}
	if y < t.minY {
		y = t.minY
	} else if y > t.maxY {
		y = t.maxY
	}
	hiX := lowX
	if t.numX > 1 {
		hiX = lowX + 1
	}
	hiY := lowY
	if t.numY > 1 {
		hiY = lowY + 1
	}
	return fn(t.at(lowX, lowY), t.at(hiX, lowY), t.at(hiX, hiY), t.at(lowX, hiY),
		x0, x, x0+t.stepX, y0, y, y0+t.stepY)
}

// bracket returns the low corner indices and coordinates of the cell
// containing the clamped query point.
func (t *Table2D) bracket(x, y float64) (lowX, lowY int, x0, y0 float64) {
	if x < t.minX {
		x = t.minX
	} else if x > t.maxX {
		x = t.maxX
	}
	if y < t.minY {
		y = t.minY
	} else if y > t.maxY {
		y = t.maxY
	}
	lowX = int(Index(t.minX, t.stepX, x))
	if lowX >= t.numX-1 {
		lowX = t.numX - 1
		if t.numX > 1 {
			lowX--
		}
	}
	lowY = int(Index(t.minY, t.stepY, y))
	if lowY >= t.numY-1 {
		lowY = t.numY - 1
		if t.numY > 1 {
			lowY--
		}
	}
	x0 = t.minX + t.stepX*float64(lowX)
	y0 = t.minY + t.stepY*float64(lowY)
	return lowX, lowY, x0, y0
}

// noDataEdgeFraction is how close (as a fraction of the cell) a query has
// to sit to a cell edge before two missing corners on that edge force a
// "no value" result instead of a repaired interpolation.
const noDataEdgeFraction = 0.1

// InterpolateWithNoData interpolates like Interpolate but treats any
// corner value at or below noData as missing. With zero missing corners
// the result matches Interpolate exactly. With all four corners missing
// there is no value. With one to three missing corners, each missing
// corner is repaired by copying its nearest valid neighbor, preferring
// the neighbor along whichever axis the query point sits nearer a cell
// edge (y-closeness wins ties over x), falling back to the other axis
// and then the diagonal. If the query point is within 10% of a cell edge
// and both corners on that edge are missing, the cell is rejected rather
// than extrapolated from the far side.
//
// The returned bool reports whether a value was available.
func (t *Table2D) InterpolateWithNoData(x, y float64, noData int16) (float64, bool) {
	lowX, lowY, x0, y0 := t.bracket(x, y)
	if x < t.minX {
		x = t.minX
	} else if x > t.maxX {
		x = t.maxX
	}
	if y < t.minY {
		y = t.minY
	} else if y > t.maxY {
		y = t.maxY
	}
	hiX := lowX
	if t.numX > 1 {
		hiX = lowX + 1
	}
	hiY := lowY
	if t.numY > 1 {
		hiY = lowY + 1
	}

	// Corner layout per BilinearFunc: ll, lr, ur, ul.
	corners := [4]int16{
		t.at(lowX, lowY), t.at(hiX, lowY), t.at(hiX, hiY), t.at(lowX, hiY),
	}
	missing := [4]bool{}
	missingCount := 0
	for i, v := range corners {
		if v <= noData {
			missing[i] = true
			missingCount++
		}
	}

	if missingCount == 0 {
		return Bilinear(corners[0], corners[1], corners[2], corners[3],
			x0, x, x0+t.stepX, y0, y, y0+t.stepY), true
	}
	if missingCount == 4 {
		return 0, false
	}

	xFrac := 0.0
	if t.stepX != 0 {
		xFrac = (x - x0) / t.stepX
	}
	yFrac := 0.0
	if t.stepY != 0 {
		yFrac = (y - y0) / t.stepY
	}

	// Reject rather than extrapolate when the query hugs an edge whose
	// corners are both missing.
	const ll, lr, ur, ul = 0, 1, 2, 3
	switch {
	case yFrac <= noDataEdgeFraction && missing[ll] && missing[lr]:
		return 0, false
	case yFrac >= 1-noDataEdgeFraction && missing[ul] && missing[ur]:
		return 0, false
	case xFrac <= noDataEdgeFraction && missing[ll] && missing[ul]:
		return 0, false
	case xFrac >= 1-noDataEdgeFraction && missing[lr] && missing[ur]:
		return 0, false
	}

	// xNeighbor[i] shares the y edge with corner i; yNeighbor[i] shares
	// the x edge. The diagonal is the remaining corner.
	xNeighbor := [4]int{lr, ll, ul, ur}
	yNeighbor := [4]int{ul, ur, lr, ll}

	preferY := closeness(yFrac) <= closeness(xFrac)

	repaired := corners
	for i := range corners {
		if !missing[i] {
			continue
		}
		first, second := yNeighbor[i], xNeighbor[i]
		if !preferY {
			first, second = xNeighbor[i], yNeighbor[i]
		}
		diag := 6 - i - first - second
		switch {
		case !missing[first]:
			repaired[i] = corners[first]
		case !missing[second]:
			repaired[i] = corners[second]
		case !missing[diag]:
			repaired[i] = corners[diag]
		default:
			// Unreachable with fewer than four missing corners, but a
			// wrong repair here would be a silent numeric error.
			return 0, false
		}
	}

	return Bilinear(repaired[0], repaired[1], repaired[2], repaired[3],
		x0, x, x0+t.stepX, y0, y, y0+t.stepY), true
}

// closeness measures how near a cell-relative fraction is to either edge.
func closeness(frac float64) float64 {
	if frac > 0.5 {
		return 1 - frac
	}
	return frac
}
