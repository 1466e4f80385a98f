package profile

import "math"

// Voxel calculation results returned by VoxelProcessor.CalculateVoxel.
const (
	// VoxelInvalid means no voxel can be produced at this range index and
	// emission must stop.
	VoxelInvalid = -1
	// VoxelOK means a valid voxel was produced.
	VoxelOK = 0
	// VoxelLast means a valid voxel was produced that reaches the data
	// ceiling; it should be the last voxel drawn.
	VoxelLast = 1
)

// VoxelRange describes the near and far range edges of a voxel.
type VoxelRange struct {
	NearValue float64
	FarValue  float64
	NearIndex int
	FarIndex  int
}

// VoxelHeight describes the bottom and top height edges of one range edge
// of a voxel.
type VoxelHeight struct {
	BottomValue float64
	TopValue    float64
	BottomIndex int
	TopIndex    int
}

// VoxelIndexCache holds the four vertex indices of a voxel's far edge so the
// next voxel along the range axis can reuse them as its near edge instead of
// emitting duplicate vertices. The cache must be invalidated whenever a voxel
// is skipped, since the shared edge no longer exists in the vertex stream.
type VoxelIndexCache struct {
	I2, I3, I6, I7 uint32
}

// VoxelProcessor computes the extents of successive voxels along a profile's
// range axis for the RAE draw mode.
type VoxelProcessor interface {
	// Valid reports whether the backing data can produce voxels at all.
	Valid() bool

	// CalculateVoxel computes the range edges and the near/far height
	// edges of the voxel spanning rangeIndex to rangeIndex+1. The status
	// is VoxelInvalid, VoxelOK or VoxelLast.
	CalculateVoxel(rangeIndex int) (VoxelRange, VoxelHeight, VoxelHeight, int)

	// SetIndexCache records the far-edge vertex indices of the voxel just
	// emitted.
	SetIndexCache(i2, i3, i6, i7 uint32)

	// ClearIndexCache marks the cache invalid.
	ClearIndexCache()

	// IndexCache returns the cached far-edge indices, if valid.
	IndexCache() (VoxelIndexCache, bool)
}

// rangeHeightVoxels derives each voxel's bottom height from the line
// height + range*ratio and snaps it to the height grid. The top edge is the
// next grid row up, clamped at the data ceiling.
type rangeHeightVoxels struct {
	data       *CompositeProvider
	height     float64
	ratio      float64
	cache      VoxelIndexCache
	cacheValid bool
}

// NewRAHVoxelProcessor returns a processor whose voxel heights climb at a
// fixed height-to-range ratio from the given base height.
func NewRAHVoxelProcessor(data *CompositeProvider, heightMeters, heightRangeRatio float64) VoxelProcessor {
	return &rangeHeightVoxels{data: data, height: heightMeters, ratio: heightRangeRatio}
}

// NewRAEVoxelProcessor returns a processor whose voxel heights follow range
// times the sine of the elevation angle, treating the data's range axis as
// slant range.
func NewRAEVoxelProcessor(data *CompositeProvider, heightMeters, elevAngleRad float64) VoxelProcessor {
	return &rangeHeightVoxels{data: data, height: heightMeters, ratio: math.Sin(elevAngleRad)}
}

func (g *rangeHeightVoxels) Valid() bool {
	if g.data == nil {
		return false
	}
	return g.data.RangeCount() >= 2 && g.data.RangeStep() > 0 && g.data.HeightCount() > 0
}

func (g *rangeHeightVoxels) CalculateVoxel(rangeIndex int) (VoxelRange, VoxelHeight, VoxelHeight, int) {
	var vr VoxelRange
	var nearHgt, farHgt VoxelHeight

	numRanges := g.data.RangeCount()
	if rangeIndex >= numRanges-1 || rangeIndex < 0 {
		return vr, nearHgt, farHgt, VoxelInvalid
	}
	rangeStep := g.data.RangeStep()
	vr.NearIndex = rangeIndex
	vr.FarIndex = rangeIndex + 1
	vr.NearValue = g.data.MinRange() + rangeStep*float64(rangeIndex)
	vr.FarValue = vr.NearValue + rangeStep

	var ok bool
	if nearHgt, ok = g.heightEdge(vr.NearValue); !ok {
		return vr, nearHgt, farHgt, VoxelInvalid
	}
	if farHgt, ok = g.heightEdge(vr.FarValue); !ok {
		return vr, nearHgt, farHgt, VoxelInvalid
	}

	// reaching the top height row means farther voxels would only repeat it
	numHeights := g.data.HeightCount()
	if nearHgt.TopIndex >= numHeights-1 || farHgt.TopIndex >= numHeights-1 {
		return vr, nearHgt, farHgt, VoxelLast
	}
	return vr, nearHgt, farHgt, VoxelOK
}

// heightEdge snaps the processor's height line at the given range onto the
// data's height grid.
func (g *rangeHeightVoxels) heightEdge(rng float64) (VoxelHeight, bool) {
	var vh VoxelHeight
	numHeights := g.data.HeightCount()
	bottomIndex := g.data.HeightIndex(g.height + rng*g.ratio)
	if bottomIndex == InvalidHeightIndex || bottomIndex >= numHeights {
		return vh, false
	}
	minHeight := g.data.MinHeight()
	heightStep := g.data.HeightStep()
	vh.BottomIndex = bottomIndex
	vh.BottomValue = minHeight + heightStep*float64(bottomIndex)
	vh.TopIndex = bottomIndex + 1
	if vh.TopIndex > numHeights-1 {
		vh.TopIndex = numHeights - 1
	}
	vh.TopValue = minHeight + heightStep*float64(vh.TopIndex)
	return vh, true
}

func (g *rangeHeightVoxels) SetIndexCache(i2, i3, i6, i7 uint32) {
	g.cache = VoxelIndexCache{I2: i2, I3: i3, I6: i6, I7: i7}
	g.cacheValid = true
}

func (g *rangeHeightVoxels) ClearIndexCache() {
	g.cacheValid = false
}

func (g *rangeHeightVoxels) IndexCache() (VoxelIndexCache, bool) {
	if !g.cacheValid {
		return VoxelIndexCache{}, false
	}
	return g.cache, true
}
