// Package profile models RF propagation data at a single bearing: lookup
// table backed data providers, the derived physical quantities computed from
// them, and the mesh geometry used to display them.
package profile

import (
	"math"
	"sort"
)

// Tessellation limits for the textured pie-wedge mode.
const (
	maxSegmentLength = 5000.0
	minNumSegments   = 4
	maxNumSegments   = 50
)

// Mesh is the renderable output of a profile rebuild. Vertices are in the
// profile's local frame; Bearing is the rotation about the down axis that
// orients the mesh in the scene. Values carries one scalar per vertex for
// color mapping. Interior no-data samples stay in the buffers so that strip
// topology lines up; the color provider renders them transparent.
type Mesh struct {
	Bearing float64
	Verts   []Vec3
	Values  []float64

	// Origin is the geocentric position of the local frame's tangent
	// point: sphere-earth XYZ in spherical mode, WGS-84 ECEF otherwise.
	Origin Vec3

	// Strips holds triangle-strip index runs into Verts.
	Strips [][]uint32

	// Points marks a point-cloud mesh with no index strips.
	Points bool

	// TexCoords and Image are set only by the textured draw mode.
	TexCoords []Vec2
	Image     *LuminanceImage
}

func (m *Mesh) addStrip(idx []uint32) {
	m.Strips = append(m.Strips, idx)
}

// LuminanceImage is a single-channel float texture of the active provider's
// values, one texel per (range, height) sample.
type LuminanceImage struct {
	Width  int // ranges
	Height int // heights
	Pixels []float32 // row-major, r + h*Width
}

// At returns the texel for the given range and height sample.
func (img *LuminanceImage) At(rangeIndex, heightIndex int) float32 {
	return img.Pixels[rangeIndex+heightIndex*img.Width]
}

// Profile is the renderable propagation fan at one bearing. It owns its mesh
// buffers, references a shared display context, and rebuilds lazily: any
// parameter change marks it dirty, and the next RebuildIfDirty call
// regenerates the geometry for the current draw mode.
type Profile struct {
	bearing       float64
	halfBeamWidth float64

	// beam extents cached from the half beamwidth
	cosTheta0, sinTheta0 float64
	cosTheta1, sinTheta1 float64

	data *CompositeProvider
	ctx  *Context

	// terrain height samples by ground range, for AGL mode
	terrainRanges  []float64
	terrainHeights []float64

	dirty   bool
	visible bool
	mesh    *Mesh

	// cached across rebuilds in the textured mode
	image *LuminanceImage
}

// NewProfile creates a profile at the given bearing. The bearing is
// normalized to [0, 2pi). The context is shared with the owning manager and
// must not be nil.
func NewProfile(bearingRad, halfBeamWidthRad float64, data *CompositeProvider, ctx *Context) *Profile {
	p := &Profile{
		bearing: WrapTwoPi(bearingRad),
		data:    data,
		ctx:     ctx,
		dirty:   true,
		visible: true,
	}
	p.setBeamExtents(halfBeamWidthRad)
	return p
}

func (p *Profile) Bearing() float64       { return p.bearing }
func (p *Profile) HalfBeamWidth() float64 { return p.halfBeamWidth }

// DataProvider returns the profile's composite data provider.
func (p *Profile) DataProvider() *CompositeProvider { return p.data }

func (p *Profile) SetHalfBeamWidth(halfBeamWidthRad float64) {
	if p.halfBeamWidth == halfBeamWidthRad {
		return
	}
	p.setBeamExtents(halfBeamWidthRad)
	p.MarkDirty()
}

func (p *Profile) setBeamExtents(halfBeamWidthRad float64) {
	p.halfBeamWidth = halfBeamWidthRad
	dt0 := -halfBeamWidthRad + math.Pi/2
	dt1 := halfBeamWidthRad + math.Pi/2
	p.cosTheta0 = math.Cos(dt0)
	p.sinTheta0 = math.Sin(dt0)
	p.cosTheta1 = math.Cos(dt1)
	p.sinTheta1 = math.Sin(dt1)
}

// ThresholdType returns the type of the active data provider.
func (p *Profile) ThresholdType() ThresholdType {
	if p.data == nil {
		return ThresholdNone
	}
	if active := p.data.ActiveProvider(); active != nil {
		return active.Type()
	}
	return ThresholdNone
}

// SetThresholdType switches the active data provider. Selecting a type with
// no provider, including ThresholdNone, deactivates the profile. The cached
// texture image is dropped since its values no longer apply.
func (p *Profile) SetThresholdType(t ThresholdType) {
	if p.data == nil {
		return
	}
	_ = p.data.SetActiveByType(t)
	p.image = nil
	p.MarkDirty()
}

// SetTerrainHeights replaces the terrain height samples used by AGL mode.
func (p *Profile) SetTerrainHeights(heightsByRange map[float64]float64) {
	p.terrainRanges = p.terrainRanges[:0]
	p.terrainHeights = p.terrainHeights[:0]
	for rng := range heightsByRange {
		p.terrainRanges = append(p.terrainRanges, rng)
	}
	sort.Float64s(p.terrainRanges)
	for _, rng := range p.terrainRanges {
		p.terrainHeights = append(p.terrainHeights, heightsByRange[rng])
	}
	p.MarkDirty()
}

func (p *Profile) terrainHeight(gndRng float64) float64 {
	return linearInterpolate(p.terrainRanges, p.terrainHeights, gndRng)
}

// MarkDirty schedules a geometry rebuild. Cheap; may be called any number of
// times between rebuilds.
func (p *Profile) MarkDirty() { p.dirty = true }

// Dirty reports whether the mesh is stale.
func (p *Profile) Dirty() bool { return p.dirty }

// Visible reports the visibility mask set by the owning manager.
func (p *Profile) Visible() bool { return p.visible }

// SetVisible toggles the visibility mask. Visibility does not affect the
// mesh, so no rebuild is needed.
func (p *Profile) SetVisible(visible bool) { p.visible = visible }

// Mesh returns the most recently built mesh, which may be stale or nil.
func (p *Profile) Mesh() *Mesh { return p.mesh }

// clearImage drops the cached texture image, forcing the next textured
// rebuild to regenerate it.
func (p *Profile) clearImage() { p.image = nil }

// RebuildIfDirty regenerates the mesh for the context's draw mode if any
// parameter changed since the last build. Idempotent; the rendering
// collaborator calls it once per frame.
func (p *Profile) RebuildIfDirty() *Mesh {
	if !p.dirty {
		return p.mesh
	}
	m := &Mesh{Bearing: p.bearing, Origin: p.origin()}
	if p.data != nil && p.data.ActiveProvider() != nil {
		switch p.ctx.Mode {
		case DrawMode2DHorizontal:
			p.build2DHoriz(m)
		case DrawMode2DVertical:
			p.build2DVert(m)
		case DrawMode2DTee:
			p.build2DHoriz(m)
			p.build2DVert(m)
		case DrawMode3D:
			p.build3D(m)
		case DrawMode3DTexture:
			p.build3DTexture(m)
		case DrawMode3DPoints:
			p.build3DPoints(m)
		case DrawModeRAE:
			p.buildRAE(m)
		}
	}
	p.mesh = m
	p.dirty = false
	return m
}

func (p *Profile) sphereOrigin() Vec3 {
	return geodeticToSpherical(p.ctx.RefLatRad, p.ctx.RefLonRad, p.ctx.RefAltMeters)
}

// origin is the geocentric tangent point for the context's earth model.
func (p *Profile) origin() Vec3 {
	if p.ctx.SphericalEarth {
		return p.sphereOrigin()
	}
	return ECEFOrigin(p.ctx.RefLatRad, p.ctx.RefLonRad, p.ctx.RefAltMeters)
}

func (p *Profile) adjust(v Vec3, origin Vec3) Vec3 {
	if !p.ctx.SphericalEarth {
		return v
	}
	return adjustSpherical(v, p.ctx.RefLatRad, p.ctx.RefLonRad, p.ctx.RefAltMeters, origin)
}

// build2DHoriz emits a single triangle strip sweeping the beam arc at the
// display height.
func (p *Profile) build2DHoriz(m *Mesh) {
	minRange := p.data.MinRange()
	rangeStep := p.data.RangeStep()
	numRanges := p.data.RangeCount()
	numHeights := p.data.HeightCount()
	startIndex := len(m.Verts)

	heightIndex := p.data.HeightIndex(p.ctx.HeightMeters)
	if heightIndex == InvalidHeightIndex || heightIndex > numHeights-1 {
		return
	}

	origin := p.sphereOrigin()

	validDataStarted := false
	for i := 0; i < numRanges; i++ {
		rng := minRange + rangeStep*float64(i)
		height := p.ctx.HeightMeters
		if p.ctx.AGL && len(p.terrainRanges) > 0 {
			height = p.ctx.HeightMeters + p.terrainHeight(rng)
			heightIndex = p.data.HeightIndex(height)
			if heightIndex == InvalidHeightIndex || heightIndex > numHeights-1 {
				return
			}
		}

		value := p.data.ValueByIndex(heightIndex, i)
		if !validDataStarted {
			// some profiles have a long stretch of no-data at low range;
			// skip it so the strip does not start with degenerate geometry
			if value <= GroundValue {
				continue
			}
			// later no-data samples stay in the strip; the color provider
			// renders those vertices transparent
			validDataStarted = true
		}

		v0 := Vec3{rng * p.cosTheta0, rng * p.sinTheta0, height}
		v1 := Vec3{rng * p.cosTheta1, rng * p.sinTheta1, height}
		v0 = p.adjust(v0, origin)
		v1 = p.adjust(v1, origin)

		m.Verts = append(m.Verts, v1, v0)
		m.Values = append(m.Values, value, value)
	}

	count := len(m.Verts) - startIndex
	if count == 0 {
		return
	}
	idx := make([]uint32, count)
	for i := range idx {
		idx[i] = uint32(startIndex + i)
	}
	m.addStrip(idx)
}

// build2DVert emits the full range-by-height sample grid in the vertical
// plane along the boresight, tessellated as one strip per height row.
func (p *Profile) build2DVert(m *Mesh) {
	minRange := p.data.MinRange()
	rangeStep := p.data.RangeStep()
	numRanges := p.data.RangeCount()
	minHeight := p.data.MinHeight()
	heightStep := p.data.HeightStep()
	numHeights := p.data.HeightCount()
	if numRanges == 0 || numHeights == 0 {
		return
	}

	origin := p.sphereOrigin()

	// the tee mode combines this with the horizontal slice; vertices for
	// this mode start past any already emitted
	startIndex := len(m.Verts)
	for r := 0; r < numRanges; r++ {
		rng := minRange + rangeStep*float64(r)
		for h := 0; h < numHeights; h++ {
			height := minHeight + heightStep*float64(h)
			v := p.adjust(Vec3{0, rng, height}, origin)
			m.Verts = append(m.Verts, v)
			m.Values = append(m.Values, p.data.ValueByIndex(h, r))
		}
	}

	p.tessellate2DVert(m, numRanges, numHeights, startIndex)
}

func (p *Profile) tessellate2DVert(m *Mesh, numRanges, numHeights, startIndex int) {
	for h := 0; h < numHeights-1; h++ {
		idx := make([]uint32, 0, 2*numRanges)
		validDataStarted := false
		for r := 0; r < numRanges; r++ {
			indexBottom := startIndex + r*numHeights + h
			indexTop := indexBottom + 1
			if !validDataStarted {
				valueBottom := m.Values[indexBottom]
				valueTop := m.Values[indexTop]
				if valueBottom <= GroundValue && valueTop <= GroundValue {
					continue
				}
				validDataStarted = true
			}
			idx = append(idx, uint32(indexBottom), uint32(indexTop))
		}
		m.addStrip(idx)
	}
}

// displayHeightIndices resolves the display height and thickness onto the
// height grid, widening a zero-thickness selection to a single slot.
func (p *Profile) displayHeightIndices() (minIndex, maxIndex int, ok bool) {
	numHeights := p.data.HeightCount()
	minIndex = p.data.HeightIndex(p.ctx.HeightMeters)
	maxIndex = p.data.HeightIndex(p.ctx.HeightMeters + p.ctx.DisplayThickness)
	if minIndex == InvalidHeightIndex || maxIndex == InvalidHeightIndex {
		return 0, 0, false
	}
	minIndex = clampInt(minIndex, 0, numHeights-1)
	maxIndex = clampInt(maxIndex, 0, numHeights-1)
	if minIndex == maxIndex {
		if minIndex == numHeights-1 {
			minIndex--
		} else {
			maxIndex++
		}
	}
	if minIndex < 0 || maxIndex >= numHeights {
		return 0, 0, false
	}
	return minIndex, maxIndex, true
}

// build3D emits a voxel block between the display height and the display
// height plus thickness, one 14-index strip wrapping each cell.
func (p *Profile) build3D(m *Mesh) {
	minRange := p.data.MinRange()
	rangeStep := p.data.RangeStep()
	numRanges := p.data.RangeCount()
	minHeight := p.data.MinHeight()
	heightStep := p.data.HeightStep()
	if numRanges == 0 || p.data.HeightCount() == 0 {
		return
	}

	minHeightIndex, maxHeightIndex, ok := p.displayHeightIndices()
	if !ok {
		return
	}

	origin := p.sphereOrigin()

	heightIndexCount := maxHeightIndex - minHeightIndex + 1
	startIndex := len(m.Verts)
	for r := 0; r < numRanges; r++ {
		rng := minRange + rangeStep*float64(r)
		x0 := rng * p.cosTheta0
		y0 := rng * p.sinTheta0
		x1 := rng * p.cosTheta1
		y1 := rng * p.sinTheta1

		for h := minHeightIndex; h <= maxHeightIndex; h++ {
			height := minHeight + heightStep*float64(h)
			v0 := p.adjust(Vec3{x0, y0, height}, origin)
			v1 := p.adjust(Vec3{x1, y1, height}, origin)
			m.Verts = append(m.Verts, v0, v1)

			value := p.data.ValueByIndex(h, r)
			m.Values = append(m.Values, value, value)
		}
	}

	for r := 0; r < numRanges-1; r++ {
		nextR := r + 1
		for h := minHeightIndex; h < maxHeightIndex; h++ {
			// the 8 corners of the cell
			v0 := uint32(startIndex + r*heightIndexCount*2 + (h-minHeightIndex)*2)
			v1 := v0 + 1
			v2 := v1 + 1
			v3 := v2 + 1
			v4 := uint32(startIndex + nextR*heightIndexCount*2 + (h-minHeightIndex)*2)
			v5 := v4 + 1
			v6 := v5 + 1
			v7 := v6 + 1

			m.addStrip([]uint32{
				v5, v4, // back bottom
				v6, v7, // back to top
				v3, v5, // top to left
				v1, v4, // left to bottom
				v0, v6, // bottom to right
				v2, v3, // right to top
				v0, v1, // top to front
			})
		}
	}
}

// build3DTexture emits a closed pie wedge between the sampled heights, with
// texture coordinates into a luminance image of the provider values. The
// image is cached across rebuilds and dropped when the active provider
// changes.
func (p *Profile) build3DTexture(m *Mesh) {
	maxRange := p.data.MaxRange()
	minHeight := p.data.MinHeight()
	maxHeight := p.data.MaxHeight()
	heightStep := p.data.HeightStep()
	numHeights := p.data.HeightCount()
	if numHeights == 0 || maxHeight <= minHeight {
		return
	}

	minHeightIndex, maxHeightIndex, ok := p.displayHeightIndices()
	if !ok {
		return
	}

	minSampledHeight := minHeight + heightStep*float64(minHeightIndex)
	maxSampledHeight := minHeight + heightStep*float64(maxHeightIndex)
	minT := (minSampledHeight - minHeight) / (maxHeight - minHeight)
	maxT := (maxSampledHeight - minHeight) / (maxHeight - minHeight)

	// tessellate the wedge in range so it can drape
	pieLength := maxRange
	if pieLength > maxSegmentLength {
		pieLength = maxSegmentLength
	}
	numSegs := int(maxRange / pieLength)
	numSegs = clampInt(numSegs, minNumSegments, maxNumSegments)
	maxRangeStep := maxRange / float64(numSegs)
	texStep := 1.0 / float64(numSegs)

	topVerts := make([][2]uint32, numSegs)
	botVerts := make([][2]uint32, numSegs)

	// the first two verts are the wedge apex at bottom and top
	m.Verts = append(m.Verts,
		Vec3{0, 0, minSampledHeight},
		Vec3{0, 0, maxSampledHeight})
	m.TexCoords = append(m.TexCoords, Vec2{0, minT}, Vec2{0, maxT})
	vertCount := uint32(2)

	// right side
	idx := make([]uint32, 0, 2+2*numSegs)
	idx = append(idx, 1, 0)
	for i := 0; i < numSegs; i++ {
		step := maxRangeStep * float64(i+1)
		tex := texStep * float64(i+1)

		m.Verts = append(m.Verts, Vec3{step * p.cosTheta0, step * p.sinTheta0, maxSampledHeight})
		m.TexCoords = append(m.TexCoords, Vec2{tex, maxT})
		idx = append(idx, vertCount)
		topVerts[i][0] = vertCount
		vertCount++

		m.Verts = append(m.Verts, Vec3{step * p.cosTheta0, step * p.sinTheta0, minSampledHeight})
		m.TexCoords = append(m.TexCoords, Vec2{tex, minT})
		idx = append(idx, vertCount)
		botVerts[i][0] = vertCount
		vertCount++
	}
	m.addStrip(idx)
	rb := vertCount - 1
	rt := vertCount - 2

	// left side, wound the other way so both faces point outward
	idx = make([]uint32, 0, 2+2*numSegs)
	idx = append(idx, 0, 1)
	for i := 0; i < numSegs; i++ {
		step := maxRangeStep * float64(i+1)
		tex := texStep * float64(i+1)

		m.Verts = append(m.Verts, Vec3{step * p.cosTheta1, step * p.sinTheta1, minSampledHeight})
		m.TexCoords = append(m.TexCoords, Vec2{tex, minT})
		idx = append(idx, vertCount)
		botVerts[i][1] = vertCount
		vertCount++

		m.Verts = append(m.Verts, Vec3{step * p.cosTheta1, step * p.sinTheta1, maxSampledHeight})
		m.TexCoords = append(m.TexCoords, Vec2{tex, maxT})
		idx = append(idx, vertCount)
		topVerts[i][1] = vertCount
		vertCount++
	}
	m.addStrip(idx)
	lb := vertCount - 2
	lt := vertCount - 1

	// top
	idx = make([]uint32, 0, 3+2*numSegs)
	idx = append(idx, 1, topVerts[0][0], topVerts[0][1])
	for i := 1; i < numSegs; i++ {
		idx = append(idx, topVerts[i][0], topVerts[i][1])
	}
	m.addStrip(idx)

	// bottom
	idx = make([]uint32, 0, 3+2*numSegs)
	idx = append(idx, 0, botVerts[0][1], botVerts[0][0])
	for i := 1; i < numSegs; i++ {
		idx = append(idx, botVerts[i][1], botVerts[i][0])
	}
	m.addStrip(idx)

	// cap closing the far end of the wedge
	m.addStrip([]uint32{lb, lt, rb, rt})

	if p.image == nil {
		p.image = p.createImage()
	}
	m.Image = p.image
}

func (p *Profile) createImage() *LuminanceImage {
	numRanges := p.data.RangeCount()
	numHeights := p.data.HeightCount()
	img := &LuminanceImage{
		Width:  numRanges,
		Height: numHeights,
		Pixels: make([]float32, numRanges*numHeights),
	}
	for r := 0; r < numRanges; r++ {
		for h := 0; h < numHeights; h++ {
			img.Pixels[r+h*numRanges] = float32(p.data.ValueByIndex(h, r))
		}
	}
	return img
}

// build3DPoints emits a point cloud of the samples between the display
// height and the display height plus thickness, dropping no-data samples.
func (p *Profile) build3DPoints(m *Mesh) {
	minRange := p.data.MinRange()
	rangeStep := p.data.RangeStep()
	numRanges := p.data.RangeCount()
	minHeight := p.data.MinHeight()
	heightStep := p.data.HeightStep()
	if numRanges == 0 || p.data.HeightCount() == 0 {
		return
	}

	minHeightIndex, maxHeightIndex, ok := p.displayHeightIndices()
	if !ok {
		return
	}

	origin := p.sphereOrigin()

	for r := 0; r < numRanges; r++ {
		rng := minRange + rangeStep*float64(r)
		for h := minHeightIndex; h <= maxHeightIndex; h++ {
			value := p.data.ValueByIndex(h, r)
			if value <= GroundValue {
				continue
			}
			height := minHeight + heightStep*float64(h)
			m.Verts = append(m.Verts, p.adjust(Vec3{0, rng, height}, origin))
			m.Values = append(m.Values, value)
		}
	}
	m.Points = true
}

// buildRAE emits a strip of voxels whose heights follow the elevation angle
// out in range.
func (p *Profile) buildRAE(m *Mesh) {
	vp := NewRAEVoxelProcessor(p.data, p.ctx.HeightMeters, p.ctx.ElevAngleRad)
	p.buildVoxels(m, vp)
}

func (p *Profile) buildVoxels(m *Mesh, vp VoxelProcessor) {
	if !vp.Valid() {
		return
	}
	origin := p.sphereOrigin()
	numRanges := p.data.RangeCount()
	for r := 0; r < numRanges-1; r++ {
		if p.buildVoxel(m, vp, origin, r) != VoxelOK {
			return
		}
	}
}

// buildVoxel emits the voxel spanning range index r to r+1 and returns the
// processor status. No-data voxels are skipped without stopping emission,
// which invalidates the index cache.
func (p *Profile) buildVoxel(m *Mesh, vp VoxelProcessor, origin Vec3, r int) int {
	vr, nearHgt, farHgt, status := vp.CalculateVoxel(r)
	if status == VoxelInvalid {
		return status
	}

	nearBottom := p.data.ValueByIndex(nearHgt.BottomIndex, vr.NearIndex)
	farBottom := p.data.ValueByIndex(farHgt.BottomIndex, vr.FarIndex)
	nearTop := p.data.ValueByIndex(nearHgt.TopIndex, vr.NearIndex)
	farTop := p.data.ValueByIndex(farHgt.TopIndex, vr.FarIndex)
	if nearBottom <= GroundValue && farBottom <= GroundValue &&
		nearTop <= GroundValue && farTop <= GroundValue {
		// the shared far edge will not exist in the vertex stream
		vp.ClearIndexCache()
		if status == VoxelLast {
			return status
		}
		return VoxelOK
	}

	// far-edge corners, always emitted
	v2 := p.adjust(Vec3{vr.FarValue * p.cosTheta1, vr.FarValue * p.sinTheta1, farHgt.BottomValue}, origin)
	v3 := p.adjust(Vec3{vr.FarValue * p.cosTheta0, vr.FarValue * p.sinTheta0, farHgt.BottomValue}, origin)
	v6 := p.adjust(Vec3{vr.FarValue * p.cosTheta1, vr.FarValue * p.sinTheta1, farHgt.TopValue}, origin)
	v7 := p.adjust(Vec3{vr.FarValue * p.cosTheta0, vr.FarValue * p.sinTheta0, farHgt.TopValue}, origin)

	var i0, i1, i4, i5 uint32
	if cache, ok := vp.IndexCache(); ok {
		// reuse the previous voxel's far edge as this near edge
		i0 = cache.I3
		i1 = cache.I2
		i4 = cache.I7
		i5 = cache.I6
	} else {
		v0 := p.adjust(Vec3{vr.NearValue * p.cosTheta0, vr.NearValue * p.sinTheta0, nearHgt.BottomValue}, origin)
		v1 := p.adjust(Vec3{vr.NearValue * p.cosTheta1, vr.NearValue * p.sinTheta1, nearHgt.BottomValue}, origin)
		v4 := p.adjust(Vec3{vr.NearValue * p.cosTheta0, vr.NearValue * p.sinTheta0, nearHgt.TopValue}, origin)
		v5 := p.adjust(Vec3{vr.NearValue * p.cosTheta1, vr.NearValue * p.sinTheta1, nearHgt.TopValue}, origin)

		i0 = uint32(len(m.Verts))
		i1 = i0 + 1
		i4 = i0 + 2
		i5 = i0 + 3
		m.Verts = append(m.Verts, v0, v1, v4, v5)
		m.Values = append(m.Values, nearBottom, nearBottom, nearTop, nearTop)
	}

	i2 := uint32(len(m.Verts))
	i3 := i2 + 1
	i6 := i2 + 2
	i7 := i2 + 3
	m.Verts = append(m.Verts, v2, v3, v6, v7)
	m.Values = append(m.Values, farBottom, farBottom, farTop, farTop)

	m.addStrip([]uint32{
		i3, i2, // back bottom
		i7, i6, // back to top
		i5, i2, // top to left
		i1, i3, // left to bottom
		i0, i7, // bottom to right
		i4, i5, // right to top
		i0, i1, // top to front
	})

	vp.SetIndexCache(i2, i3, i6, i7)
	return status
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
