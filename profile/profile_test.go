package profile

import (
	"math"
	"testing"

	"github.com/signalsfoundry/rfprop-engine/lut"
)

const groundRaw = int16(-32766)

// newLossComposite builds a composite over heights [0,100] x ranges
// [100,500] filled with the given raw value.
func newLossComposite(t *testing.T, raw int16) *CompositeProvider {
	t.Helper()
	c := NewCompositeProvider()
	if err := c.AddProvider(newGridProvider(t, ThresholdLoss, raw)); err != nil {
		t.Fatalf("AddProvider: %v", err)
	}
	return c
}

func flatContext(mode DrawMode) *Context {
	ctx := NewContext()
	ctx.Mode = mode
	ctx.SphericalEarth = false
	return ctx
}

func TestRebuildIfDirtyIsLazy(t *testing.T) {
	p := NewProfile(0, 0.1, newLossComposite(t, 1500), flatContext(DrawMode2DHorizontal))
	first := p.RebuildIfDirty()
	if first == nil || p.Dirty() {
		t.Fatalf("rebuild did not produce a clean mesh")
	}
	if second := p.RebuildIfDirty(); second != first {
		t.Fatalf("clean profile rebuilt its mesh")
	}
	p.MarkDirty()
	if third := p.RebuildIfDirty(); third == first {
		t.Fatalf("dirty profile returned the stale mesh")
	}
}

func Test2DHorizontalVertexLayout(t *testing.T) {
	p := NewProfile(0, 0.1, newLossComposite(t, 1500), flatContext(DrawMode2DHorizontal))
	m := p.RebuildIfDirty()
	if len(m.Verts) != 10 {
		t.Fatalf("verts = %d, want 2 per range sample (10)", len(m.Verts))
	}
	if len(m.Strips) != 1 || len(m.Strips[0]) != 10 {
		t.Fatalf("expected one 10-index strip, got %v", m.Strips)
	}
	for _, v := range m.Values {
		if !almostEqual(v, 150.0, 1e-9) {
			t.Fatalf("vertex value = %v, want 150", v)
		}
	}
	// the two verts of a pair straddle the boresight symmetrically
	left, right := m.Verts[0], m.Verts[1]
	if !almostEqual(left.X, -right.X, 1e-9) || !almostEqual(left.Y, right.Y, 1e-9) {
		t.Fatalf("beam edge verts not symmetric: %+v vs %+v", left, right)
	}
}

func Test2DHorizontalSkipsLeadingNoData(t *testing.T) {
	table, err := lut.NewTable2D(0, 100, 3, 100, 500, 5)
	if err != nil {
		t.Fatalf("NewTable2D: %v", err)
	}
	for x := 0; x < 3; x++ {
		for y := 0; y < 5; y++ {
			raw := int16(1500)
			if y < 2 {
				raw = groundRaw
			}
			if err := table.SetValue(x, y, raw); err != nil {
				t.Fatalf("SetValue: %v", err)
			}
		}
	}
	c := NewCompositeProvider()
	if err := c.AddProvider(NewTable2DProvider(ThresholdLoss, table, 0.1, groundRaw)); err != nil {
		t.Fatalf("AddProvider: %v", err)
	}

	p := NewProfile(0, 0.1, c, flatContext(DrawMode2DHorizontal))
	m := p.RebuildIfDirty()
	// the two leading no-data range samples produce no geometry
	if len(m.Verts) != 6 {
		t.Fatalf("verts = %d, want 6 after skipping leading no-data", len(m.Verts))
	}
	for _, v := range m.Values {
		if v <= GroundValue {
			t.Fatalf("no-data value leaked into the leading strip: %v", v)
		}
	}
}

func Test2DVerticalGrid(t *testing.T) {
	p := NewProfile(0, 0.1, newLossComposite(t, 1500), flatContext(DrawMode2DVertical))
	m := p.RebuildIfDirty()
	if len(m.Verts) != 15 {
		t.Fatalf("verts = %d, want numRanges*numHeights (15)", len(m.Verts))
	}
	if len(m.Strips) != 2 {
		t.Fatalf("strips = %d, want one per height row pair (2)", len(m.Strips))
	}
	// grid vertices lie in the vertical plane along the boresight
	for _, v := range m.Verts {
		if v.X != 0 {
			t.Fatalf("vertical slice vertex off the boresight plane: %+v", v)
		}
	}
}

func Test2DTeeCombinesBothSlices(t *testing.T) {
	p := NewProfile(0, 0.1, newLossComposite(t, 1500), flatContext(DrawMode2DTee))
	m := p.RebuildIfDirty()
	if len(m.Verts) != 10+15 {
		t.Fatalf("verts = %d, want horizontal plus vertical (25)", len(m.Verts))
	}
	if len(m.Strips) != 1+2 {
		t.Fatalf("strips = %d, want 3", len(m.Strips))
	}
}

func Test3DVoxelBlock(t *testing.T) {
	ctx := flatContext(DrawMode3D)
	ctx.HeightMeters = 0
	ctx.DisplayThickness = 100 // spans all three height rows
	p := NewProfile(0, 0.1, newLossComposite(t, 1500), ctx)
	m := p.RebuildIfDirty()
	// 2 verts per (range, height) sample in the displayed band
	if len(m.Verts) != 2*3*5 {
		t.Fatalf("verts = %d, want 30", len(m.Verts))
	}
	// one wrapping strip per cell
	if len(m.Strips) != 4*2 {
		t.Fatalf("strips = %d, want 8", len(m.Strips))
	}
	for _, s := range m.Strips {
		if len(s) != 14 {
			t.Fatalf("voxel strip length = %d, want 14", len(s))
		}
	}
}

func Test3DZeroThicknessWidensToOneSlot(t *testing.T) {
	ctx := flatContext(DrawMode3D)
	ctx.HeightMeters = 100 // top of the grid
	ctx.DisplayThickness = 0
	p := NewProfile(0, 0.1, newLossComposite(t, 1500), ctx)
	m := p.RebuildIfDirty()
	// min index steps back one slot instead of collapsing the volume
	if len(m.Verts) != 2*2*5 {
		t.Fatalf("verts = %d, want 20", len(m.Verts))
	}
}

func Test3DPointsDropsNoData(t *testing.T) {
	table, err := lut.NewTable2D(0, 100, 3, 100, 500, 5)
	if err != nil {
		t.Fatalf("NewTable2D: %v", err)
	}
	for x := 0; x < 3; x++ {
		for y := 0; y < 5; y++ {
			raw := int16(1500)
			if x == 2 {
				raw = groundRaw
			}
			if err := table.SetValue(x, y, raw); err != nil {
				t.Fatalf("SetValue: %v", err)
			}
		}
	}
	c := NewCompositeProvider()
	if err := c.AddProvider(NewTable2DProvider(ThresholdLoss, table, 0.1, groundRaw)); err != nil {
		t.Fatalf("AddProvider: %v", err)
	}

	ctx := flatContext(DrawMode3DPoints)
	ctx.DisplayThickness = 100
	p := NewProfile(0, 0.1, c, ctx)
	m := p.RebuildIfDirty()
	if !m.Points {
		t.Fatalf("points mesh not flagged")
	}
	// the top height row carries no data; its samples are dropped
	if len(m.Verts) != 2*5 {
		t.Fatalf("verts = %d, want 10", len(m.Verts))
	}
}

func Test3DTextureImageCaching(t *testing.T) {
	ctx := flatContext(DrawMode3DTexture)
	ctx.DisplayThickness = 100
	p := NewProfile(0, 0.1, newLossComposite(t, 1500), ctx)
	m := p.RebuildIfDirty()
	if m.Image == nil {
		t.Fatalf("textured mesh has no image")
	}
	if m.Image.Width != 5 || m.Image.Height != 3 {
		t.Fatalf("image size = %dx%d, want 5x3", m.Image.Width, m.Image.Height)
	}
	if got := m.Image.At(2, 1); !almostEqual(float64(got), 150.0, 1e-4) {
		t.Fatalf("texel = %v, want 150", got)
	}
	if len(m.TexCoords) != len(m.Verts) {
		t.Fatalf("texcoords = %d for %d verts", len(m.TexCoords), len(m.Verts))
	}

	p.MarkDirty()
	if again := p.RebuildIfDirty(); again.Image != m.Image {
		t.Fatalf("image not reused across rebuilds")
	}
	// switching providers invalidates the cached values
	p.SetThresholdType(ThresholdLoss)
	if after := p.RebuildIfDirty(); after.Image == m.Image {
		t.Fatalf("image survived a threshold type change")
	}
}

func TestRAEVoxelStripAndIndexCache(t *testing.T) {
	ctx := flatContext(DrawModeRAE)
	ctx.HeightMeters = 0
	ctx.ElevAngleRad = 0
	p := NewProfile(0, 0.1, newLossComposite(t, 1500), ctx)
	m := p.RebuildIfDirty()
	// 4 voxels; the first emits 8 verts, each later one reuses the shared
	// edge and emits 4
	if len(m.Strips) != 4 {
		t.Fatalf("strips = %d, want 4", len(m.Strips))
	}
	if len(m.Verts) != 8+3*4 {
		t.Fatalf("verts = %d, want 20 with far-edge reuse", len(m.Verts))
	}
}

func TestRAESkippedVoxelInvalidatesCache(t *testing.T) {
	table, err := lut.NewTable2D(0, 100, 3, 100, 500, 5)
	if err != nil {
		t.Fatalf("NewTable2D: %v", err)
	}
	for x := 0; x < 3; x++ {
		for y := 0; y < 5; y++ {
			raw := int16(1500)
			// all four corners of the voxel between range indices 1 and 2
			if (x == 0 || x == 1) && (y == 1 || y == 2) {
				raw = groundRaw
			}
			if err := table.SetValue(x, y, raw); err != nil {
				t.Fatalf("SetValue: %v", err)
			}
		}
	}
	c := NewCompositeProvider()
	if err := c.AddProvider(NewTable2DProvider(ThresholdLoss, table, 0.1, groundRaw)); err != nil {
		t.Fatalf("AddProvider: %v", err)
	}

	ctx := flatContext(DrawModeRAE)
	p := NewProfile(0, 0.1, c, ctx)
	m := p.RebuildIfDirty()
	// voxel 1 is skipped, so voxels 0, 2 and 3 draw; voxel 2 cannot reuse
	// the cache and emits a full 8 verts again
	if len(m.Strips) != 3 {
		t.Fatalf("strips = %d, want 3", len(m.Strips))
	}
	if len(m.Verts) != 8+8+4 {
		t.Fatalf("verts = %d, want 20", len(m.Verts))
	}
}

func TestRAEStopsAtDataCeiling(t *testing.T) {
	// a two-row grid puts every voxel's top edge at the ceiling
	table, err := lut.NewTable2D(0, 50, 2, 100, 500, 5)
	if err != nil {
		t.Fatalf("NewTable2D: %v", err)
	}
	for x := 0; x < 2; x++ {
		for y := 0; y < 5; y++ {
			if err := table.SetValue(x, y, 1500); err != nil {
				t.Fatalf("SetValue: %v", err)
			}
		}
	}
	c := NewCompositeProvider()
	if err := c.AddProvider(NewTable2DProvider(ThresholdLoss, table, 0.1, groundRaw)); err != nil {
		t.Fatalf("AddProvider: %v", err)
	}

	ctx := flatContext(DrawModeRAE)
	p := NewProfile(0, 0.1, c, ctx)
	m := p.RebuildIfDirty()
	if len(m.Strips) != 1 {
		t.Fatalf("strips = %d, want emission to stop after the ceiling voxel", len(m.Strips))
	}
}

func TestVoxelProcessorStatuses(t *testing.T) {
	c := newLossComposite(t, 1500)
	vp := NewRAHVoxelProcessor(c, 0, 0)
	if !vp.Valid() {
		t.Fatalf("processor invalid for a well-formed grid")
	}
	if _, _, _, st := vp.CalculateVoxel(0); st != VoxelOK {
		t.Errorf("voxel 0 status = %d, want ok", st)
	}
	if _, _, _, st := vp.CalculateVoxel(4); st != VoxelInvalid {
		t.Errorf("voxel at last range index status = %d, want invalid", st)
	}
	// a steep slope reaches the top height row within one range step
	steep := NewRAHVoxelProcessor(c, 0, 1)
	if _, _, _, st := steep.CalculateVoxel(0); st != VoxelLast {
		t.Errorf("ceiling voxel status = %d, want last", st)
	}
}

func TestVoxelIndexCacheLifecycle(t *testing.T) {
	vp := NewRAHVoxelProcessor(newLossComposite(t, 1500), 0, 0)
	if _, ok := vp.IndexCache(); ok {
		t.Fatalf("fresh processor reports a valid cache")
	}
	vp.SetIndexCache(2, 3, 6, 7)
	cache, ok := vp.IndexCache()
	if !ok || cache.I2 != 2 || cache.I3 != 3 || cache.I6 != 6 || cache.I7 != 7 {
		t.Fatalf("cache = %+v ok=%v after set", cache, ok)
	}
	vp.ClearIndexCache()
	if _, ok := vp.IndexCache(); ok {
		t.Fatalf("cache still valid after clear")
	}
}

func TestSphericalEarthDropsFarVertices(t *testing.T) {
	ctx := flatContext(DrawMode2DHorizontal)
	p := NewProfile(0, 0.1, newLossComposite(t, 1500), ctx)
	flat := p.RebuildIfDirty()

	ctx.SphericalEarth = true
	p.MarkDirty()
	curved := p.RebuildIfDirty()

	// the farthest samples sit at 500m; curvature drop is tiny but strictly
	// below the flat plane
	lastFlat := flat.Verts[len(flat.Verts)-1]
	lastCurved := curved.Verts[len(curved.Verts)-1]
	if !(lastCurved.Z < lastFlat.Z) {
		t.Fatalf("spherical earth did not lower far vertex: flat %v curved %v",
			lastFlat.Z, lastCurved.Z)
	}
}

func TestMeshOriginFollowsEarthModel(t *testing.T) {
	ctx := flatContext(DrawMode2DHorizontal)
	ctx.RefLatRad = 32.0 * math.Pi / 180.0
	ctx.RefLonRad = -117.0 * math.Pi / 180.0
	ctx.RefAltMeters = 30
	p := NewProfile(0, 0.1, newLossComposite(t, 1500), ctx)

	ecef := p.RebuildIfDirty()
	want := ECEFOrigin(ctx.RefLatRad, ctx.RefLonRad, ctx.RefAltMeters)
	if ecef.Origin != want {
		t.Fatalf("WGS-84 mesh origin = %v, want %v", ecef.Origin, want)
	}

	ctx.SphericalEarth = true
	p.MarkDirty()
	sphere := p.RebuildIfDirty()
	if got := geodeticToSpherical(ctx.RefLatRad, ctx.RefLonRad, ctx.RefAltMeters); sphere.Origin != got {
		t.Fatalf("spherical mesh origin = %v, want %v", sphere.Origin, got)
	}
	if sphere.Origin == ecef.Origin {
		t.Fatal("earth model change did not move the mesh origin")
	}
}

func TestECEFOriginEquator(t *testing.T) {
	// WGS-84 semi-major axis at lat 0, lon 0.
	got := ECEFOrigin(0, 0, 0)
	if !almostEqual(got.X, 6378137.0, 1e-6) || !almostEqual(got.Y, 0, 1e-6) || !almostEqual(got.Z, 0, 1e-6) {
		t.Fatalf("ECEFOrigin(0,0,0) = %v, want (6378137, 0, 0)", got)
	}
}

func TestBeamExtentCache(t *testing.T) {
	p := NewProfile(0, math.Pi/6, newLossComposite(t, 1500), flatContext(DrawMode2DHorizontal))
	// theta0 = pi/2 - hbw, theta1 = pi/2 + hbw
	if !almostEqual(p.cosTheta0, math.Cos(math.Pi/3), 1e-12) ||
		!almostEqual(p.sinTheta1, math.Sin(2*math.Pi/3), 1e-12) {
		t.Fatalf("beam extents not cached from half beamwidth")
	}
	p.SetHalfBeamWidth(math.Pi / 4)
	if !p.Dirty() {
		t.Fatalf("half beamwidth change did not mark the profile dirty")
	}
}

func TestProfileBearingNormalized(t *testing.T) {
	p := NewProfile(-math.Pi/2, 0.1, newLossComposite(t, 1500), flatContext(DrawMode2DHorizontal))
	if !almostEqual(p.Bearing(), 3*math.Pi/2, 1e-12) {
		t.Fatalf("bearing = %v, want normalized 3pi/2", p.Bearing())
	}
}
