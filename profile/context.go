package profile

// DrawMode selects the mesh representation a profile builds on rebuild.
type DrawMode int

const (
	DrawMode2DHorizontal DrawMode = iota
	DrawMode2DVertical
	DrawMode2DTee
	DrawMode3D
	DrawMode3DTexture
	DrawMode3DPoints
	DrawModeRAE
)

func (m DrawMode) String() string {
	switch m {
	case DrawMode2DHorizontal:
		return "2D Horizontal"
	case DrawMode2DVertical:
		return "2D Vertical"
	case DrawMode2DTee:
		return "2D Tee"
	case DrawMode3D:
		return "3D"
	case DrawMode3DTexture:
		return "3D Texture"
	case DrawMode3DPoints:
		return "3D Points"
	case DrawModeRAE:
		return "RAE"
	}
	return "Unknown"
}

// Scaled forms of the AREPS sentinel shorts. Raw table values are stored as
// tenths of a dB, so the -32768 initialization short and the -32766 ground
// short surface as these values once scaled. A sample v carries no physical
// data when v <= GroundValue.
const (
	NoDataValue = -3276.8
	GroundValue = -3276.6
)

// Context carries the display state shared by every profile under one
// manager. Manager setters mutate it and mark the affected profiles dirty;
// profiles read it when they rebuild.
type Context struct {
	Mode DrawMode

	// HeightMeters selects the sampled slice for the horizontal modes and
	// the bottom of the displayed volume for the 3D modes.
	HeightMeters float64

	// AGL interprets HeightMeters as height above terrain rather than
	// above the profile origin.
	AGL bool

	// DisplayThickness is the vertical extent, in meters above
	// HeightMeters, included by the volume modes.
	DisplayThickness float64

	// Reference origin of the profile fan.
	RefLatRad    float64
	RefLonRad    float64
	RefAltMeters float64

	// SphericalEarth drops vertices to a sphere-earth surface instead of
	// the flat tangent plane.
	SphericalEarth bool

	// ElevAngleRad drives the RAE mode.
	ElevAngleRad float64

	// Alpha in [0, 1] applied by the renderer to every drawn sample.
	Alpha float32
}

// NewContext returns a context with the default display settings: a 2D
// horizontal slice on a spherical earth, 1km thick and fully opaque.
func NewContext() *Context {
	return &Context{
		Mode:             DrawMode2DHorizontal,
		DisplayThickness: 1000.0,
		SphericalEarth:   true,
		Alpha:            1.0,
	}
}
