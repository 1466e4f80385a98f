package profile

import (
	"math"
	"sort"

	"github.com/wroge/wgs84"
)

// Vec3 is a point in a profile's local tangent frame: x across the beam,
// y along the boresight, z up.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Vec2 is a texture coordinate.
type Vec2 struct {
	S, T float64
}

// Radius of the sphere-earth model used when Context.SphericalEarth is set.
const sphericalEarthRadius = 6371000.0

// WrapTwoPi normalizes an angle in radians to [0, 2pi).
func WrapTwoPi(rad float64) float64 {
	rad = math.Mod(rad, 2*math.Pi)
	if rad < 0 {
		rad += 2 * math.Pi
	}
	return rad
}

func rotX(a Vec3, ang float64) Vec3 {
	if ang == 0 {
		return a
	}
	cosAng := math.Cos(ang)
	sinAng := math.Sin(ang)
	return Vec3{a.X, cosAng*a.Y - sinAng*a.Z, sinAng*a.Y + cosAng*a.Z}
}

func rotY(a Vec3, ang float64) Vec3 {
	if ang == 0 {
		return a
	}
	// negated so the rotation runs from x toward z
	cosAng := math.Cos(-ang)
	sinAng := math.Sin(-ang)
	return Vec3{cosAng*a.X - sinAng*a.Z, a.Y, sinAng*a.X + cosAng*a.Z}
}

// geodeticToSpherical converts a geodetic position to sphere-earth XYZ.
// Axes follow the convention -X = (lat 0, lon 0), -Y = (lat 0, lon 90),
// +Z = north pole.
func geodeticToSpherical(latRad, lonRad, alt float64) Vec3 {
	scale := sphericalEarthRadius + alt
	cosLat := math.Cos(latRad)
	return Vec3{
		X: -cosLat * math.Cos(lonRad) * scale,
		Y: -cosLat * math.Sin(lonRad) * scale,
		Z: math.Sin(latRad) * scale,
	}
}

// tangentPlaneToSphere moves an ENU tangent-plane point onto the sphere-earth
// XYZ frame. origin is the precomputed sphere XYZ of the tangent point.
func tangentPlaneToSphere(latRad, lonRad float64, tp, origin Vec3) Vec3 {
	// shift the ENU values to the tangent plane at lat 0, lon 0
	enu := rotX(tp, -latRad)
	enu = rotY(enu, lonRad)
	return Vec3{
		X: -enu.Z + origin.X,
		Y: -enu.X + origin.Y,
		Z: enu.Y + origin.Z,
	}
}

// adjustSpherical rewrites a local vertex's z so that a flat tangent-plane
// mesh drapes onto the sphere-earth surface.
func adjustSpherical(v Vec3, latRad, lonRad, refAlt float64, origin Vec3) Vec3 {
	s := tangentPlaneToSphere(latRad, lonRad, v, origin)
	alt := s.Length() - sphericalEarthRadius
	v.Z = v.Z - (alt - v.Z) + refAlt
	return v
}

var llaToECEF = wgs84.LonLat().To(wgs84.XYZ())

// ECEFOrigin returns the WGS84 earth-centered position of a profile origin,
// for renderers that place meshes in a geocentric scene.
func ECEFOrigin(latRad, lonRad, altMeters float64) Vec3 {
	const rad2deg = 180.0 / math.Pi
	x, y, z := llaToECEF(lonRad*rad2deg, latRad*rad2deg, altMeters)
	return Vec3{x, y, z}
}

// linearInterpolate interpolates a sampled piecewise-linear function given
// as parallel sorted xs/ys slices. Returns 0 outside the sampled domain.
func linearInterpolate(xs, ys []float64, x float64) float64 {
	if len(xs) == 0 || x < xs[0] || x > xs[len(xs)-1] {
		return 0
	}
	i := sort.SearchFloat64s(xs, x)
	if i < len(xs) && xs[i] == x {
		return ys[i]
	}
	lo, hi := i-1, i
	span := xs[hi] - xs[lo]
	if span <= 0 {
		return ys[lo]
	}
	return ys[lo] + (ys[hi]-ys[lo])*(x-xs[lo])/span
}
