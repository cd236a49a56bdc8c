package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/wroge/wgs84"
)

// EarthDiameter is the length of one scene unit in meters
const EarthDiameter = 12742000.0

// Geographic represents a geodetic position
type Geographic struct {
	Lat float64 // Latitude in degrees [-90, 90], positive = north
	Lon float64 // Longitude in degrees [-180, 180], positive = east
	Alt float64 // Height above the ellipsoid in meters
}

// Cartesian represents a position in Cartesian coordinates
// Origin at planet center, Y points to north pole
type Cartesian struct {
	X float64 // Points to 0° longitude at equator
	Y float64 // Points to north pole
	Z float64 // Points to 90° longitude at equator
}

// DegreesToRadians converts degrees to radians
func DegreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// RadiansToDegrees converts radians to degrees
func RadiansToDegrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// GeographicToCartesian converts geographic coordinates to Cartesian on a sphere
func GeographicToCartesian(g Geographic, radius float64) Cartesian {
	r := radius + g.Alt
	lat := DegreesToRadians(g.Lat)
	lon := DegreesToRadians(g.Lon)
	cosLat := math.Cos(lat)

	return Cartesian{
		X: r * cosLat * math.Cos(lon),
		Y: r * math.Sin(lat),
		Z: r * cosLat * math.Sin(lon),
	}
}

// GeodeticToCartesian converts WGS84 coordinates to ECEF, with the axes
// swapped so Y is the polar axis. If the transform yields nothing usable the
// spherical approximation is used instead.
func GeodeticToCartesian(g Geographic) Cartesian {
	toECEF := wgs84.EPSG().Transform(4326, 4978)
	x, y, z := toECEF(g.Lon, g.Lat, g.Alt)
	if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(z) || (x == 0 && y == 0 && z == 0) {
		return GeographicToCartesian(g, EarthDiameter/2)
	}
	return Cartesian{X: x, Y: z, Z: y}
}

// GeodeticToScene converts WGS84 coordinates into scene units
func GeodeticToScene(g Geographic) mgl32.Vec3 {
	c := GeodeticToCartesian(NormalizeCoordinates(g))
	return mgl32.Vec3{
		float32(c.X / EarthDiameter),
		float32(c.Y / EarthDiameter),
		float32(c.Z / EarthDiameter),
	}
}

// ValidateCoordinates checks if coordinates are within valid ranges
func ValidateCoordinates(g Geographic) bool {
	return g.Lat >= -90 && g.Lat <= 90 &&
		g.Lon >= -180 && g.Lon <= 180
}

// NormalizeCoordinates ensures coordinates are within valid ranges
func NormalizeCoordinates(g Geographic) Geographic {
	// Clamp latitude
	if g.Lat > 90 {
		g.Lat = 90
	} else if g.Lat < -90 {
		g.Lat = -90
	}

	// Wrap longitude
	for g.Lon > 180 {
		g.Lon -= 360
	}
	for g.Lon < -180 {
		g.Lon += 360
	}

	return g
}
