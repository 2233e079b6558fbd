package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Sphere radius used by the local azimuthal equidistant projection,
// +proj=aeqd +R=6371000.
const earthRadiusMeters = 6371000.0

// defaultSegments matches the 16 quadrant segments a default point buffer
// uses, 64 vertices around the full circle.
const defaultSegments = 64

// CircularBuffer builds a circle of radiusKm around center (lon/lat,
// EPSG:4326). The circle is constructed in a local azimuthal equidistant
// projection centered on the point and every vertex is projected back to
// lon/lat, so vertices sit at the true geodesic radius. The ring is closed:
// segments+1 vertices, first equals last.
func CircularBuffer(center orb.Point, radiusKm float64, segments int) orb.Polygon {
	if segments <= 0 {
		segments = defaultSegments
	}
	radius := radiusKm * 1000

	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, orb.Point{radius * math.Cos(theta), radius * math.Sin(theta)})
	}
	ring = append(ring, ring[0])

	return project.Polygon(orb.Polygon{ring}, aeqdInverse(center))
}

// aeqdInverse maps local aeqd meters back to lon/lat degrees.
func aeqdInverse(center orb.Point) orb.Projection {
	lon0 := deg2rad(center[0])
	lat0 := deg2rad(center[1])
	sinLat0, cosLat0 := math.Sincos(lat0)

	return func(p orb.Point) orb.Point {
		rho := math.Hypot(p[0], p[1])
		if rho == 0 {
			return center
		}
		c := rho / earthRadiusMeters
		sinC, cosC := math.Sincos(c)

		lat := math.Asin(cosC*sinLat0 + p[1]*sinC*cosLat0/rho)
		lon := lon0 + math.Atan2(p[0]*sinC, rho*cosLat0*cosC-p[1]*sinLat0*sinC)

		return orb.Point{normalizeLon(rad2deg(lon)), rad2deg(lat)}
	}
}

// aeqdForward maps lon/lat degrees into local aeqd meters around center.
func aeqdForward(center orb.Point) orb.Projection {
	lon0 := deg2rad(center[0])
	lat0 := deg2rad(center[1])
	sinLat0, cosLat0 := math.Sincos(lat0)

	return func(p orb.Point) orb.Point {
		lon := deg2rad(p[0])
		lat := deg2rad(p[1])
		sinLat, cosLat := math.Sincos(lat)
		cosDLon := math.Cos(lon - lon0)

		cosC := sinLat0*sinLat + cosLat0*cosLat*cosDLon
		c := math.Acos(math.Min(1, math.Max(-1, cosC)))
		k := 1.0
		if c != 0 {
			k = c / math.Sin(c)
		}

		x := earthRadiusMeters * k * cosLat * math.Sin(lon-lon0)
		y := earthRadiusMeters * k * (cosLat0*sinLat - sinLat0*cosLat*cosDLon)
		return orb.Point{x, y}
	}
}

// GeodesicDistance returns the haversine distance in meters on the same
// sphere the buffer projection uses.
func GeodesicDistance(a, b orb.Point) float64 {
	lat1 := deg2rad(a[1])
	lat2 := deg2rad(b[1])
	dLat := lat2 - lat1
	dLon := deg2rad(b[0] - a[0])

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

func normalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

func rad2deg(r float64) float64 { return r * 180 / math.Pi }
