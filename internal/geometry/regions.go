package geometry

import (
	"errors"
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// LoadRegionFromGeoJSON finds the feature whose region_id property matches
// and returns its geometry in lon/lat.
func LoadRegionFromGeoJSON(path, regionID string) (orb.Geometry, error) {
	godal.RegisterInternalDrivers()
	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open region file %s: %w", path, err)
	}
	defer ds.Close()

	layers := ds.Layers()
	if len(layers) == 0 {
		return nil, fmt.Errorf("no vector layers in %s", path)
	}

	layer := layers[0]
	for {
		feat := layer.NextFeature()
		if feat == nil {
			break
		}
		defer feat.Close()

		val, ok := feat.Fields()["region_id"]
		if !ok {
			continue
		}
		if val.String() != regionID {
			continue
		}

		raw, err := feat.Geometry().GeoJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode region geometry: %w", err)
		}
		geom, err := geojson.UnmarshalGeometry([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to decode region geometry: %w", err)
		}
		return geom.Geometry(), nil
	}

	return nil, fmt.Errorf("region %s not found in %s", regionID, path)
}

// AsPolygon coerces a region geometry to a single polygon. MultiPolygons
// collapse to their largest member since export footprints must be a single
// ring set.
func AsPolygon(g orb.Geometry) (orb.Polygon, error) {
	switch geom := g.(type) {
	case orb.Polygon:
		return geom, nil
	case orb.MultiPolygon:
		if len(geom) == 0 {
			return nil, errors.New("empty multipolygon region")
		}
		largest := 0
		largestArea := 0.0
		for i, poly := range geom {
			if area := planar.Area(poly); area > largestArea {
				largest, largestArea = i, area
			}
		}
		return geom[largest], nil
	}
	return nil, fmt.Errorf("unsupported region geometry type %s", g.GeoJSONType())
}

// Centroid returns the planar centroid as latitude, longitude.
func Centroid(g orb.Geometry) (float64, float64, error) {
	centroid, area := planar.CentroidArea(g)
	if area <= 0 {
		return 0, 0, errors.New("error getting centroid")
	}
	return centroid.Y(), centroid.X(), nil
}
