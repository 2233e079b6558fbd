package locations

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/paulmach/orb"
)

// Location is one row of the input CSV: an id and the lat/lon center the
// export buffer is built around. The id ends up in video names, so it must
// be unique across the file.
type Location struct {
	ID        string  `csv:"loc_id"`
	Latitude  float64 `csv:"latitude"`
	Longitude float64 `csv:"longitude"`
}

// Center returns the location as a lon/lat point.
func (l Location) Center() orb.Point {
	return orb.Point{l.Longitude, l.Latitude}
}

// Load reads and validates the locations CSV. Duplicate ids and out of
// range coordinates are rejected up front so a bad row cannot waste export
// quota halfway through a bulk run.
func Load(path string) ([]Location, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open locations file: %w", err)
	}
	defer file.Close()

	var rows []Location
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse locations file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no locations in %s", path)
	}

	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		if row.ID == "" {
			return nil, fmt.Errorf("locations row %d: empty loc_id", i+1)
		}
		if seen[row.ID] {
			return nil, fmt.Errorf("locations row %d: duplicate loc_id %s", i+1, row.ID)
		}
		seen[row.ID] = true

		if row.Latitude < -90 || row.Latitude > 90 {
			return nil, fmt.Errorf("locations row %d: latitude %f out of range", i+1, row.Latitude)
		}
		if row.Longitude < -180 || row.Longitude > 180 {
			return nil, fmt.Errorf("locations row %d: longitude %f out of range", i+1, row.Longitude)
		}
	}
	return rows, nil
}
