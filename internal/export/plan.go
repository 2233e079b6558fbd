package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/croplapse/croplapse-export-poc/internal/geometry"
	"github.com/croplapse/croplapse-export-poc/internal/locations"
	"github.com/croplapse/croplapse-export-poc/internal/pipeline"
	"github.com/croplapse/croplapse-export-poc/internal/properties"
	"github.com/paulmach/orb"
)

// Export constants the videos were tuned with.
const (
	DefaultFramesPerSecond = 12
	DefaultScaleMeters     = 500
	DefaultCRS             = "EPSG:4326"
	DefaultRadiusKm        = 50
)

// Task is one planned video export: a band chunk of one location over one
// period.
type Task struct {
	Name       string
	LocationID string
	Center     orb.Point
	Region     orb.Polygon

	// Bands is the chunk this video carries; AllBands is the full set the
	// collection is normalized over before selection.
	Bands    []string
	AllBands []string

	Dataset         pipeline.Dataset
	Period          locations.Period
	Folder          string
	OutputPath      string
	FramesPerSecond int
	ScaleMeters     float64
	CRS             string
}

// Params configure planning for a bulk run.
type Params struct {
	Dataset pipeline.Dataset
	Bands   []string
	Folder  string

	// RadiusKm sizes the circular buffer around each location. When
	// RegionsPath is set, polygons are looked up from that GeoJSON file by
	// loc_id instead.
	RadiusKm    float64
	RegionsPath string

	FramesPerSecond int
	ScaleMeters     float64
	CRS             string
}

// Plan assembles the pending task list for locations × periods × band
// chunks, skipping any task whose output file already exists under the
// synced export root. The export folder is created when missing. Returns
// the tasks and the number of skips.
func Plan(locs []locations.Location, periods []locations.Period, p Params) ([]Task, int, error) {
	if len(p.Bands) == 0 {
		p.Bands = p.Dataset.Bands
	}
	if len(p.Bands) == 0 {
		return nil, 0, fmt.Errorf("dataset %s has no default bands, pass them explicitly", p.Dataset.ID)
	}

	exportDir := filepath.Join(properties.ExportRoot(), p.Folder)
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return nil, 0, fmt.Errorf("failed to create export folder %s: %w", exportDir, err)
	}

	chunks := BandChunks(p.Bands)
	var tasks []Task
	skipped := 0
	for _, loc := range locs {
		region, err := RegionForLocation(loc, p)
		if err != nil {
			return nil, 0, fmt.Errorf("location %s: %w", loc.ID, err)
		}

		for _, period := range periods {
			for _, chunk := range chunks {
				name := VideoName(chunk, loc.ID, period)
				outputPath := filepath.Join(exportDir, name+".mp4")
				if _, err := os.Stat(outputPath); err == nil {
					skipped++
					continue
				}

				tasks = append(tasks, Task{
					Name:            name,
					LocationID:      loc.ID,
					Center:          loc.Center(),
					Region:          region,
					Bands:           chunk,
					AllBands:        p.Bands,
					Dataset:         p.Dataset,
					Period:          period,
					Folder:          p.Folder,
					OutputPath:      outputPath,
					FramesPerSecond: p.FramesPerSecond,
					ScaleMeters:     p.ScaleMeters,
					CRS:             p.CRS,
				})
			}
		}
	}
	return tasks, skipped, nil
}

// RegionForLocation resolves the export polygon for one location, either a
// circular buffer around its center or a polygon looked up from a GeoJSON
// file by id.
func RegionForLocation(loc locations.Location, p Params) (orb.Polygon, error) {
	if p.RegionsPath == "" {
		return geometry.CircularBuffer(loc.Center(), p.RadiusKm, 0), nil
	}

	geom, err := geometry.LoadRegionFromGeoJSON(p.RegionsPath, loc.ID)
	if err != nil {
		return nil, err
	}
	return geometry.AsPolygon(geom)
}
