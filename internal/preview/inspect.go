package preview

import (
	"context"
	"fmt"
	"os"

	"github.com/airbusgeo/godal"
	"github.com/croplapse/croplapse-export-poc/internal/ee"
	"github.com/croplapse/croplapse-export-poc/internal/locations"
	"github.com/croplapse/croplapse-export-poc/internal/pipeline"
	"github.com/paulmach/orb"
)

// InspectReport summarizes one composite fetched as a GeoTIFF.
type InspectReport struct {
	Width        int
	Height       int
	Bands        int
	BlockSizeX   int
	BlockSizeY   int
	GeoTransform [6]float64
}

func (r *InspectReport) String() string {
	return fmt.Sprintf("%dx%d px, %d bands, %dx%d blocks, origin (%f, %f), pixel size (%f, %f)",
		r.Width, r.Height, r.Bands, r.BlockSizeX, r.BlockSizeY,
		r.GeoTransform[0], r.GeoTransform[3], r.GeoTransform[1], r.GeoTransform[5])
}

// Inspect pulls a single composite as a GeoTIFF and reads its structure
// back with GDAL. Cheap sanity check that the pipeline produces usable
// rasters before queueing hours of export work.
func Inspect(ctx context.Context, client *ee.Client, dataset pipeline.Dataset, bands []string, region orb.Polygon, period locations.Period, size int) (*InspectReport, error) {
	if size <= 0 {
		size = defaultThumbSize
	}

	img := pipeline.BuildVideoCollection(dataset, bands, ee.PolygonGeometry(region), period.Start, period.End).
		Select(bands...).
		Mosaic()

	data, err := client.ComputePixels(ctx, img, ThumbnailGrid(region, size), ee.FormatGeoTIFF)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "croplapse-inspect-*.tif")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp tiff: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp tiff: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp tiff: %w", err)
	}

	godal.RegisterInternalDrivers()
	ds, err := godal.Open(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to open fetched tiff: %w", err)
	}
	defer ds.Close()

	geoTransform, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("failed to read geotransform: %w", err)
	}

	structure := ds.Structure()
	return &InspectReport{
		Width:        structure.SizeX,
		Height:       structure.SizeY,
		Bands:        structure.NBands,
		BlockSizeX:   structure.BlockSizeX,
		BlockSizeY:   structure.BlockSizeY,
		GeoTransform: geoTransform,
	}, nil
}
