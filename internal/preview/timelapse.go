package preview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/croplapse/croplapse-export-poc/internal/cache"
	"github.com/croplapse/croplapse-export-poc/internal/ee"
	"github.com/croplapse/croplapse-export-poc/internal/locations"
	"github.com/croplapse/croplapse-export-poc/internal/pipeline"
	"github.com/croplapse/croplapse-export-poc/internal/properties"
	"github.com/croplapse/croplapse-export-poc/internal/utils"
	"github.com/croplapse/croplapse-export-poc/output"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
)

const (
	defaultThumbSize = 256
	frameConcurrency = 4
)

// TimelapseParams describe a local preview for one location.
type TimelapseParams struct {
	Dataset    pipeline.Dataset
	Bands      []string
	Region     orb.Polygon
	LocationID string
	Periods    []locations.Period
	Size       int
	OutPath    string
	FPS        int32
}

// Timelapse fetches one small composite thumbnail per period and stitches
// them chronologically into an MJPEG AVI. Frames are cached under
// ROOT_PATH/data/previews, so a re-run only fetches what is missing.
func Timelapse(ctx context.Context, client *ee.Client, p TimelapseParams) error {
	if len(p.Periods) == 0 {
		return errors.New("no periods to render")
	}
	if p.Size <= 0 {
		p.Size = defaultThumbSize
	}

	frames := make(map[time.Time][]byte, len(p.Periods))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(frameConcurrency)
	for _, period := range p.Periods {
		period := period // capture range variable
		g.Go(func() error {
			frame, err := fetchFrame(ctx, client, p, period)
			if err != nil {
				return fmt.Errorf("frame %s: %w", period, err)
			}
			mu.Lock()
			frames[period.Start] = frame
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ordered := make([][]byte, 0, len(frames))
	for _, start := range utils.SortedDateKeys(frames, true) {
		ordered = append(ordered, frames[start])
	}
	return output.CreateVideoFromFrames(ordered, p.OutPath, p.FPS)
}

// fetchFrame returns the cached thumbnail for a period, or computes it
// remotely and caches it.
func fetchFrame(ctx context.Context, client *ee.Client, p TimelapseParams, period locations.Period) ([]byte, error) {
	key := cache.Key(p.LocationID, p.Dataset.ID, strings.Join(p.Bands, ","), period.String(), p.Size)
	path := filepath.Join(properties.RootPath(), "data", "previews", key+".png")
	if data, err := os.ReadFile(path); err == nil {
		return data, nil
	}

	region := ee.PolygonGeometry(p.Region)
	img := pipeline.BuildVideoCollection(p.Dataset, p.Bands, region, period.Start, period.End).
		Select(p.Bands...).
		Mosaic()

	data, err := client.ComputePixels(ctx, img, ThumbnailGrid(p.Region, p.Size), ee.FormatPNG)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create preview cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to cache frame: %w", err)
	}
	return data, nil
}

// ThumbnailGrid maps a region onto a small lon/lat raster, width fixed and
// height following the aspect ratio.
func ThumbnailGrid(region orb.Polygon, size int) ee.PixelGrid {
	bound := region.Bound()
	lonSpan := bound.Max[0] - bound.Min[0]
	latSpan := bound.Max[1] - bound.Min[1]

	height := int(float64(size) * latSpan / lonSpan)
	if height < 1 {
		height = 1
	}

	return ee.PixelGrid{
		Width:      size,
		Height:     height,
		CRSCode:    "EPSG:4326",
		ScaleX:     lonSpan / float64(size),
		ScaleY:     -latSpan / float64(height),
		TranslateX: bound.Min[0],
		TranslateY: bound.Max[1],
	}
}
