package preview

import (
	"errors"
	"fmt"

	"github.com/croplapse/croplapse-export-poc/internal/export"
	"github.com/croplapse/croplapse-export-poc/internal/utils"
	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
)

// PlanMap renders every planned region outline and its center on a simple
// equirectangular canvas, so the operator can eyeball buffer placement
// before spending export quota.
func PlanMap(tasks []export.Task, outPath string, width int) error {
	if len(tasks) == 0 {
		return errors.New("nothing to draw, the plan is empty")
	}
	if width <= 0 {
		width = 1024
	}

	regions := make(map[string]orb.Polygon)
	centers := make(map[string]orb.Point)
	for _, task := range tasks {
		regions[task.LocationID] = task.Region
		centers[task.LocationID] = task.Center
	}

	bound := paddedBound(regions)
	lonSpan := bound.Max[0] - bound.Min[0]
	latSpan := bound.Max[1] - bound.Min[1]

	height := int(float64(width) * latSpan / lonSpan)
	if height < 64 {
		height = 64
	}
	if height > 4096 {
		height = 4096
	}

	toPixel := func(p orb.Point) (float64, float64) {
		x := (p[0] - bound.Min[0]) / lonSpan * float64(width)
		y := (bound.Max[1] - p[1]) / latSpan * float64(height)
		return x, y
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1) // White background
	dc.Clear()

	for _, id := range utils.SortedKeys(regions) {
		ring := regions[id][0]
		for i, pt := range ring {
			x, y := toPixel(pt)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		dc.SetRGBA(0.2, 0.5, 0.9, 0.25)
		dc.FillPreserve()
		dc.SetRGB(0.1, 0.3, 0.7)
		dc.SetLineWidth(2)
		dc.Stroke()

		cx, cy := toPixel(centers[id])
		dc.SetRGB(0.8, 0.1, 0.1)
		dc.DrawCircle(cx, cy, 3)
		dc.Fill()

		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(id, cx, cy-10, 0.5, 0.5)
	}

	if err := dc.SavePNG(outPath); err != nil {
		return fmt.Errorf("failed to save plan map: %w", err)
	}
	return nil
}

// paddedBound unions every region bound and widens it by a tenth per side,
// with a floor so a single tiny region still renders visibly.
func paddedBound(regions map[string]orb.Polygon) orb.Bound {
	var bound orb.Bound
	first := true
	for _, region := range regions {
		if first {
			bound = region.Bound()
			first = false
			continue
		}
		bound = bound.Union(region.Bound())
	}

	padLon := (bound.Max[0] - bound.Min[0]) * 0.1
	padLat := (bound.Max[1] - bound.Min[1]) * 0.1
	if padLon < 0.05 {
		padLon = 0.05
	}
	if padLat < 0.05 {
		padLat = 0.05
	}
	bound.Min[0] -= padLon
	bound.Max[0] += padLon
	bound.Min[1] -= padLat
	bound.Max[1] += padLat
	return bound
}
