package pipeline

import (
	"time"

	"github.com/croplapse/croplapse-export-poc/internal/ee"
)

const (
	// Band statistics are reduced at the dataset's native 500 m scale.
	statsScaleMeters = 500
	statsMaxPixels   = 1e11

	normalizeFactor = 256
)

// QABits extracts the [start, end) bit range from the first band of a QA
// image, shifted down to the least significant bits, as a single band named
// newName.
func QABits(img ee.Image, start, end int, newName string) ee.Image {
	pattern := 0
	for i := start; i < end; i++ {
		pattern |= 1 << i
	}
	return img.SelectRename(0, newName).BitwiseAnd(pattern).RightShift(start)
}

// MaskClouds hides every pixel whose cloud algorithm flag is anything but
// clear.
func MaskClouds(img ee.Image, d Dataset) ee.Image {
	quality := QABits(img.Select(d.QABand), d.CloudBitStart, d.CloudBitEnd, "internal_quality_flag")
	return img.UpdateMask(quality.Eq(0))
}

// NormalizeBand rescales one band to the uint8 range across the whole
// collection: (x - min) / (max - min) scaled by 256 and cast, where min and
// max are reduced over the region from the per-pixel min/max composites. The
// normalized band replaces the original in place via combine-overwrite.
func NormalizeBand(coll ee.ImageCollection, band string, region ee.Geometry) ee.ImageCollection {
	selected := coll.Select(band)

	maxValue := selected.Max().
		ReduceRegion(ee.MaxReducer(), region, statsScaleMeters, statsMaxPixels).
		GetNumber(band)
	minValue := selected.Min().
		ReduceRegion(ee.MinReducer(), region, statsScaleMeters, statsMaxPixels).
		GetNumber(band)

	normalized := selected.Map(func(img ee.Image) ee.Image {
		return img.Subtract(minValue).
			Divide(maxValue.Subtract(minValue)).
			Multiply(normalizeFactor).
			Uint8()
	})

	return coll.Combine(normalized, true)
}

// BuildVideoCollection assembles the whole server-side pipeline for one
// region and period: load, filter by date and bounds, cloud-mask when the
// dataset supports it, mask pixels outside the region, normalize every
// requested band and cast frames to uint8. The result is ready for band
// selection and video export.
func BuildVideoCollection(d Dataset, bands []string, region ee.Geometry, start, end time.Time) ee.ImageCollection {
	coll := ee.LoadCollection(d.ID).
		FilterDate(start, end).
		FilterBounds(region)

	if d.HasCloudMask() {
		coll = coll.Map(func(img ee.Image) ee.Image {
			return MaskClouds(img, d)
		})
	}

	regionMask := ee.ConstantImage(1).Clip(region).Mask()
	coll = coll.Map(func(img ee.Image) ee.Image {
		return img.UpdateMask(regionMask)
	})

	for _, band := range bands {
		coll = NormalizeBand(coll, band, region)
	}

	return coll.Map(func(img ee.Image) ee.Image {
		return img.Uint8()
	})
}
