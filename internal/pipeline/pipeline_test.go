package pipeline

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/croplapse/croplapse-export-poc/internal/ee"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serialize(t *testing.T, v ee.Value) string {
	t.Helper()
	data, err := json.Marshal(ee.NewExpression(v))
	require.NoError(t, err)
	return string(data)
}

func testRegion() ee.Geometry {
	return ee.PolygonGeometry(orb.Polygon{
		orb.Ring{{-47.5, -3.5}, {-46.9, -3.5}, {-46.9, -2.8}, {-47.5, -2.8}, {-47.5, -3.5}},
	})
}

func TestQABitsPattern(t *testing.T) {
	img := ee.ConstantImage(0)
	raw := serialize(t, QABits(img, 8, 13, "internal_quality_flag"))

	// Bits 8..12 set: 0x1F00.
	assert.Contains(t, raw, `"constantValue":7936`)
	assert.Contains(t, raw, `"constantValue":8`)
	assert.Contains(t, raw, "internal_quality_flag")
	assert.Contains(t, raw, `"functionName":"Image.bitwiseAnd"`)
	assert.Contains(t, raw, `"functionName":"Image.rightShift"`)
}

func TestMaskCloudsUsesQABand(t *testing.T) {
	raw := serialize(t, MaskClouds(ee.ConstantImage(0), MOD09A1))

	assert.Contains(t, raw, "StateQA")
	assert.Contains(t, raw, `"functionName":"Image.eq"`)
	assert.Contains(t, raw, `"functionName":"Image.updateMask"`)
}

func TestNormalizeBandGraphShape(t *testing.T) {
	coll := ee.LoadCollection(MOD09A1.ID)
	raw := serialize(t, NormalizeBand(coll, "sur_refl_b01", testRegion()))

	for _, fn := range []string{
		"reduce.min",
		"reduce.max",
		"Image.reduceRegion",
		"Dictionary.get",
		"Image.subtract",
		"Image.divide",
		"Image.multiply",
		"Image.uint8",
		"ImageCollection.combine",
	} {
		assert.Contains(t, raw, `"functionName":"`+fn+`"`, fn)
	}
	assert.Contains(t, raw, `"constantValue":256`)
	assert.Contains(t, raw, `"overwrite":{"constantValue":true}`)
	assert.Equal(t, 2, strings.Count(raw, `"functionName":"Image.reduceRegion"`))
}

func TestBuildVideoCollection(t *testing.T) {
	start := time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 9, 30, 0, 0, 0, 0, time.UTC)
	coll := BuildVideoCollection(MOD09A1, []string{"sur_refl_b01", "sur_refl_b02"}, testRegion(), start, end)
	raw := serialize(t, coll)

	assert.Contains(t, raw, "MODIS/061/MOD09A1")
	assert.Contains(t, raw, `"functionName":"Filter.dateRangeContains"`)
	assert.Contains(t, raw, `"functionName":"Filter.intersects"`)
	assert.Contains(t, raw, "StateQA")
	assert.Contains(t, raw, `"functionName":"Image.clip"`)
	assert.Contains(t, raw, `"functionName":"Image.mask"`)

	// One map for the cloud mask, one for the region mask, two per
	// normalized band (select + rescale), one for the final cast.
	assert.Equal(t, 7, strings.Count(raw, `"functionName":"Collection.map"`))
}

func TestBuildVideoCollectionWithoutCloudMask(t *testing.T) {
	start := time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 9, 30, 0, 0, 0, 0, time.UTC)
	bare := Dataset{ID: "COPERNICUS/S2_SR"}
	raw := serialize(t, BuildVideoCollection(bare, []string{"B4"}, testRegion(), start, end))

	assert.NotContains(t, raw, "StateQA")
	assert.NotContains(t, raw, `"functionName":"Image.bitwiseAnd"`)
	assert.Equal(t, 4, strings.Count(raw, `"functionName":"Collection.map"`))
}

func TestLookupDataset(t *testing.T) {
	d := LookupDataset("MODIS/061/MOD09A1")
	assert.Len(t, d.Bands, 7)
	assert.True(t, d.HasCloudMask())

	unknown := LookupDataset("COPERNICUS/S2_SR")
	assert.Empty(t, unknown.Bands)
	assert.False(t, unknown.HasCloudMask())
}
