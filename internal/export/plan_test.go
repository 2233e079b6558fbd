package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/croplapse/croplapse-export-poc/internal/locations"
	"github.com/croplapse/croplapse-export-poc/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	return Params{
		Dataset:         pipeline.MOD09A1,
		Folder:          "croplapse_videos",
		RadiusKm:        DefaultRadiusKm,
		FramesPerSecond: DefaultFramesPerSecond,
		ScaleMeters:     DefaultScaleMeters,
		CRS:             DefaultCRS,
	}
}

func testLocations() []locations.Location {
	return []locations.Location{
		{ID: "17", Latitude: -3.1, Longitude: -47.2},
		{ID: "42", Latitude: 40.7, Longitude: -74.0},
	}
}

func TestPlanBuildsLocationPeriodChunkTasks(t *testing.T) {
	t.Setenv("EXPORT_ROOT", t.TempDir())

	tasks, skipped, err := Plan(testLocations(), locations.Seasons([]int{2021}), testParams())
	require.NoError(t, err)
	assert.Zero(t, skipped)

	// 2 locations x 1 period x 3 chunks of the 7 default bands.
	require.Len(t, tasks, 6)

	first := tasks[0]
	assert.Equal(t, "17", first.LocationID)
	assert.Equal(t, []string{"sur_refl_b01", "sur_refl_b02", "sur_refl_b03"}, first.Bands)
	assert.Len(t, first.AllBands, 7)
	assert.Equal(t, 65, len(first.Region[0]))
	assert.Equal(t, 12, first.FramesPerSecond)
	assert.True(t, filepath.IsAbs(first.OutputPath))
	assert.Equal(t, first.Name+".mp4", filepath.Base(first.OutputPath))
}

func TestPlanCreatesExportFolder(t *testing.T) {
	root := t.TempDir()
	t.Setenv("EXPORT_ROOT", root)

	_, _, err := Plan(testLocations(), locations.Seasons([]int{2021}), testParams())
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(root, "croplapse_videos"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPlanSkipsExistingVideos(t *testing.T) {
	root := t.TempDir()
	t.Setenv("EXPORT_ROOT", root)

	folder := filepath.Join(root, "croplapse_videos")
	require.NoError(t, os.MkdirAll(folder, 0755))

	existing := VideoName(
		[]string{"sur_refl_b01", "sur_refl_b02", "sur_refl_b03"},
		"17",
		locations.Season(2021),
	)
	require.NoError(t, os.WriteFile(filepath.Join(folder, existing+".mp4"), []byte("mp4"), 0644))

	tasks, skipped, err := Plan(testLocations(), locations.Seasons([]int{2021}), testParams())
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Len(t, tasks, 5)
	for _, task := range tasks {
		assert.NotEqual(t, existing, task.Name)
	}
}

func TestPlanRequiresBandsForUnknownDataset(t *testing.T) {
	t.Setenv("EXPORT_ROOT", t.TempDir())

	p := testParams()
	p.Dataset = pipeline.LookupDataset("COPERNICUS/S2_SR")

	_, _, err := Plan(testLocations(), locations.Seasons([]int{2021}), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no default bands")
}

func TestPlanExplicitBandsOverrideDefaults(t *testing.T) {
	t.Setenv("EXPORT_ROOT", t.TempDir())

	p := testParams()
	p.Bands = []string{"sur_refl_b01", "sur_refl_b04"}

	tasks, _, err := Plan(testLocations()[:1], locations.Seasons([]int{2021}), p)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, []string{"sur_refl_b01", "sur_refl_b04"}, tasks[0].Bands)
}
