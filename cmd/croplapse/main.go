package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/croplapse/croplapse-export-poc/internal/ee"
	"github.com/croplapse/croplapse-export-poc/internal/export"
	"github.com/croplapse/croplapse-export-poc/internal/locations"
	"github.com/croplapse/croplapse-export-poc/internal/logger"
	"github.com/croplapse/croplapse-export-poc/internal/notification"
	"github.com/croplapse/croplapse-export-poc/internal/pipeline"
	"github.com/croplapse/croplapse-export-poc/internal/preview"
	"github.com/croplapse/croplapse-export-poc/internal/properties"
	"github.com/croplapse/croplapse-export-poc/internal/utils"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var app = cli.NewApp()

func init() {
	app.Name = "croplapse"
	app.Usage = "Bulk satellite timelapse exports through Earth Engine"
	app.HideVersion = true
	app.Commands = []cli.Command{
		{
			Name:  "export",
			Usage: "Plan video exports and submit them to Drive",
			Flags: append(planFlags(),
				cli.StringFlag{Name: "folder", Usage: "Drive folder the videos land in", Required: true},
				cli.IntFlag{Name: "max-active", Value: 10, Usage: "cap on submissions per run"},
				cli.IntFlag{Name: "fps", Value: export.DefaultFramesPerSecond, Usage: "video frames per second"},
				cli.Float64Flag{Name: "scale", Value: export.DefaultScaleMeters, Usage: "export scale in meters"},
				cli.BoolFlag{Name: "dry-run", Usage: "print the plan without submitting"},
				cli.StringFlag{Name: "report", Usage: "write a CSV report to this path after submitting"},
			),
			Action: runExport,
		},
		{
			Name:  "status",
			Usage: "Poll submitted exports and print per-state counts",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "folder", Usage: "Drive folder of the run", Required: true},
				cli.IntFlag{Name: "workers", Value: 5, Usage: "concurrent status requests"},
				cli.DurationFlag{Name: "watch", Usage: "keep polling at this interval until every task finishes"},
				cli.StringFlag{Name: "report", Usage: "write a CSV report to this path after each poll"},
			},
			Action: runStatus,
		},
		{
			Name:  "preview",
			Usage: "Draw the planned regions on a PNG map",
			Flags: append(planFlags(),
				cli.StringFlag{Name: "folder", Value: "preview", Usage: "Drive folder the plan would export into"},
				cli.StringFlag{Name: "out", Value: "plan.png", Usage: "output PNG path"},
				cli.IntFlag{Name: "width", Value: 1024, Usage: "map width in pixels"},
			),
			Action: runPreview,
		},
		{
			Name:  "timelapse",
			Usage: "Render a small local AVI preview for one location",
			Flags: append(planFlags(),
				cli.StringFlag{Name: "loc", Usage: "location id from the CSV", Required: true},
				cli.IntFlag{Name: "size", Value: 256, Usage: "frame width in pixels"},
				cli.IntFlag{Name: "fps", Value: 2, Usage: "preview frames per second"},
				cli.StringFlag{Name: "out", Usage: "output AVI path, defaults to data/previews/<loc>.avi"},
			),
			Action: runTimelapse,
		},
		{
			Name:  "inspect",
			Usage: "Fetch one composite as GeoTIFF and dump its raster structure",
			Flags: append(planFlags(),
				cli.StringFlag{Name: "loc", Usage: "location id from the CSV", Required: true},
				cli.IntFlag{Name: "size", Value: 256, Usage: "raster width in pixels"},
			),
			Action: runInspect,
		},
		{
			Name:      "locations",
			Usage:     "Validate a locations CSV and list its entries",
			ArgsUsage: "file.csv",
			Action:    runLocations,
		},
	}
}

// planFlags returns a fresh slice so each command can append its own flags.
func planFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: "locations", Usage: "CSV with loc_id,latitude,longitude columns", Required: true},
		cli.StringFlag{Name: "dataset", Value: pipeline.MOD09A1.ID, Usage: "image collection id"},
		cli.StringSliceFlag{Name: "bands", Usage: "band subset, defaults to the dataset's full list"},
		cli.IntSliceFlag{Name: "years", Usage: "growing season year (Apr 1 to Sep 30), repeatable"},
		cli.StringSliceFlag{Name: "period", Usage: "explicit period START:END (YYYY-MM-DD), repeatable"},
		cli.Float64Flag{Name: "radius-km", Value: export.DefaultRadiusKm, Usage: "circular buffer radius around each location"},
		cli.StringFlag{Name: "regions", Usage: "GeoJSON file with region_id features, used instead of buffers"},
	}
}

func runExport(c *cli.Context) error {
	locs, err := locations.Load(c.String("locations"))
	if err != nil {
		return err
	}
	periods, err := parsePeriods(c)
	if err != nil {
		return err
	}

	params := planParams(c, c.String("folder"))
	tasks, skipped, err := export.Plan(locs, periods, params)
	if err != nil {
		return err
	}
	color.Green("%d tasks planned, %d already exported", len(tasks), skipped)

	if c.Bool("dry-run") {
		for _, task := range tasks {
			fmt.Println("  " + task.Name)
		}
		return nil
	}
	if len(tasks) == 0 {
		color.Yellow("nothing to submit")
		return nil
	}

	ctx := context.Background()
	client, err := ee.NewClient(ctx)
	if err != nil {
		return err
	}

	manifest := export.LoadManifest(params.Folder)
	runner := export.NewRunner(client, manifest)
	started, remaining, errs := runner.Start(ctx, tasks, c.Int("max-active"))
	color.Green("%d exports started, %d left for a later run", len(started), len(remaining))

	if path := c.String("report"); path != "" {
		if err := export.WriteReport(path, manifest); err != nil {
			errs = append(errs, err)
		} else {
			color.Green("report written to %s", path)
		}
	}

	summary := fmt.Sprintf("Folder %s: %d exports started, %d skipped, %d remaining.", params.Folder, len(started), skipped, len(remaining))
	if len(errs) > 0 {
		for _, err := range errs {
			color.Red("%s", err)
		}
		notification.NotifyRunWarning(fmt.Sprintf("%s %d errors, check the logs.", summary, len(errs)))
		return fmt.Errorf("run finished with %d errors", len(errs))
	}
	notification.NotifyRunSuccess(summary)
	return nil
}

func runStatus(c *cli.Context) error {
	folder := c.String("folder")
	manifest := export.LoadManifest(folder)
	if len(manifest.Records) == 0 {
		return fmt.Errorf("no recorded tasks for folder %s", folder)
	}

	ctx := context.Background()
	client, err := ee.NewClient(ctx)
	if err != nil {
		return err
	}
	runner := export.NewRunner(client, manifest)

	for {
		counts, errs := runner.Poll(ctx, c.Int("workers"))
		for _, err := range errs {
			color.Red("%s", err)
		}
		printCounts(counts)

		if path := c.String("report"); path != "" {
			if err := export.WriteReport(path, manifest); err != nil {
				return err
			}
			color.Green("report written to %s", path)
		}

		if len(manifest.Pending()) == 0 {
			summary := fmt.Sprintf("Folder %s finished: %s.", folder, formatCounts(counts))
			if counts[ee.StateFailed]+counts[ee.StateCancelled] > 0 {
				notification.NotifyRunWarning(summary)
			} else {
				notification.NotifyRunSuccess(summary)
			}
			return nil
		}
		if c.Duration("watch") == 0 {
			return nil
		}
		time.Sleep(c.Duration("watch"))
	}
}

func runPreview(c *cli.Context) error {
	locs, err := locations.Load(c.String("locations"))
	if err != nil {
		return err
	}
	periods, err := parsePeriods(c)
	if err != nil {
		return err
	}

	tasks, skipped, err := export.Plan(locs, periods, planParams(c, c.String("folder")))
	if err != nil {
		return err
	}
	if skipped > 0 {
		color.Yellow("%d already exported tasks are not drawn", skipped)
	}

	out := c.String("out")
	if err := preview.PlanMap(tasks, out, c.Int("width")); err != nil {
		return err
	}
	color.Green("plan map written to %s", out)
	return nil
}

func runTimelapse(c *cli.Context) error {
	loc, err := findLocation(c)
	if err != nil {
		return err
	}
	periods, err := parsePeriods(c)
	if err != nil {
		return err
	}
	dataset, bands, err := datasetBands(c)
	if err != nil {
		return err
	}
	region, err := export.RegionForLocation(*loc, export.Params{
		RadiusKm:    c.Float64("radius-km"),
		RegionsPath: c.String("regions"),
	})
	if err != nil {
		return err
	}

	out := c.String("out")
	if out == "" {
		out = filepath.Join(properties.RootPath(), "data", "previews", loc.ID+".avi")
	}

	ctx := context.Background()
	client, err := ee.NewClient(ctx)
	if err != nil {
		return err
	}

	err = preview.Timelapse(ctx, client, preview.TimelapseParams{
		Dataset:    dataset,
		Bands:      bands,
		Region:     region,
		LocationID: loc.ID,
		Periods:    periods,
		Size:       c.Int("size"),
		OutPath:    out,
		FPS:        int32(c.Int("fps")),
	})
	if err != nil {
		return err
	}
	color.Green("timelapse written to %s", out)
	return nil
}

func runInspect(c *cli.Context) error {
	loc, err := findLocation(c)
	if err != nil {
		return err
	}
	periods, err := parsePeriods(c)
	if err != nil {
		return err
	}
	dataset, bands, err := datasetBands(c)
	if err != nil {
		return err
	}
	region, err := export.RegionForLocation(*loc, export.Params{
		RadiusKm:    c.Float64("radius-km"),
		RegionsPath: c.String("regions"),
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := ee.NewClient(ctx)
	if err != nil {
		return err
	}

	report, err := preview.Inspect(ctx, client, dataset, bands, region, periods[0], c.Int("size"))
	if err != nil {
		return err
	}
	color.Green("%s %s: %s", loc.ID, periods[0], report)
	return nil
}

func runLocations(c *cli.Context) error {
	path := c.Args().Get(0)
	if path == "" {
		return errors.New("locations CSV path is required")
	}
	locs, err := locations.Load(path)
	if err != nil {
		return err
	}

	color.Green("%d valid locations", len(locs))
	for _, loc := range locs {
		fmt.Printf("  %-24s %10.5f %11.5f\n", loc.ID, loc.Latitude, loc.Longitude)
	}
	return nil
}

func parsePeriods(c *cli.Context) ([]locations.Period, error) {
	periods := locations.Seasons(c.IntSlice("years"))
	for _, s := range c.StringSlice("period") {
		p, err := locations.ParsePeriod(s)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	if len(periods) == 0 {
		return nil, errors.New("no time range given, pass --years or --period")
	}
	return periods, nil
}

func planParams(c *cli.Context, folder string) export.Params {
	return export.Params{
		Dataset:         pipeline.LookupDataset(c.String("dataset")),
		Bands:           c.StringSlice("bands"),
		Folder:          folder,
		RadiusKm:        c.Float64("radius-km"),
		RegionsPath:     c.String("regions"),
		FramesPerSecond: c.Int("fps"),
		ScaleMeters:     c.Float64("scale"),
		CRS:             export.DefaultCRS,
	}
}

func datasetBands(c *cli.Context) (pipeline.Dataset, []string, error) {
	dataset := pipeline.LookupDataset(c.String("dataset"))
	bands := c.StringSlice("bands")
	if len(bands) == 0 {
		bands = dataset.Bands
	}
	if len(bands) == 0 {
		return dataset, nil, fmt.Errorf("dataset %s has no default bands, pass them explicitly", dataset.ID)
	}
	return dataset, bands, nil
}

func findLocation(c *cli.Context) (*locations.Location, error) {
	locs, err := locations.Load(c.String("locations"))
	if err != nil {
		return nil, err
	}
	id := c.String("loc")
	for i := range locs {
		if locs[i].ID == id {
			return &locs[i], nil
		}
	}
	return nil, fmt.Errorf("location %s not found in %s", id, c.String("locations"))
}

func printCounts(counts map[string]int) {
	for _, state := range utils.SortedKeys(counts) {
		switch state {
		case ee.StateSucceeded:
			color.Green("%4d %s", counts[state], state)
		case ee.StateFailed, ee.StateCancelled:
			color.Red("%4d %s", counts[state], state)
		default:
			color.Yellow("%4d %s", counts[state], state)
		}
	}
}

func formatCounts(counts map[string]int) string {
	parts := make([]string, 0, len(counts))
	for _, state := range utils.SortedKeys(counts) {
		parts = append(parts, fmt.Sprintf("%d %s", counts[state], state))
	}
	return strings.Join(parts, ", ")
}

func printBanner() {
	crop := figure.NewFigure("Crop", "isometric1", true)
	lapse := figure.NewFigure("Lapse", "isometric1", true)
	color.Cyan(crop.String())
	color.Cyan(lapse.String())
	fmt.Println()
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			// 3 levels up is often the panic source
			pc, file, line, ok := runtime.Caller(3)
			location := "unknown location"
			if ok {
				fn := runtime.FuncForPC(pc)
				location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
			}

			color.Red("PANIC: %v", r)
			color.Red("Location: %s", location)

			stack := debug.Stack()
			notification.NotifyRunFailure(fmt.Sprintf("Croplapse CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack))
			os.Exit(1)
		}
	}()

	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			logger.Log.Debug("no .env file found, relying on ambient variables")
		}
	}
	if os.Getenv("DEBUG") == "1" {
		logger.Log.SetLevel(logrus.DebugLevel)
	}

	printBanner()
	if err := app.Run(os.Args); err != nil {
		color.Red("%s", err)
		os.Exit(1)
	}
}
