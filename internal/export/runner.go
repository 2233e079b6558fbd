package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/croplapse/croplapse-export-poc/internal/ee"
	"github.com/croplapse/croplapse-export-poc/internal/logger"
	"github.com/croplapse/croplapse-export-poc/internal/pipeline"
	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"
)

// startWait keeps task submissions under the platform's start rate limit.
const startWait = 500 * time.Millisecond

// Runner submits planned tasks and refreshes manifest state.
type Runner struct {
	client   *ee.Client
	manifest *Manifest
	wait     time.Duration
}

func NewRunner(client *ee.Client, manifest *Manifest) *Runner {
	return &Runner{client: client, manifest: manifest, wait: startWait}
}

// Start submits at most n tasks this run, waiting between submissions.
// Every accepted task is recorded in the manifest before the next one
// starts, so an interrupted run never loses operation handles. Failures are
// collected instead of aborting: one bad region must not sink a bulk run.
// Returns the started tasks, the tasks left for a later run, and the errors.
func (r *Runner) Start(ctx context.Context, tasks []Task, n int) ([]Task, []Task, []error) {
	count := len(tasks)
	if n < count {
		count = n
	}
	toStart, remaining := tasks[:count], tasks[count:]

	var errs []error
	started := make([]Task, 0, count)
	bar := progressbar.Default(int64(count), "submitting exports")
	for _, task := range toStart {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		op, err := r.submit(ctx, task)
		bar.Add(1)
		if err != nil {
			errs = append(errs, fmt.Errorf("task %s: %w", task.Name, err))
			logger.Log.WithField("task", task.Name).Errorf("submission failed: %v", err)
		} else {
			started = append(started, task)
			now := time.Now()
			r.manifest.Upsert(TaskRecord{
				Name:        task.Name,
				Operation:   op.Name,
				State:       op.State(),
				Dataset:     task.Dataset.ID,
				Bands:       task.Bands,
				LocationID:  task.LocationID,
				Start:       task.Period.Start.Format("2006-01-02"),
				End:         task.Period.End.Format("2006-01-02"),
				Folder:      task.Folder,
				OutputPath:  task.OutputPath,
				SubmittedAt: now,
				UpdatedAt:   now,
			})
			if err := r.manifest.Save(); err != nil {
				errs = append(errs, err)
			}
		}

		if err := r.sleep(ctx); err != nil {
			errs = append(errs, err)
			break
		}
	}
	return started, remaining, errs
}

func (r *Runner) submit(ctx context.Context, task Task) (*ee.Operation, error) {
	region := ee.PolygonGeometry(task.Region)
	coll := pipeline.BuildVideoCollection(
		task.Dataset, task.AllBands, region,
		task.Period.Start, task.Period.End,
	).Select(task.Bands...)

	return r.client.ExportVideoToDrive(ctx, coll, ee.VideoExport{
		Description:     task.Name,
		Folder:          task.Folder,
		FileNamePrefix:  task.Name,
		FramesPerSecond: task.FramesPerSecond,
		Region:          region,
		ScaleMeters:     task.ScaleMeters,
		CRS:             task.CRS,
	})
}

func (r *Runner) sleep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.wait):
		return nil
	}
}

// Poll refreshes every non-terminal manifest record through a bounded
// worker pool, saves the manifest once, and returns per-state counts.
func (r *Runner) Poll(ctx context.Context, workers int) (map[string]int, []error) {
	pending := r.manifest.Pending()
	var errs []error

	if len(pending) > 0 {
		wp := workerpool.New(workers)
		var mu sync.Mutex
		bar := progressbar.Default(int64(len(pending)), "polling tasks")

		for _, rec := range pending {
			rec := rec // capture range variable
			wp.Submit(func() {
				defer bar.Add(1)
				op, err := r.client.GetOperation(ctx, rec.Operation)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, fmt.Errorf("task %s: %w", rec.Name, err))
					return
				}
				rec.State = op.State()
				rec.UpdatedAt = time.Now()
				if op.Error != nil {
					rec.Error = op.Error.Message
				}
				r.manifest.Upsert(rec)
			})
		}
		wp.StopWait()

		if err := r.manifest.Save(); err != nil {
			errs = append(errs, err)
		}
	}

	return r.manifest.Counts(), errs
}
