package ee

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// VideoExport describes a video:export task writing an MP4 to Drive.
type VideoExport struct {
	Description     string
	Folder          string
	FileNamePrefix  string
	FramesPerSecond int
	Region          Geometry
	ScaleMeters     float64
	CRS             string
}

// ExportVideoToDrive submits the collection as a server-side video render.
// Region, scale and CRS are baked into the expression by wrapping every
// frame, so the rendered grid is fully determined before submission. The
// returned operation is the task handle; rendering continues after this call
// returns. A fresh requestId makes accidental resubmission idempotent.
func (c *Client) ExportVideoToDrive(ctx context.Context, collection ImageCollection, params VideoExport) (*Operation, error) {
	prepared := collection.Map(func(img Image) Image {
		return img.ClipToBoundsAndScale(params.Region, params.ScaleMeters).
			Reproject(params.CRS, params.ScaleMeters)
	})

	payload := map[string]interface{}{
		"expression":  NewExpression(prepared),
		"description": params.Description,
		"videoOptions": map[string]interface{}{
			"framesPerSecond": params.FramesPerSecond,
		},
		"fileExportOptions": map[string]interface{}{
			"fileFormat": "MP4",
			"driveDestination": map[string]interface{}{
				"folder":         params.Folder,
				"filenamePrefix": params.FileNamePrefix,
			},
		},
		"requestId": uuid.NewString(),
	}

	var op Operation
	path := fmt.Sprintf("/projects/%s/video:export", c.project)
	if err := c.postJSON(ctx, path, payload, &op); err != nil {
		return nil, fmt.Errorf("failed to start video export %s: %w", params.Description, err)
	}
	return &op, nil
}
