package ee

import (
	"context"
	"fmt"
	"net/http"
)

// Pixel encodings accepted by pixels:compute.
const (
	FormatPNG     = "PNG"
	FormatGeoTIFF = "GEO_TIFF"
)

// PixelGrid pins an image expression to a concrete raster: size, projection
// and the affine transform from pixel space to projected coordinates.
type PixelGrid struct {
	Width      int
	Height     int
	CRSCode    string
	ScaleX     float64
	ScaleY     float64
	TranslateX float64
	TranslateY float64
}

// ComputePixels renders the image on the given grid and returns the encoded
// bytes. Unlike exports this is synchronous and limited to small rasters, so
// it is only used for previews.
func (c *Client) ComputePixels(ctx context.Context, img Image, grid PixelGrid, fileFormat string) ([]byte, error) {
	payload := map[string]interface{}{
		"expression": NewExpression(img),
		"fileFormat": fileFormat,
		"grid": map[string]interface{}{
			"dimensions": map[string]interface{}{
				"width":  grid.Width,
				"height": grid.Height,
			},
			"affineTransform": map[string]interface{}{
				"scaleX":     grid.ScaleX,
				"shearX":     0,
				"translateX": grid.TranslateX,
				"scaleY":     grid.ScaleY,
				"shearY":     0,
				"translateY": grid.TranslateY,
			},
			"crsCode": grid.CRSCode,
		},
	}

	path := fmt.Sprintf("/projects/%s/image:computePixels", c.project)
	body, err := c.doRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to compute pixels: %w", err)
	}
	return body, nil
}
