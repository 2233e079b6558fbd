package output

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/icza/mjpeg"
)

// CreateVideoFromFrames stitches encoded PNG or JPEG frames into an MJPEG
// AVI. Frame dimensions come from the first frame; fps below 1 falls back
// to 2, slow enough to eyeball individual composites.
func CreateVideoFromFrames(frames [][]byte, outputPath string, fps int32) error {
	if len(frames) == 0 {
		return errors.New("no frames to stitch")
	}
	if !strings.Contains(outputPath, ".avi") {
		outputPath += ".avi"
	}
	if fps < 1 {
		fps = 2
	}

	first, _, err := image.Decode(bytes.NewReader(frames[0]))
	if err != nil {
		return err
	}
	bounds := first.Bounds()
	width := int32(bounds.Dx())
	height := int32(bounds.Dy())

	writer, err := mjpeg.New(outputPath, width, height, fps)
	if err != nil {
		return err
	}
	defer writer.Close()

	for _, frame := range frames {
		img, _, err := image.Decode(bytes.NewReader(frame))
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100})
		if err != nil {
			return err
		}

		err = writer.AddFrame(buf.Bytes())
		if err != nil {
			return err
		}
	}

	return nil
}
