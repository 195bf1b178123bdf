package vision

import (
	"image"

	"github.com/go-vgo/robotgo"
)

// captureScreen grabs the display through robotgo, cropped when a region
// is given.
func captureScreen(region *Region) (image.Image, error) {
	if region != nil {
		return robotgo.CaptureImg(region.X, region.Y, region.W, region.H)
	}
	return robotgo.CaptureImg()
}
