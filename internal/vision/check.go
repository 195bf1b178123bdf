// Package vision answers "is this reference image on screen right now" by
// normalized cross-correlation template matching over grayscale captures.
// Decoded templates are held in a small LRU cache keyed by resolved path.
package vision

import (
	"github.com/tidwall/gjson"

	mderrors "github.com/macrostudio/macrod/internal/errors"
)

// DefaultConfidence is the match threshold applied when an image check
// does not carry one.
const DefaultConfidence = 0.9

// Region restricts capture and matching to a rectangular screen area.
type Region struct {
	X, Y, W, H int
}

// Check describes one image lookup: the reference image identifier, the
// minimum accepted correlation score, and an optional capture region.
type Check struct {
	Value      string
	Confidence float64
	Region     *Region
}

// ParseCheck reads the image-check fields from an action node, applying
// the confidence default and clamp. Validated actions never fail here;
// the region error covers hand-built nodes.
func ParseCheck(action gjson.Result) (Check, error) {
	confidence := DefaultConfidence
	if c := action.Get("confidence"); c.Type == gjson.Number {
		confidence = c.Num
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	var region *Region
	if r := action.Get("region"); r.Exists() && r.Type != gjson.Null {
		vals := r.Array()
		if !r.IsArray() || len(vals) != 4 {
			return Check{}, mderrors.NewAction("region must be [x, y, w, h]", nil)
		}
		for _, v := range vals {
			if v.Type != gjson.Number {
				return Check{}, mderrors.NewAction("region must be [x, y, w, h]", nil)
			}
		}
		region = &Region{
			X: int(vals[0].Int()),
			Y: int(vals[1].Int()),
			W: int(vals[2].Int()),
			H: int(vals[3].Int()),
		}
	}

	return Check{
		Value:      action.Get("value").String(),
		Confidence: confidence,
		Region:     region,
	}, nil
}
