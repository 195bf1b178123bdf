package vision

import (
	"image"
	"os"

	mderrors "github.com/macrostudio/macrod/internal/errors"
)

// CaptureFunc grabs the current screen, cropped to region when non-nil.
type CaptureFunc func(region *Region) (image.Image, error)

// Matcher locates reference images on screen. Root anchors relative
// image identifiers; Capture is replaceable so tests can feed synthetic
// frames. Safe for concurrent use.
type Matcher struct {
	Root    string
	Capture CaptureFunc
	cache   *templateCache
}

// NewMatcher builds a Matcher resolving images against root and
// capturing through robotgo.
func NewMatcher(root string) *Matcher {
	return &Matcher{
		Root:    root,
		Capture: captureScreen,
		cache:   newTemplateCache(templateCacheCap),
	}
}

// Found reports whether the check's image is currently visible at or
// above its confidence threshold.
func (m *Matcher) Found(c Check) (bool, error) {
	_, found, err := m.Locate(c)
	return found, err
}

// Locate runs the check and, on a match, returns the center of the best
// match in absolute screen coordinates.
func (m *Matcher) Locate(c Check) (image.Point, bool, error) {
	tpl, err := m.template(c.Value)
	if err != nil {
		return image.Point{}, false, err
	}

	frame, err := m.Capture(c.Region)
	if err != nil {
		return image.Point{}, false, mderrors.NewResource("screen capture failed", err)
	}
	screen := ToGray(frame)

	score, at, ok := MatchTemplate(screen, tpl)
	if !ok || score < c.Confidence {
		return image.Point{}, false, nil
	}

	center := image.Point{
		X: at.X + tpl.Rect.Dx()/2,
		Y: at.Y + tpl.Rect.Dy()/2,
	}
	if c.Region != nil {
		center.X += c.Region.X
		center.Y += c.Region.Y
	}
	return center, true, nil
}

// template returns the decoded grayscale reference image, consulting the
// LRU cache keyed by resolved path.
func (m *Matcher) template(value string) (*image.Gray, error) {
	path, err := ResolveImagePath(m.Root, value)
	if err != nil {
		return nil, err
	}

	if img, ok := m.cache.get(path); ok {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, mderrors.NewResource("failed to load image", err)
	}
	defer f.Close()

	decoded, _, err := image.Decode(f)
	if err != nil {
		return nil, mderrors.NewResource("failed to load image", nil)
	}

	gray := ToGray(decoded)
	m.cache.put(path, gray)
	return gray, nil
}

// CacheLen reports how many templates are currently cached.
func (m *Matcher) CacheLen() int {
	return m.cache.len()
}
