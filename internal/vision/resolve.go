package vision

import (
	"os"
	"path/filepath"
	"strings"

	mderrors "github.com/macrostudio/macrod/internal/errors"
)

// ResolveImagePath maps a reference image identifier to a file path.
// Absolute paths must exist as given. Relative identifiers are tried
// against the project root, then the conventional asset directories.
func ResolveImagePath(root, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", mderrors.NewResource("image path is required", nil)
	}

	if filepath.IsAbs(value) {
		if _, err := os.Stat(value); err != nil {
			return "", mderrors.NewResource("image not found: "+value, nil)
		}
		return value, nil
	}

	candidates := []string{
		filepath.Join(root, value),
		filepath.Join(root, "assets", "images", value),
		filepath.Join(root, "assets", value),
		filepath.Join(root, "macros", value),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", mderrors.NewResource("image not found: "+candidates[0], nil)
}
