package macro

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	mderrors "github.com/macrostudio/macrod/internal/errors"
)

// Load reads and parses a macro file. The document is validated before it
// is returned to any caller.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, mderrors.NewResource("reading macro file", err)
	}
	return Parse(data)
}

// Parse validates macro JSON bytes and wraps them in an immutable
// Document.
func Parse(data []byte) (Document, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return Document{}, fmt.Errorf("parsing macro JSON: %w", err)
	}
	if err := Validate(data); err != nil {
		return Document{}, err
	}
	raw := make([]byte, len(data))
	copy(raw, data)
	return Document{raw: raw, root: gjson.ParseBytes(raw)}, nil
}

// Save validates the document and writes it in canonical form, creating
// parent directories as needed.
func Save(path string, doc Document) error {
	if err := Validate(doc.raw); err != nil {
		return err
	}
	out, err := Canonical(doc.raw)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return mderrors.NewResource("creating macro directory", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return mderrors.NewResource("writing macro file", err)
	}
	return nil
}

// Canonical renders macro JSON in the stable on-disk form: two-space
// indentation, object keys sorted, no HTML escaping. Saving a reloaded
// document reproduces the same bytes.
func Canonical(data []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing macro JSON: %w", err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding macro JSON: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// IsCanonical reports whether data is already in the form Save writes.
func IsCanonical(data []byte) (bool, error) {
	out, err := Canonical(data)
	if err != nil {
		return false, err
	}
	return bytes.Equal(data, out), nil
}
