// Package seed loads the bundled read-only catalog shown before any data exists.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Structurer/nav-front-build/internal/domain"
)

// FileSource reads a catalog document from a JSON or YAML file.
type FileSource struct {
	Path string
}

// Load returns the seed document. A missing file or empty path is not an
// error: the seed is optional.
func (s FileSource) Load(ctx context.Context) (domain.Document, error) {
	if s.Path == "" {
		return domain.Empty(), nil
	}
	if err := ctx.Err(); err != nil {
		return domain.Empty(), err
	}

	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Empty(), nil
	}
	if err != nil {
		return domain.Empty(), fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document. YAML is a superset of JSON, so both are
// accepted; the tree is re-encoded as JSON to share the catalog decoder.
func Parse(data []byte) (domain.Document, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return domain.Empty(), &domain.ShapeError{Source: "seed", Reason: err.Error()}
	}
	if tree == nil {
		return domain.Empty(), nil
	}

	raw, err := json.Marshal(tree)
	if err != nil {
		return domain.Empty(), &domain.ShapeError{Source: "seed", Reason: err.Error()}
	}
	doc, err := domain.DecodeDocument(raw, "seed")
	// seed tiles must stay navigable before ids are ever minted
	return domain.AssignStableIDs(doc, "seed-"), err
}
