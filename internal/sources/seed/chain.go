package seed

import (
	"context"

	"github.com/Structurer/nav-front-build/internal/domain"
)

// Loader is any seed provider.
type Loader interface {
	Load(ctx context.Context) (domain.Document, error)
}

// First returns the first non-empty document of its loaders, in order.
// A failing loader is skipped; its error is returned only when no loader
// produced anything.
type First []Loader

// Load implements Loader.
func (f First) Load(ctx context.Context) (domain.Document, error) {
	var firstErr error
	for _, l := range f {
		doc, err := l.Load(ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !doc.IsEmpty() {
			return doc, nil
		}
	}
	return domain.Empty(), firstErr
}
