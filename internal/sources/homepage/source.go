// Package homepage turns a Homepage dashboard configuration into a catalog seed.
//
// Each bookmark or service group becomes one category; groups from
// bookmarks.yaml come first, then services.yaml.
package homepage

import (
	"context"
	"errors"
	"io/fs"

	"github.com/Structurer/nav-front-build/internal/domain"
)

// Source reads Homepage configuration files. Either path may be empty.
type Source struct {
	BookmarksPath string
	ServicesPath  string
}

// Load returns the combined seed document. Missing files are ignored.
func (s Source) Load(ctx context.Context) (domain.Document, error) {
	m := newMapper()

	if s.BookmarksPath != "" {
		cfg, err := LoadBookmarks(s.BookmarksPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return domain.Empty(), err
		}
		m.addBookmarks(cfg)
	}
	if err := ctx.Err(); err != nil {
		return domain.Empty(), err
	}

	if s.ServicesPath != "" {
		cfg, err := LoadServices(s.ServicesPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return domain.Empty(), err
		}
		m.addServices(cfg)
	}

	return m.doc, nil
}
