package homepage

import (
	"sort"
	"strings"

	"github.com/Structurer/nav-front-build/internal/domain"
)

// mapper accumulates tiles, one category per Homepage group, in file order.
type mapper struct {
	doc  domain.Document
	seen map[string]bool
	k    int
}

func newMapper() *mapper {
	return &mapper{doc: domain.Empty(), seen: make(map[string]bool)}
}

// MapBookmarks converts bookmarks.yaml into a catalog document.
// Bookmarks without href are skipped; a repeated href keeps its first occurrence.
func MapBookmarks(cfg BookmarksConfig) domain.Document {
	m := newMapper()
	m.addBookmarks(cfg)
	return m.doc
}

// MapServices converts services.yaml into a catalog document.
func MapServices(cfg ServicesConfig) domain.Document {
	m := newMapper()
	m.addServices(cfg)
	return m.doc
}

func (m *mapper) addBookmarks(cfg BookmarksConfig) {
	for _, group := range cfg {
		for _, groupName := range sortedKeys(group) {
			m.k++
			added := 0
			for _, item := range group[groupName] {
				for _, name := range sortedKeys(item) {
					entries := item[name]
					if len(entries) == 0 {
						continue
					}
					if m.add(name, entries[0].Href, entries[0].Abbr) {
						added++
					}
				}
			}
			if added == 0 {
				m.k--
			}
		}
	}
}

func (m *mapper) addServices(cfg ServicesConfig) {
	for _, group := range cfg {
		for _, groupName := range sortedKeys(group) {
			m.k++
			added := 0
			for _, item := range group[groupName] {
				for _, name := range sortedKeys(item) {
					if m.add(name, item[name].Href, "") {
						added++
					}
				}
			}
			if added == 0 {
				m.k--
			}
		}
	}
}

func (m *mapper) add(name, href, abbr string) bool {
	href = strings.TrimSpace(href)
	name = strings.TrimSpace(name)
	if href == "" || name == "" {
		return false
	}

	url := domain.FixURLScheme(href)
	id := entryID(url)
	if m.seen[id] {
		return false
	}
	m.seen[id] = true

	entry := domain.IconEntry{
		ID:              id,
		K:               m.k,
		Name:            name,
		URL:             url,
		Alt:             strings.TrimSpace(abbr),
		BackgroundColor: domain.DefaultBackgroundColor,
	}
	if entry.Alt == "" {
		entry.Alt = entry.Fallback()
	}
	m.doc.NavList = append(m.doc.NavList, entry)
	return true
}

// entryID derives a stable id from the url so reloading a seed keeps ids.
func entryID(url string) string {
	return domain.StableID("hp-", url)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
