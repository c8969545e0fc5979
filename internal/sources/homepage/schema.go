package homepage

// BookmarkEntry is the property list of one bookmark.
type BookmarkEntry struct {
	Icon string `yaml:"icon"`
	Abbr string `yaml:"abbr"`
	Href string `yaml:"href"`
}

// BookmarkGroup is one item of bookmarks.yaml. Group name maps to a list of
// single-key maps: bookmark name to a one-element list of properties.
type BookmarkGroup map[string][]map[string][]BookmarkEntry

// BookmarksConfig is the root of bookmarks.yaml.
type BookmarksConfig []BookmarkGroup

// ServiceProps holds the service fields navgrid cares about.
type ServiceProps struct {
	Href        string `yaml:"href"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// ServicesConfig is the root of services.yaml. Homepage uses dynamic keys
// for both the group and the service name.
type ServicesConfig []map[string][]map[string]ServiceProps
