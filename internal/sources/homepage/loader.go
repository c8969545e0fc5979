package homepage

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// LoadBookmarks reads and parses a bookmarks.yaml file.
func LoadBookmarks(path string) (BookmarksConfig, error) {
	var cfg BookmarksConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, fmt.Errorf("bookmarks: %w", err)
	}
	return cfg, nil
}

// LoadServices reads and parses a services.yaml file.
func LoadServices(path string) (ServicesConfig, error) {
	var cfg ServicesConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, fmt.Errorf("services: %w", err)
	}
	return cfg, nil
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// {{HOMEPAGE_VAR_...}} placeholders are resolved by Homepage itself;
	// an unresolved href is dropped by the mapper.
	data = stripTemplateVariables(data)

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return nil
}

// stripTemplateVariables replaces {{...}} with an empty YAML string.
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
